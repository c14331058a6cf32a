// Package marker maintains the registry of on-screen markers and reconciles
// it against the currently visible activity set. Drawing itself is delegated
// to a Renderer collaborator, so the reconciliation logic runs headless in
// tests.
package marker

import (
	"github.com/mboven/canvass-replay/internal/core/model"
)

// Variant distinguishes the two presentation states of a visible marker.
type Variant string

const (
	// VariantRecent marks a record inside the recent-reveal window.
	// Recent markers render above cumulative ones.
	VariantRecent Variant = "recent"

	// VariantCumulative marks a record revealed earlier in playback.
	VariantCumulative Variant = "cumulative"
)

// Style carries the presentation inputs shared by all markers in a cycle.
type Style struct {
	// Emphasis is a global presentation toggle. Flipping it rebuilds
	// every handle instead of mutating it in place.
	Emphasis bool

	// Scale is the continuous zoom-dependent size factor. It changes
	// freely between cycles and is applied through in-place updates.
	Scale float64
}

// Handle is an opaque reference to a visual element owned by the Renderer.
type Handle interface{}

// Renderer is the drawing collaborator. Implementations own the actual
// visuals; the reconciler only tracks handles. A CreateVisual returning nil
// is treated as a failed creation and retried on the next cycle.
type Renderer interface {
	CreateVisual(p model.ProcessedActivity, variant Variant, style Style) Handle
	UpdateVisual(h Handle, variant Variant, style Style)
	RemoveVisual(h Handle)
	SetZOrder(h Handle, variant Variant)
}
