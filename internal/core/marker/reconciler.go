package marker

import (
	"sort"

	"github.com/mboven/canvass-replay/internal/core/activity"
	"github.com/mboven/canvass-replay/internal/core/model"
)

// entry is the registry record for one identity key.
type entry struct {
	handle  Handle
	variant Variant
	style   Style
	touched uint64 // cycle number of the last reconcile that saw this key
}

// Reconciler owns the marker registry and incrementally reconciles it
// against the visible set each cycle. After every Reconcile the registry key
// set equals the visible set's identity-key set exactly. Cost per cycle is
// one registry operation per visible record plus a sweep of the prior
// registry.
type Reconciler struct {
	renderer Renderer
	registry map[string]*entry
	cycle    uint64
}

// NewReconciler creates an empty reconciler drawing through renderer.
func NewReconciler(renderer Renderer) *Reconciler {
	return &Reconciler{
		renderer: renderer,
		registry: make(map[string]*entry),
	}
}

// Reconcile brings the registry in line with the visible set. recent holds
// the identity keys classified as recently revealed this cycle; everything
// else visible is cumulative.
func (rc *Reconciler) Reconcile(visible []model.ProcessedActivity, recent map[string]struct{}, style Style) {
	rc.cycle++

	for _, p := range visible {
		key := activity.IdentityKey(p)

		variant := VariantCumulative
		if _, ok := recent[key]; ok {
			variant = VariantRecent
		}

		e, ok := rc.registry[key]
		if ok && e.handle == nil {
			// Creation failed last cycle; treat the key as untracked
			// and try again.
			delete(rc.registry, key)
			ok = false
		}

		if !ok {
			h := rc.renderer.CreateVisual(p, variant, style)
			rc.registry[key] = &entry{
				handle:  h,
				variant: variant,
				style:   style,
				touched: rc.cycle,
			}
			if h != nil {
				rc.renderer.SetZOrder(h, variant)
			}
			continue
		}

		if e.style.Emphasis != style.Emphasis {
			// Presentation toggle flipped: rebuild rather than mutate.
			rc.renderer.RemoveVisual(e.handle)
			e.handle = rc.renderer.CreateVisual(p, variant, style)
			if e.handle != nil {
				rc.renderer.SetZOrder(e.handle, variant)
			}
		} else {
			// Unconditional refresh keeps size correct under zoom.
			rc.renderer.UpdateVisual(e.handle, variant, style)
			if e.variant != variant {
				// Recent/cumulative flip also reorders: recent
				// renders above cumulative.
				rc.renderer.SetZOrder(e.handle, variant)
			}
		}

		e.variant = variant
		e.style = style
		e.touched = rc.cycle
	}

	// Sweep: anything not touched this cycle left the visible set.
	for key, e := range rc.registry {
		if e.touched != rc.cycle {
			if e.handle != nil {
				rc.renderer.RemoveVisual(e.handle)
			}
			delete(rc.registry, key)
		}
	}
}

// Reset removes every marker, for dataset or region switches.
func (rc *Reconciler) Reset() {
	for key, e := range rc.registry {
		if e.handle != nil {
			rc.renderer.RemoveVisual(e.handle)
		}
		delete(rc.registry, key)
	}
}

// Len returns the number of tracked markers.
func (rc *Reconciler) Len() int {
	return len(rc.registry)
}

// Keys returns the sorted identity keys currently tracked.
func (rc *Reconciler) Keys() []string {
	keys := make([]string, 0, len(rc.registry))
	for key := range rc.registry {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Variant reports the current variant for an identity key.
func (rc *Reconciler) Variant(key string) (Variant, bool) {
	e, ok := rc.registry[key]
	if !ok {
		return "", false
	}
	return e.variant, true
}
