// Package random provides the deterministic pseudo-random generator behind
// reveal ordering and coordinate blurring. It is a pure function of its seed:
// the same seed yields the same value on every call and every run, which is
// what makes replays reproducible. It is not suitable for anything requiring
// unpredictability.
package random

import "math"

// Value maps a numeric seed to a value in [0, 1).
func Value(seed float64) float64 {
	x := math.Sin(seed*12.9898+78.233) * 43758.5453123
	return x - math.Floor(x)
}

// Range maps a numeric seed to a value in [min, max).
func Range(seed, min, max float64) float64 {
	return min + Value(seed)*(max-min)
}
