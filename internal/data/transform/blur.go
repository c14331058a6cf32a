// Package transform implements the batch sanitizer: it reads raw location
// export files, blurs coordinates irreversibly, aggregates nearby same-day
// events onto a grid, and writes the dataset the replay consumes.
package transform

import (
	"math"

	"github.com/mboven/canvass-replay/internal/core/random"
)

const (
	blurMinMeters = 30.0
	blurMaxMeters = 100.0

	// metersPerDegreeLat is close enough for sub-kilometer offsets.
	metersPerDegreeLat = 111320.0
)

// Blur displaces a coordinate by a pseudo-random 30-100 meter vector whose
// direction and distance derive from the original coordinates. The same
// input always blurs to the same output, and the original coordinates are
// not recoverable from the result.
func Blur(lat, lng float64) (float64, float64) {
	distance := random.Range(lat*1000+lng, blurMinMeters, blurMaxMeters)
	bearing := random.Range(lng*1000+lat, 0, 2*math.Pi)

	dLat := distance * math.Cos(bearing) / metersPerDegreeLat
	dLng := distance * math.Sin(bearing) / (metersPerDegreeLat * math.Cos(lat*math.Pi/180))

	return lat + dLat, lng + dLng
}
