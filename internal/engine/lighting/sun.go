// Package lighting provides the directional light the demo scene is lit by.
package lighting

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/planar-reflections/pkg/math"
)

// Sun is a directional light.
type Sun struct {
	// Direction points from the scene towards the light.
	Direction math.Vec3
	Color     math.Vec3
	Ambient   float32
}

// DefaultSun is a warm afternoon light.
func DefaultSun() Sun {
	return Sun{
		Direction: SunDirection(135, 50),
		Color:     math.Vec3{X: 1, Y: 0.95, Z: 0.85},
		Ambient:   0.3,
	}
}

// SunDirection converts azimuth (around Y, degrees) and elevation (above
// the horizon, degrees) to a unit vector pointing towards the sun.
func SunDirection(azimuth, elevation float32) math.Vec3 {
	const toRad = math32.Pi / 180
	sa, ca := math32.Sincos(azimuth * toRad)
	se, ce := math32.Sincos(elevation * toRad)
	return math.Vec3{X: ce * sa, Y: se, Z: ce * ca}
}
