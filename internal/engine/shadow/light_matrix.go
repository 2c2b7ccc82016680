package shadow

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/planar-reflections/pkg/math"
)

// Bounds is an axis-aligned box around the shadow casters.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Center returns the center point of the box.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Radius returns the distance from center to corner (half-diagonal).
func (b Bounds) Radius() float32 {
	return b.Max.Sub(b.Min).Length() / 2
}

// Corners returns the eight corners of the box.
func (b Bounds) Corners() [8]math.Vec3 {
	var c [8]math.Vec3
	for i := range c {
		p := b.Min
		if i&1 != 0 {
			p.X = b.Max.X
		}
		if i&2 != 0 {
			p.Y = b.Max.Y
		}
		if i&4 != 0 {
			p.Z = b.Max.Z
		}
		c[i] = p
	}
	return c
}

// LightMatrix computes the view-projection of a directional light that
// covers the whole box. lightDir points towards the light.
func LightMatrix(lightDir math.Vec3, b Bounds) math.Mat4 {
	lightDir = lightDir.Normalize()
	center := b.Center()
	radius := b.Radius()

	// Far enough back to see the whole box
	distance := radius * 2
	eye := center.Add(lightDir.Scale(distance))

	// Avoid an up vector parallel to the light
	up := math.Up
	if math32.Abs(lightDir.Y) > 0.99 {
		up = math.Vec3{Z: 1}
	}
	view := math.LookAt(eye, center, up)

	// Padding avoids clipping at the edges
	half := radius * 1.1
	proj := math.Ortho(-half, half, -half, half, 0.1, distance+half)

	return proj.Mul(view)
}
