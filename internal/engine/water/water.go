// Package water builds the geometry of flat reflective surfaces.
package water

import "github.com/chewxy/math32"

// FloatsPerVertex is the vertex layout: position xyz, normal xyz.
const FloatsPerVertex = 6

// Plane holds surface geometry ready for GPU upload.
type Plane struct {
	// Vertices are two counter-clockwise triangles seen from above.
	Vertices []float32
	Level    float32
}

// BuildPlane creates a horizontal quad at height level covering the bounds.
func BuildPlane(minX, maxX, minZ, maxZ, level float32) *Plane {
	y := level
	corner := func(x, z float32) []float32 {
		return []float32{x, y, z, 0, 1, 0}
	}

	var v []float32
	for _, c := range [][2]float32{
		{minX, minZ}, {minX, maxZ}, {maxX, maxZ},
		{minX, minZ}, {maxX, maxZ}, {maxX, minZ},
	} {
		v = append(v, corner(c[0], c[1])...)
	}
	return &Plane{Vertices: v, Level: level}
}

// BuildPlaneWithPadding extends the bounds by padding on every side.
func BuildPlaneWithPadding(minX, maxX, minZ, maxZ, level, padding float32) *Plane {
	return BuildPlane(minX-padding, maxX+padding, minZ-padding, maxZ+padding, level)
}

// VertexCount returns the number of vertices.
func (p *Plane) VertexCount() int {
	return len(p.Vertices) / FloatsPerVertex
}

// RipplePhase returns the ripple animation phase in [0, 2π) after
// seconds of animation at speed cycles per second.
func RipplePhase(seconds, speed float32) float32 {
	if speed <= 0 {
		return 0
	}
	return math32.Mod(seconds*speed, 1) * 2 * math32.Pi
}

// DefaultRippleSpeed is the ripple speed in cycles per second.
const DefaultRippleSpeed = 0.25
