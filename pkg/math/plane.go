package math

import "github.com/chewxy/math32"

// Plane is the set of points p with Normal·p + D = 0.
type Plane struct {
	Normal Vec3
	D      float32
}

// PlaneFromPointNormal builds the plane through point with the given normal,
// pushed back along the normal by offset.
func PlaneFromPointNormal(point, normal Vec3, offset float32) Plane {
	return Plane{Normal: normal, D: -normal.Dot(point) - offset}
}

// Vec4 returns the plane as (nx, ny, nz, d).
func (p Plane) Vec4() Vec4 {
	return p.Normal.Vec4(p.D)
}

// Distance returns the signed distance from point to the plane.
// Normal must be unit length for the result to be metric.
func (p Plane) Distance(point Vec3) float32 {
	return p.Normal.Dot(point) + p.D
}

// ReflectionMatrix returns the matrix mirroring points across p.
// The normal must be unit length.
func ReflectionMatrix(p Plane) Mat4 {
	n := [3]float32{p.Normal.X, p.Normal.Y, p.Normal.Z}

	var m Mat4
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			v := -2 * n[r] * n[c]
			if r == c {
				v++
			}
			m[c*4+r] = v
		}
		m[12+r] = -2 * p.D * n[r]
	}
	m[15] = 1
	return m
}

// CameraSpacePlane transforms the world plane through pos with normal into
// the space of view. The point is first pushed along the normal by
// clipOffset, and sideSign picks which half-space is kept.
func CameraSpacePlane(view Mat4, pos, normal Vec3, clipOffset, sideSign float32) Vec4 {
	offsetPos := pos.Add(normal.Scale(clipOffset))
	camPos := view.TransformVec3(offsetPos)
	camNormal := view.TransformDirection(normal).Normalize().Scale(sideSign)
	return camNormal.Vec4(-camPos.Dot(camNormal))
}

// ObliqueProjection replaces the near plane of projection with clipPlane,
// given in camera space. A clip plane that cannot be projected, such as a
// zero plane from a degenerate normal, leaves projection unchanged.
//
// See Lengyel, "Oblique View Frustum Depth Projection and Clipping".
func ObliqueProjection(clipPlane Vec4, projection Mat4) Mat4 {
	q := projection.Inverse().MulVec4(Vec4{Sign(clipPlane[0]), Sign(clipPlane[1]), 1, 1})
	denom := clipPlane.Dot(q)
	if denom == 0 || math32.IsNaN(denom) || math32.IsInf(denom, 0) {
		return projection
	}
	oblique := clipPlane.Scale(2 / denom)

	projection.SetRow(2, oblique.Sub(projection.Row(3)))
	return projection
}

// Sign returns -1, 0 or 1.
func Sign(a float32) float32 {
	switch {
	case a > 0:
		return 1
	case a < 0:
		return -1
	default:
		return 0
	}
}
