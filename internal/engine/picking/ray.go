// Package picking casts rays from the screen into the scene.
package picking

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/planar-reflections/pkg/math"
)

// Ray is a half-line with a unit direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
}

// ScreenToRay converts normalized screen coordinates (0,0 top-left, 1,1
// bottom-right) into a world-space ray. invViewProj is the inverse of
// projection * view.
func ScreenToRay(u, v float32, invViewProj math.Mat4) Ray {
	ndcX := 2*u - 1
	ndcY := 1 - 2*v // flip Y

	near := unproject(invViewProj, math.Vec4{ndcX, ndcY, -1, 1})
	far := unproject(invViewProj, math.Vec4{ndcX, ndcY, 1, 1})

	return Ray{Origin: near, Direction: far.Sub(near).Normalize()}
}

func unproject(inv math.Mat4, ndc math.Vec4) math.Vec3 {
	p := inv.MulVec4(ndc)
	if p[3] != 0 {
		return p.XYZ().Scale(1 / p[3])
	}
	return p.XYZ()
}

// At returns the point t units along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// IntersectPlane returns where the ray meets p. Rays parallel to the plane
// or pointing away from it miss.
func (r Ray) IntersectPlane(p math.Plane) (math.Vec3, bool) {
	denom := p.Normal.Dot(r.Direction)
	if math32.Abs(denom) < 1e-6 {
		return math.Vec3{}, false
	}
	t := -p.Distance(r.Origin) / denom
	if t < 0 {
		return math.Vec3{}, false
	}
	return r.At(t), true
}
