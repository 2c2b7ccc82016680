package picking

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/Faultbox/planar-reflections/pkg/math"
)

const tolerance = 1e-3

func near(a, b math.Vec3) bool {
	return a.Distance(b) < tolerance
}

func TestScreenToRayCenter(t *testing.T) {
	eye := math.Vec3{Y: 3, Z: -5}
	view := math.LookAt(eye, math.Vec3{}, math.Up)
	proj := math.Perspective(math32.Pi/3, 16.0/9.0, 0.1, 100)

	ray := ScreenToRay(0.5, 0.5, proj.Mul(view).Inverse())

	want := math.Vec3{}.Sub(eye).Normalize()
	if !near(ray.Direction, want) {
		t.Errorf("center ray direction = %v, want %v", ray.Direction, want)
	}
	// Origin lies on the near plane, 0.1 in front of the eye.
	if d := ray.Origin.Distance(eye); math32.Abs(d-0.1) > tolerance {
		t.Errorf("origin %v is %f from eye, want 0.1", ray.Origin, d)
	}
}

func TestScreenToRayTopIsUp(t *testing.T) {
	view := math.LookAt(math.Vec3{Z: 5}, math.Vec3{}, math.Up)
	inv := math.Perspective(math32.Pi/2, 1, 0.1, 100).Mul(view).Inverse()

	top := ScreenToRay(0.5, 0, inv)
	bottom := ScreenToRay(0.5, 1, inv)
	if top.Direction.Y <= 0 || bottom.Direction.Y >= 0 {
		t.Errorf("top ray should point up and bottom down: %v %v", top.Direction, bottom.Direction)
	}
}

func TestIntersectPlane(t *testing.T) {
	floor := math.PlaneFromPointNormal(math.Vec3{Y: -1}, math.Up, 0)

	tests := []struct {
		name string
		ray  Ray
		want math.Vec3
		hit  bool
	}{
		{
			name: "straight down",
			ray:  Ray{Origin: math.Vec3{X: 2, Y: 4, Z: 3}, Direction: math.Vec3{Y: -1}},
			want: math.Vec3{X: 2, Y: -1, Z: 3},
			hit:  true,
		},
		{
			name: "diagonal",
			ray:  Ray{Origin: math.Vec3{Y: 1}, Direction: math.Vec3{X: 1, Y: -1}.Normalize()},
			want: math.Vec3{X: 2, Y: -1},
			hit:  true,
		},
		{
			name: "parallel",
			ray:  Ray{Origin: math.Vec3{Y: 1}, Direction: math.Vec3{X: 1}},
		},
		{
			name: "pointing away",
			ray:  Ray{Origin: math.Vec3{Y: 1}, Direction: math.Vec3{Y: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hit := tt.ray.IntersectPlane(floor)
			if hit != tt.hit {
				t.Fatalf("hit = %v, want %v", hit, tt.hit)
			}
			if hit && !near(got, tt.want) {
				t.Errorf("hit point = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScreenToRayHitsFloorUnderCursor(t *testing.T) {
	eye := math.Vec3{Y: 10}
	view := math.LookDirection(eye, math.Vec3{Y: -1}, math.Vec3{Z: -1})
	inv := math.Perspective(math32.Pi/2, 1, 0.1, 100).Mul(view).Inverse()

	p, hit := ScreenToRay(0.5, 0.5, inv).IntersectPlane(math.PlaneFromPointNormal(math.Vec3{}, math.Up, 0))
	if !hit {
		t.Fatal("expected hit")
	}
	if !near(p, math.Vec3{}) {
		t.Errorf("center of a top-down view should hit the origin, got %v", p)
	}
}
