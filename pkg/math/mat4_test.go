package math

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const tolerance = 1e-4

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func mat4Near(a, b Mat4, tol float32) bool {
	for i := range a {
		if abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

func vec3Near(a, b Vec3, tol float32) bool {
	return abs(a.X-b.X) <= tol && abs(a.Y-b.Y) <= tol && abs(a.Z-b.Z) <= tol
}

func TestIdentity(t *testing.T) {
	m := Identity()
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())
	if result != m {
		t.Errorf("M * I should equal M: got %v, want %v", result, m)
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(5, 10, 15)
	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
	}
	got := m.TransformVec3(Vec3{1, 2, 3})
	if got != (Vec3{6, 12, 18}) {
		t.Errorf("TransformVec3: got %v", got)
	}
}

func TestRowAccess(t *testing.T) {
	m := Translate(5, 10, 15)
	if got := m.Row(0); got != (Vec4{1, 0, 0, 5}) {
		t.Errorf("Row(0) = %v", got)
	}
	if m.At(1, 3) != 10 {
		t.Errorf("At(1,3) = %f, want 10", m.At(1, 3))
	}

	m.SetRow(2, Vec4{7, 8, 9, 10})
	if m[2] != 7 || m[6] != 8 || m[10] != 9 || m[14] != 10 {
		t.Errorf("SetRow(2) wrote %v", m)
	}
}

func TestTransformDirectionIgnoresTranslation(t *testing.T) {
	m := Translate(10, 20, 30)
	got := m.TransformDirection(Vec3{1, 2, 3})
	if got != (Vec3{1, 2, 3}) {
		t.Errorf("TransformDirection: got %v", got)
	}
}

func TestRotateY90(t *testing.T) {
	m := RotateY(float32(math.Pi / 2))
	got := m.TransformVec3(Vec3{1, 0, 0})
	if !vec3Near(got, Vec3{0, 0, -1}, 0.001) {
		t.Errorf("RotateY 90: got %v, want (0, 0, -1)", got)
	}
}

func TestPerspectiveMatchesMathGL(t *testing.T) {
	got := Perspective(float32(math.Pi/3), 16.0/9.0, 0.3, 1000)
	want := Mat4(mgl32.Perspective(float32(math.Pi/3), 16.0/9.0, 0.3, 1000))
	if !mat4Near(got, want, tolerance) {
		t.Errorf("Perspective mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestOrthoMatchesMathGL(t *testing.T) {
	got := Ortho(-4, 6, -2, 3, 0.5, 40)
	want := Mat4(mgl32.Ortho(-4, 6, -2, 3, 0.5, 40))
	if !mat4Near(got, want, tolerance) {
		t.Errorf("Ortho mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestLookAtMatchesMathGL(t *testing.T) {
	got := LookAt(Vec3{0, 3, -5}, Vec3{}, Up)
	want := Mat4(mgl32.LookAtV(mgl32.Vec3{0, 3, -5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}))
	if !mat4Near(got, want, tolerance) {
		t.Errorf("LookAt mismatch:\n got %v\nwant %v", got, want)
	}

	eye := got.TransformVec3(Vec3{0, 3, -5})
	if !vec3Near(eye, Vec3{}, tolerance) {
		t.Errorf("eye should map to the origin, got %v", eye)
	}
}

func TestMulMatchesMathGL(t *testing.T) {
	a := LookAt(Vec3{1, 2, 3}, Vec3{0, 0, 0}, Up)
	b := Perspective(1.2, 1.5, 0.1, 50)

	got := b.Mul(a)
	want := Mat4(mgl32.Mat4(b).Mul4(mgl32.Mat4(a)))
	if !mat4Near(got, want, tolerance) {
		t.Errorf("Mul mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestInverseMatchesMathGL(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
	}{
		{"perspective", Perspective(1.0, 1.777, 0.3, 1000)},
		{"view", LookAt(Vec3{4, 5, -2}, Vec3{0, 1, 0}, Up)},
		{"translate", Translate(3, -2, 7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.Inverse()
			want := Mat4(mgl32.Mat4(tt.m).Inv())
			if !mat4Near(got, want, tolerance) {
				t.Errorf("Inverse mismatch:\n got %v\nwant %v", got, want)
			}
			if !mat4Near(tt.m.Mul(got), Identity(), tolerance) {
				t.Errorf("M * M^-1 should be identity, got %v", tt.m.Mul(got))
			}
		})
	}
}

func TestInverseSingular(t *testing.T) {
	var zero Mat4
	if zero.Inverse() != Identity() {
		t.Error("singular matrix should invert to identity")
	}
}

func TestVec4Ops(t *testing.T) {
	a := Vec4{1, 2, 3, 4}
	b := Vec4{4, 3, 2, 1}
	if a.Dot(b) != 20 {
		t.Errorf("Dot = %f, want 20", a.Dot(b))
	}
	if a.Sub(b) != (Vec4{-3, -1, 1, 3}) {
		t.Errorf("Sub = %v", a.Sub(b))
	}
	if a.Scale(2) != (Vec4{2, 4, 6, 8}) {
		t.Errorf("Scale = %v", a.Scale(2))
	}
	if a.XYZ() != (Vec3{1, 2, 3}) {
		t.Errorf("XYZ = %v", a.XYZ())
	}
}
