package reflection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Faultbox/planar-reflections/internal/engine/camera"
	"github.com/Faultbox/planar-reflections/pkg/math"
)

func assertVec3(t *testing.T, want, got math.Vec3, delta float64) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, delta, "x")
	assert.InDelta(t, want.Y, got.Y, delta, "y")
	assert.InDelta(t, want.Z, got.Z, delta, "z")
}

var floor = ReflectionPlane{Normal: math.Up}

func TestEnsureCameraIsIdempotent(t *testing.T) {
	settings := DefaultSettings()
	m := NewMirrorController(&settings, zap.NewNop())
	assert.Nil(t, m.Camera())

	cam := m.EnsureCamera()
	require.NotNil(t, cam)
	assert.Same(t, cam, m.EnsureCamera())

	assert.Equal(t, CameraName, cam.Name)
	assert.Equal(t, -10, cam.Depth)
	assert.False(t, cam.AutoRender)
	assert.False(t, cam.Persistent)
}

func TestMirrorAcrossFloor(t *testing.T) {
	settings := DefaultSettings()
	m := NewMirrorController(&settings, zap.NewNop())
	src := newSource()

	mt := m.Update(src, floor, false, camera.EyeLeft)

	assert.Less(t, mt.Position.Y, float32(0))
	assertVec3(t, math.Vec3{Y: -3, Z: -5}, mt.Position, tolerance)

	fwd := src.Forward()
	assertVec3(t, math.Vec3{X: fwd.X, Y: -fwd.Y, Z: fwd.Z}, mt.Forward, tolerance)
}

func TestMirrorViewSeesReflectedScene(t *testing.T) {
	settings := DefaultSettings()
	m := NewMirrorController(&settings, zap.NewNop())
	src := newSource()

	mt := m.Update(src, floor, false, camera.EyeLeft)

	// The mirrored camera sits at the origin of its own view.
	assertVec3(t, math.Vec3{}, mt.View.TransformVec3(mt.Position), 1e-3)

	// A point above the floor looks, in the mirror, like its reflection
	// does to the real camera.
	p := math.Vec3{X: 1, Y: 2, Z: 1}
	below := math.Vec3{X: 1, Y: -2, Z: 1}
	assertVec3(t, src.View().TransformVec3(below), mt.View.TransformVec3(p), 1e-3)
}

func TestMirrorObliqueNearPlane(t *testing.T) {
	settings := DefaultSettings()
	m := NewMirrorController(&settings, zap.NewNop())
	src := newSource()

	mt := m.Update(src, floor, false, camera.EyeLeft)

	// Points on the nudged clip plane land on the near plane.
	for _, p := range []math.Vec3{{X: 0, Y: -clipNudge, Z: 0}, {X: 2, Y: -clipNudge, Z: 3}} {
		clip := mt.Projection.MulVec4(mt.View.MulVec4(p.Vec4(1)))
		assert.InDelta(t, -1, clip[2]/clip[3], 1e-3, "ndc z of %v", p)
	}

	// Everything except the depth row comes from the host projection.
	proj := src.Projection()
	for _, r := range []int{0, 1, 3} {
		assert.Equal(t, proj.Row(r), mt.Projection.Row(r), "row %d", r)
	}
}

func TestMirrorRaisedPlane(t *testing.T) {
	settings := DefaultSettings()
	m := NewMirrorController(&settings, zap.NewNop())
	src := newSource()

	mt := m.Update(src, ReflectionPlane{Position: math.Vec3{Y: 1}, Normal: math.Up}, false, camera.EyeLeft)
	assertVec3(t, math.Vec3{Y: -1, Z: -5}, mt.Position, tolerance)
}

func TestMirrorCameraState(t *testing.T) {
	settings := DefaultSettings()
	settings.ReflectLayers = 0b110
	settings.RenderShadows = true
	m := NewMirrorController(&settings, zap.NewNop())
	src := newSource()
	src.params.CullingMask = camera.AllLayers

	mt := m.Update(src, floor, false, camera.EyeLeft)
	cam := m.Camera()
	require.NotNil(t, cam)

	assert.Equal(t, camera.LayerMask(0b110), cam.CullingMask)
	assert.False(t, cam.OcclusionCulling)
	assert.True(t, cam.Shadows)
	assert.Equal(t, src.params.FOV, cam.FOV)
	assert.Equal(t, src.params.Far, cam.Far)
	assert.Equal(t, mt.View, cam.View)
	assert.Equal(t, mt.Projection, cam.Projection)
	assert.Equal(t, mt.Position, cam.Position)
	assert.Equal(t, mt.Forward, cam.Forward)

	settings.RenderShadows = false
	m.Update(src, floor, false, camera.EyeLeft)
	assert.False(t, cam.Shadows)
}

func TestMirrorStereoUsesEyeView(t *testing.T) {
	settings := DefaultSettings()
	m := NewMirrorController(&settings, zap.NewNop())
	src := newSource()
	src.eyeSep = 0.5

	left := m.Update(src, floor, true, camera.EyeLeft)
	right := m.Update(src, floor, true, camera.EyeRight)

	r := math.ReflectionMatrix(math.PlaneFromPointNormal(math.Vec3{}, math.Up, 0))
	assert.Equal(t, src.StereoView(camera.EyeLeft).Mul(r), left.View)
	assert.Equal(t, src.StereoView(camera.EyeRight).Mul(r), right.View)
	assert.NotEqual(t, left.View, right.View)
}

func TestMirrorDestroy(t *testing.T) {
	settings := DefaultSettings()
	m := NewMirrorController(&settings, zap.NewNop())
	m.Update(newSource(), floor, false, camera.EyeLeft)
	require.NotNil(t, m.Camera())

	m.Destroy()
	assert.Nil(t, m.Camera())
	m.Destroy()

	// A new camera is created on next use.
	assert.NotNil(t, m.EnsureCamera())
}

func TestPlaneResolution(t *testing.T) {
	owner := Placement{Origin: math.Vec3{X: 4, Y: 2}, Normal: math.Vec3{Y: 3}}

	s := DefaultSettings()
	p := s.plane(owner)
	assertVec3(t, owner.Origin, p.Position, tolerance)
	assertVec3(t, math.Up, p.Normal, tolerance)

	s.TargetPlane = Placement{Origin: math.Vec3{Y: 1}, Normal: math.Vec3{X: 1}}
	s.PlaneOffset = 0.5
	p = s.plane(owner)
	assertVec3(t, math.Vec3{Y: 1.5}, p.Position, tolerance)
	assertVec3(t, math.Vec3{X: 1}, p.Normal, tolerance)
}
