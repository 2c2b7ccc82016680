package reflection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Faultbox/planar-reflections/internal/engine/camera"
	"github.com/Faultbox/planar-reflections/internal/engine/pipeline"
	"github.com/Faultbox/planar-reflections/internal/engine/quality"
	"github.com/Faultbox/planar-reflections/internal/engine/rendertarget"
	"github.com/Faultbox/planar-reflections/internal/engine/rendertarget/rendertargettest"
	"github.com/Faultbox/planar-reflections/internal/engine/shading"
	"github.com/Faultbox/planar-reflections/pkg/math"
)

const tolerance = 1e-4

// fakeSource is a host camera at pos looking at target.
type fakeSource struct {
	pos, target   math.Vec3
	params        camera.Params
	width, height int
	rect          camera.Rect
	eyeSep        float32
}

func newSource() *fakeSource {
	return &fakeSource{
		pos: math.Vec3{Y: 3, Z: -5},
		params: camera.Params{
			FOV:         1,
			Near:        0.1,
			Far:         100,
			Aspect:      16.0 / 9.0,
			CullingMask: camera.AllLayers,
		},
		width:  1280,
		height: 720,
		eyeSep: 0.064,
	}
}

func (s *fakeSource) Position() math.Vec3 { return s.pos }
func (s *fakeSource) Forward() math.Vec3  { return s.target.Sub(s.pos).Normalize() }
func (s *fakeSource) View() math.Mat4     { return math.LookAt(s.pos, s.target, math.Up) }

func (s *fakeSource) Projection() math.Mat4 {
	return math.Perspective(s.params.FOV, s.params.Aspect, s.params.Near, s.params.Far)
}

func (s *fakeSource) StereoView(eye camera.Eye) math.Mat4 {
	half := s.eyeSep / 2
	if eye == camera.EyeLeft {
		half = -half
	}
	return math.Translate(-half, 0, 0).Mul(s.View())
}

func (s *fakeSource) StereoProjection(camera.Eye) math.Mat4 { return s.Projection() }
func (s *fakeSource) PixelSize() (int, int)                 { return s.width, s.height }
func (s *fakeSource) Rect() camera.Rect                      { return s.rect }
func (s *fakeSource) Params() camera.Params                  { return s.params }

// renderCall is what the renderer saw for one RenderCamera.
type renderCall struct {
	target  rendertarget.Target
	view    math.Mat4
	quality quality.Settings
}

type fakeRenderer struct {
	quality *quality.Settings
	err     error
	calls   []renderCall
}

func (r *fakeRenderer) RenderCamera(cam *camera.Camera) error {
	r.calls = append(r.calls, renderCall{target: cam.Target, view: cam.View, quality: *r.quality})
	return r.err
}

type fixture struct {
	dev      *rendertargettest.Device
	globals  *shading.Globals
	renderer *fakeRenderer
	pipe     *pipeline.Pipeline
	quality  *quality.Settings
	src      *fakeSource
	comp     *Component
	states   []State
}

// newFixture builds and starts a component over fakes.
func newFixture(t *testing.T, caps pipeline.Capabilities, opts ...func(*Settings, *Host)) *fixture {
	t.Helper()

	f := &fixture{
		dev:     rendertargettest.New(),
		globals: shading.NewGlobals(),
		pipe:    pipeline.New(zap.NewNop()),
		quality: &quality.Settings{Fog: true, MaxLODLevel: 1, LODBias: 2},
		src:     newSource(),
	}
	f.renderer = &fakeRenderer{quality: f.quality}

	settings := DefaultSettings()
	host := Host{
		Pipeline:     f.pipe,
		Camera:       f.src,
		Globals:      f.globals,
		Renderer:     f.renderer,
		Device:       f.dev,
		Quality:      f.quality,
		Capabilities: caps,
		Logger:       zap.NewNop(),
	}
	for _, o := range opts {
		o(&settings, &host)
	}

	comp, err := NewComponent(settings, host)
	require.NoError(t, err)
	comp.Pass().OnStateChange(func(_, to State) { f.states = append(f.states, to) })
	require.NoError(t, comp.Start())
	f.comp = comp
	return f
}

func (f *fixture) frame(i int) {
	f.pipe.BeginCamera(frameAt(i), pipeline.CameraGame)
}

func frameAt(i int) pipeline.Frame {
	return pipeline.Frame{Index: uint64(i), Time: time.Duration(i) * 16 * time.Millisecond}
}

func (f *fixture) published(name string) rendertarget.Target {
	t, _ := f.globals.Texture(name)
	return t
}

// native supports reading and writing one texture in the same pass.
var native = pipeline.Capabilities{SupportsSimultaneousReadWrite: true}
