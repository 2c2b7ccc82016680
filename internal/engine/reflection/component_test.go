package reflection

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
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

func TestMonoPublishesPrimary(t *testing.T) {
	f := newFixture(t, native)
	f.frame(1)

	targets := f.comp.Targets()
	require.NotNil(t, targets.Primary)
	assert.Nil(t, targets.Right)
	assert.Nil(t, targets.Clone)
	assert.Equal(t, 1, f.dev.Allocations)
	assert.Equal(t, rendertarget.Size{Width: 422, Height: 238}, targets.Primary.Size())

	assert.Same(t, targets.Primary, f.published(DefaultTextureName))
	assert.Nil(t, f.published(DefaultTextureRightName))
	rect, ok := f.globals.Vector(DefaultRectName)
	require.True(t, ok)
	assert.Equal(t, math.Vec4{0, 0, 1, 1}, rect)

	require.Len(t, f.renderer.calls, 1)
	assert.Same(t, targets.Primary, f.renderer.calls[0].target)
	assert.Empty(t, f.dev.Blits)

	assert.Equal(t, []State{StatePreparing, StateRenderingMono, StatePublishing, StateIdle}, f.states)
	assert.Equal(t, StateIdle, f.comp.Pass().State())
}

func TestStereoPublishesBothEyes(t *testing.T) {
	caps := native
	caps.IsStereoCapable = true
	f := newFixture(t, caps)
	f.frame(1)

	targets := f.comp.Targets()
	require.NotNil(t, targets.Right)
	assert.Equal(t, 2, f.dev.Allocations)
	assert.Same(t, targets.Primary, f.published(DefaultTextureName))
	assert.Same(t, targets.Right, f.published(DefaultTextureRightName))

	require.Len(t, f.renderer.calls, 2)
	assert.Same(t, targets.Primary, f.renderer.calls[0].target)
	assert.Same(t, targets.Right, f.renderer.calls[1].target)
	assert.NotEqual(t, f.renderer.calls[0].view, f.renderer.calls[1].view)

	assert.Equal(t, []State{
		StatePreparing,
		StateRenderingLeft, StatePublishing,
		StateRenderingRight, StatePublishing,
		StateIdle,
	}, f.states)
}

func TestCloneWithoutSimultaneousReadWrite(t *testing.T) {
	f := newFixture(t, pipeline.Capabilities{})
	f.frame(1)

	targets := f.comp.Targets()
	require.NotNil(t, targets.Clone)
	assert.Equal(t, 2, f.dev.Allocations)

	require.Len(t, f.dev.Blits, 1)
	assert.Same(t, targets.Primary, rendertarget.Target(f.dev.Blits[0].Src))
	assert.Same(t, targets.Clone, rendertarget.Target(f.dev.Blits[0].Dst))

	assert.Same(t, targets.Clone, f.published(DefaultTextureName))
	assert.Same(t, targets.Primary, f.renderer.calls[0].target)
}

func TestStereoWithClone(t *testing.T) {
	f := newFixture(t, pipeline.Capabilities{IsStereoCapable: true})
	f.frame(1)

	assert.Equal(t, 3, f.dev.Allocations)
	assert.Len(t, f.dev.Blits, 1, "only the left eye is cloned")
	assert.Same(t, f.comp.Targets().Right, f.published(DefaultTextureRightName))
}

func TestPreviewAndReflectionCamerasAreIgnored(t *testing.T) {
	f := newFixture(t, native)

	for _, kind := range []pipeline.CameraKind{pipeline.CameraReflection, pipeline.CameraPreview} {
		f.pipe.BeginCamera(frameAt(1), kind)
	}

	assert.Zero(t, f.dev.Allocations)
	assert.Empty(t, f.renderer.calls)
	assert.Nil(t, f.published(DefaultTextureName))
	_, ok := f.globals.Vector(DefaultRectName)
	assert.False(t, ok)
	assert.Nil(t, f.comp.Mirror().Camera())
	assert.Empty(t, f.states)
}

func TestOtherCameraKindsRender(t *testing.T) {
	f := newFixture(t, native)
	for i, kind := range []pipeline.CameraKind{pipeline.CameraGame, pipeline.CameraSceneView, pipeline.CameraVR} {
		f.pipe.BeginCamera(frameAt(i), kind)
	}
	assert.Len(t, f.renderer.calls, 3)
}

func TestMirrorCameraFollowsHost(t *testing.T) {
	f := newFixture(t, native)
	f.frame(1)

	cam := f.comp.Mirror().Camera()
	require.NotNil(t, cam)
	assert.Less(t, cam.Position.Y, float32(0))
	assert.InDelta(t, -f.src.Forward().Y, cam.Forward.Y, tolerance)
}

func TestRectFromCamera(t *testing.T) {
	f := newFixture(t, native)
	f.src.rect = camera.Rect{X: 0.5, Width: 0.5, Height: 1}
	f.frame(1)

	rect, _ := f.globals.Vector(DefaultRectName)
	assert.Equal(t, math.Vec4{0.5, 0, 0.5, 1}, rect)
}

func TestPixelSizeFallsBackToScreen(t *testing.T) {
	f := newFixture(t, native, func(s *Settings, h *Host) {
		s.Multiplier = rendertarget.Half
		h.ScreenSize = func() rendertarget.Size { return rendertarget.Size{Width: 640, Height: 360} }
	})
	f.src.width, f.src.height = 0, 0
	f.frame(1)

	assert.Equal(t, rendertarget.Size{Width: 320, Height: 180}, f.comp.Targets().Primary.Size())
}

func TestAllocationFailureSkipsPublish(t *testing.T) {
	f := newFixture(t, native)
	f.frame(1)
	require.NotNil(t, f.published(DefaultTextureName))

	// Resize the screen so the next check reallocates, and fail it.
	f.src.width = 1920
	f.dev.Fail = true
	f.frame(1000)

	assert.Nil(t, f.published(DefaultTextureName))
	assert.Len(t, f.renderer.calls, 1)
	assert.Equal(t, quality.Settings{Fog: true, MaxLODLevel: 1, LODBias: 2}, *f.quality)
	assert.Equal(t, StateIdle, f.comp.Pass().State())
	assert.Zero(t, f.dev.Live())

	f.dev.Fail = false
	f.frame(1001)
	assert.NotNil(t, f.published(DefaultTextureName))
	assert.Len(t, f.renderer.calls, 2)
}

func TestEmptyScreenSkipsPublish(t *testing.T) {
	f := newFixture(t, native)
	f.src.width, f.src.height = 0, 0
	f.frame(1)

	assert.Zero(t, f.dev.Allocations)
	assert.Nil(t, f.published(DefaultTextureName))
	assert.Empty(t, f.renderer.calls)
}

func TestQualityOverriddenWhileRendering(t *testing.T) {
	f := newFixture(t, native)
	before := *f.quality
	f.frame(1)

	require.Len(t, f.renderer.calls, 1)
	during := f.renderer.calls[0].quality
	assert.False(t, during.Fog)
	assert.True(t, during.InvertCulling)

	assert.Equal(t, before, *f.quality)
}

func TestQualityRestoredWhenRenderFails(t *testing.T) {
	f := newFixture(t, native)
	before := *f.quality
	f.renderer.err = errors.New("device lost")
	f.frame(1)

	assert.Equal(t, before, *f.quality)
	assert.Nil(t, f.published(DefaultTextureName))
	assert.Equal(t, StateIdle, f.comp.Pass().State())
}

func TestStopReleasesEverything(t *testing.T) {
	f := newFixture(t, pipeline.Capabilities{IsStereoCapable: true})
	f.frame(1)
	require.Equal(t, 3, f.dev.Live())

	f.comp.Stop()
	assert.False(t, f.comp.Running())
	assert.Zero(t, f.dev.Live())
	assert.Zero(t, f.pipe.Len())
	assert.Nil(t, f.comp.Mirror().Camera())
	assert.Nil(t, f.published(DefaultTextureName))
	assert.Nil(t, f.published(DefaultTextureRightName))

	// Unsubscribed: frames do nothing.
	f.frame(2)
	assert.Equal(t, 3, f.dev.Allocations)

	f.comp.Stop()
}

func TestStopFromEarlierHandlerInSameFrame(t *testing.T) {
	dev := rendertargettest.New()
	globals := shading.NewGlobals()
	pipe := pipeline.New(zap.NewNop())
	q := &quality.Settings{Fog: true}

	// Subscribed ahead of the component, so it runs first in the frame.
	var comp *Component
	pipe.Subscribe(func(pipeline.Frame, pipeline.CameraKind) { comp.Stop() })

	var err error
	comp, err = NewComponent(DefaultSettings(), Host{
		Pipeline: pipe,
		Camera:   newSource(),
		Globals:  globals,
		Renderer: &fakeRenderer{quality: q},
		Device:   dev,
		Quality:  q,
		Logger:   zap.NewNop(),
	})
	require.NoError(t, err)
	require.NoError(t, comp.Start())

	pipe.BeginCamera(frameAt(1), pipeline.CameraGame)

	assert.False(t, comp.Running())
	assert.Zero(t, dev.Live())
	assert.Zero(t, dev.Allocations)
	assert.Nil(t, comp.Mirror().Camera())
	_, published := globals.Texture(DefaultTextureName)
	assert.False(t, published)
}

func TestStoppedComponentIgnoresFrames(t *testing.T) {
	f := newFixture(t, native)
	f.comp.Stop()

	f.comp.beginCamera(frameAt(1), pipeline.CameraGame)
	assert.Zero(t, f.dev.Allocations)
	assert.Nil(t, f.comp.Mirror().Camera())
	assert.Empty(t, f.renderer.calls)
}

func TestRestartRecreatesNeededTargets(t *testing.T) {
	f := newFixture(t, native)
	f.frame(1)
	f.comp.Stop()
	require.Zero(t, f.dev.Live())

	require.NoError(t, f.comp.Start())
	f.frame(2)
	assert.Equal(t, 1, f.dev.Live())
	assert.Equal(t, 2, f.dev.Allocations)
	assert.Equal(t, 1, f.pipe.Len())

	// Starting twice subscribes once.
	require.NoError(t, f.comp.Start())
	assert.Equal(t, 1, f.pipe.Len())
}

func TestStartWithoutCollaborators(t *testing.T) {
	pipe := pipeline.New(zap.NewNop())
	full := Host{
		Pipeline: pipe,
		Camera:   newSource(),
		Globals:  shading.NewGlobals(),
		Renderer: &fakeRenderer{quality: &quality.Settings{}},
		Device:   rendertargettest.New(),
		Logger:   zap.NewNop(),
	}

	tests := []struct {
		name string
		drop func(*Host)
	}{
		{"pipeline", func(h *Host) { h.Pipeline = nil }},
		{"camera", func(h *Host) { h.Camera = nil }},
		{"globals", func(h *Host) { h.Globals = nil }},
		{"renderer", func(h *Host) { h.Renderer = nil }},
		{"device", func(h *Host) { h.Device = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := full
			tt.drop(&host)
			c, err := NewComponent(DefaultSettings(), host)
			require.NoError(t, err)

			err = c.Start()
			assert.ErrorIs(t, err, ErrMissingCollaborator)
			assert.False(t, c.Running())
			assert.Zero(t, pipe.Len())

			c.Stop()
		})
	}
}

func TestNewComponentRejectsInvalidSettings(t *testing.T) {
	s := DefaultSettings()
	s.Multiplier = rendertarget.Multiplier(9)
	_, err := NewComponent(s, Host{})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	s = DefaultSettings()
	s.Names.Rect = ""
	_, err = NewComponent(s, Host{})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestMultiplierChangeReallocatesOnce(t *testing.T) {
	f := newFixture(t, native)
	f.frame(1)
	require.Equal(t, 1, f.dev.Allocations)

	require.NoError(t, f.comp.SetResolutionMultiplier(rendertarget.Half))
	assert.Equal(t, 1, f.dev.Releases)
	assert.Equal(t, 2, f.dev.Allocations, "targets are rebuilt right away")
	assert.Nil(t, f.published(DefaultTextureName), "released target must not stay bound")

	for i := 2; i < 300; i++ {
		f.frame(i)
	}
	assert.Equal(t, 2, f.dev.Allocations)
	assert.Equal(t, 1, f.dev.Releases)
	assert.Equal(t, rendertarget.Size{Width: 640, Height: 360}, f.comp.Targets().Primary.Size())

	// Setting the same value again is a no-op.
	require.NoError(t, f.comp.SetResolutionMultiplier(rendertarget.Half))
	assert.Equal(t, 2, f.dev.Allocations)
}

func TestMultiplierChangeWhileStopped(t *testing.T) {
	f := newFixture(t, native)
	f.comp.Stop()

	require.NoError(t, f.comp.SetResolutionMultiplierIndex(0))
	assert.Zero(t, f.dev.Allocations)
	assert.Equal(t, rendertarget.Full, f.comp.Settings().Multiplier)
}

func TestInvalidMultiplierKeepsState(t *testing.T) {
	f := newFixture(t, native)
	f.frame(1)

	for _, i := range []int{-1, 4, 7} {
		err := f.comp.SetResolutionMultiplierIndex(i)
		assert.ErrorIs(t, err, ErrInvalidConfiguration, "index %d", i)
	}
	assert.ErrorIs(t, f.comp.SetResolutionMultiplier(rendertarget.Multiplier(12)), ErrInvalidConfiguration)

	assert.Equal(t, rendertarget.Third, f.comp.Settings().Multiplier)
	assert.Equal(t, 1, f.dev.Allocations)
	assert.Zero(t, f.dev.Releases)
	assert.NotNil(t, f.published(DefaultTextureName))
}

func TestApplySettings(t *testing.T) {
	f := newFixture(t, native)
	f.frame(1)

	s := f.comp.Settings()
	s.Names.Texture = "_MirrorTex"
	s.ReflectLayers = 0b1
	require.NoError(t, f.comp.Apply(s))
	f.frame(2)

	assert.NotNil(t, f.published("_MirrorTex"))
	assert.Equal(t, camera.LayerMask(0b1), f.comp.Mirror().Camera().CullingMask)
	assert.Equal(t, 1, f.dev.Allocations, "same multiplier keeps targets")
	assert.Nil(t, f.published(DefaultTextureName), "renamed texture is unbound under the old name")

	bad := s
	bad.Multiplier = rendertarget.Multiplier(-3)
	assert.ErrorIs(t, f.comp.Apply(bad), ErrInvalidConfiguration)
	assert.Equal(t, "_MirrorTex", f.comp.Settings().Names.Texture)
}

func TestRenderScaleChangeRebuilds(t *testing.T) {
	f := newFixture(t, native, func(s *Settings, _ *Host) { s.Multiplier = rendertarget.Full })
	f.frame(1)

	f.comp.SetRenderScale(0.5)
	f.frame(2)
	assert.Equal(t, rendertarget.Size{Width: 640, Height: 360}, f.comp.Targets().Primary.Size())
	assert.Equal(t, 2, f.dev.Allocations)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "rendering-left", StateRenderingLeft.String())
	assert.Equal(t, "unknown", State(99).String())
}
