package reflection

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/planar-reflections/internal/engine/camera"
	"github.com/Faultbox/planar-reflections/internal/engine/pipeline"
	"github.com/Faultbox/planar-reflections/internal/engine/quality"
	"github.com/Faultbox/planar-reflections/internal/engine/rendertarget"
	"github.com/Faultbox/planar-reflections/internal/logger"
	"github.com/Faultbox/planar-reflections/pkg/math"
)

// Host bundles the services a component needs from its host.
type Host struct {
	Pipeline *pipeline.Pipeline
	Camera   camera.Source
	Globals  ShaderGlobals
	Renderer SceneRenderer
	Device   rendertarget.Device
	// Quality is mutated for the duration of each pass. A private
	// instance is used when nil.
	Quality      *quality.Settings
	Capabilities pipeline.Capabilities

	// Owner places the default mirror. A horizontal plane through the
	// origin is used when nil.
	Owner Transform

	// ScreenSize reports the window size, used while the camera has no
	// pixel size.
	ScreenSize func() rendertarget.Size

	RenderScale   float32
	CheckInterval time.Duration
	Logger        *zap.Logger
}

// Component is one reflecting surface. It subscribes its pass to the host
// pipeline between Start and Stop and owns the mirror camera and targets.
type Component struct {
	settings Settings
	host     Host
	log      *zap.Logger

	mirror *MirrorController
	pool   *rendertarget.Pool
	pass   *Pass

	sub       pipeline.Subscription
	running   bool
	lastFrame pipeline.Frame
}

// NewComponent validates settings and wires the component. Nothing is
// allocated or subscribed until Start.
func NewComponent(settings Settings, host Host) (*Component, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if host.Quality == nil {
		host.Quality = &quality.Settings{}
	}
	if host.Owner == nil {
		host.Owner = Placement{Normal: math.Up}
	}

	c := &Component{
		settings: settings,
		host:     host,
		log:      logger.Or(host.Logger, "reflection"),
	}
	c.mirror = NewMirrorController(&c.settings, c.log)
	c.pool = rendertarget.NewPool(host.Device, rendertarget.PoolConfig{
		Multiplier:    settings.Multiplier,
		RenderScale:   host.RenderScale,
		CheckInterval: host.CheckInterval,
		Logger:        c.log,
	})
	c.pass = &Pass{
		settings: &c.settings,
		mirror:   c.mirror,
		pool:     c.pool,
		device:   host.Device,
		source:   host.Camera,
		globals:  host.Globals,
		renderer: host.Renderer,
		quality:  host.Quality,
		caps:     host.Capabilities,
		owner:    host.Owner,
		screen:   host.ScreenSize,
		log:      c.log,
	}
	return c, nil
}

// Start subscribes the pass to the pipeline. Without a pipeline, camera,
// shader globals, renderer or device it returns ErrMissingCollaborator and
// the pass never runs.
func (c *Component) Start() error {
	if c.running {
		return nil
	}
	if err := c.checkHost(); err != nil {
		c.log.Warn("reflection not started", zap.Error(err))
		return err
	}

	c.pool.Release()
	c.sub = c.host.Pipeline.Subscribe(c.beginCamera)
	c.running = true
	c.log.Info("reflection started",
		zap.Stringer("multiplier", c.settings.Multiplier),
		zap.Bool("stereo", c.host.Capabilities.IsStereoCapable),
		zap.Bool("clone", !c.host.Capabilities.SupportsSimultaneousReadWrite),
	)
	return nil
}

func (c *Component) checkHost() error {
	var missing []string
	if c.host.Pipeline == nil {
		missing = append(missing, "pipeline")
	}
	if c.host.Camera == nil {
		missing = append(missing, "camera")
	}
	if c.host.Globals == nil {
		missing = append(missing, "shader globals")
	}
	if c.host.Renderer == nil {
		missing = append(missing, "renderer")
	}
	if c.host.Device == nil {
		missing = append(missing, "device")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrMissingCollaborator, missing)
	}
	return nil
}

// Stop unsubscribes the pass, destroys the mirror camera and releases every
// target. It is safe to call when not running.
func (c *Component) Stop() {
	if !c.running {
		return
	}
	c.host.Pipeline.Unsubscribe(c.sub)
	c.running = false
	c.mirror.Destroy()
	c.pass.unpublish()
	c.pool.Release()
	c.log.Info("reflection stopped")
}

// Running reports whether the pass is subscribed.
func (c *Component) Running() bool {
	return c.running
}

func (c *Component) beginCamera(frame pipeline.Frame, kind pipeline.CameraKind) {
	if !c.running {
		return
	}
	c.lastFrame = frame
	err := c.pass.Execute(frame, kind)
	switch {
	case err == nil:
	case errors.Is(err, rendertarget.ErrAllocation):
		c.log.Warn("reflection skipped this frame", zap.Uint64("frame", frame.Index), zap.Error(err))
	default:
		c.log.Error("reflection pass failed", zap.Uint64("frame", frame.Index), zap.Error(err))
	}
}

// Settings returns a copy of the current settings.
func (c *Component) Settings() Settings {
	return c.settings
}

// Pass returns the render pass.
func (c *Component) Pass() *Pass {
	return c.pass
}

// Mirror returns the mirror camera controller.
func (c *Component) Mirror() *MirrorController {
	return c.mirror
}

// Targets returns the currently allocated targets.
func (c *Component) Targets() rendertarget.Targets {
	return c.pool.Targets()
}

// SetResolutionMultiplier changes the target resolution. Targets are
// rebuilt right away while running.
func (c *Component) SetResolutionMultiplier(m rendertarget.Multiplier) error {
	if !m.Valid() {
		err := fmt.Errorf("%w: resolution multiplier %d", ErrInvalidConfiguration, int(m))
		c.log.Warn("resolution multiplier ignored", zap.Error(err))
		return err
	}
	c.settings.Multiplier = m
	if !c.pool.SetMultiplier(m) {
		return nil
	}
	c.pass.unpublish()
	if c.running {
		c.rebuild()
	}
	return nil
}

// SetResolutionMultiplierIndex selects the multiplier by its position in
// Full, Half, Third, Quarter, as a UI selector does.
func (c *Component) SetResolutionMultiplierIndex(i int) error {
	m, err := rendertarget.MultiplierFromIndex(i)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
		c.log.Warn("resolution multiplier ignored", zap.Int("index", i), zap.Error(err))
		return err
	}
	return c.SetResolutionMultiplier(m)
}

// SetRenderScale follows a change of the pipeline render scale.
func (c *Component) SetRenderScale(scale float32) {
	if c.pool.SetRenderScale(scale) {
		c.pass.unpublish()
	}
}

// Apply replaces the settings. Invalid settings are rejected and the
// current ones kept.
func (c *Component) Apply(s Settings) error {
	if err := s.Validate(); err != nil {
		c.log.Warn("reflection settings ignored", zap.Error(err))
		return err
	}
	if s.Names != c.settings.Names {
		c.pass.unpublish()
	}
	m := s.Multiplier
	s.Multiplier = c.settings.Multiplier
	c.settings = s
	return c.SetResolutionMultiplier(m)
}

func (c *Component) rebuild() {
	_, err := c.pool.Ensure(c.lastFrame.Time, c.pass.screenSize(),
		c.host.Capabilities.IsStereoCapable, !c.host.Capabilities.SupportsSimultaneousReadWrite)
	if err != nil {
		c.log.Warn("reflection targets not rebuilt", zap.Error(err))
	}
}
