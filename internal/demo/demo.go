// Package demo runs the planar reflection demo: an orbiting camera over a
// mirror floor, with the reflection component hooked into the camera
// pipeline.
package demo

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/planar-reflections/internal/config"
	"github.com/Faultbox/planar-reflections/internal/engine/camera"
	"github.com/Faultbox/planar-reflections/internal/engine/debug"
	"github.com/Faultbox/planar-reflections/internal/engine/framebuffer"
	"github.com/Faultbox/planar-reflections/internal/engine/input"
	"github.com/Faultbox/planar-reflections/internal/engine/picking"
	"github.com/Faultbox/planar-reflections/internal/engine/pipeline"
	"github.com/Faultbox/planar-reflections/internal/engine/quality"
	"github.com/Faultbox/planar-reflections/internal/engine/reflection"
	"github.com/Faultbox/planar-reflections/internal/engine/renderer"
	"github.com/Faultbox/planar-reflections/internal/engine/rendertarget"
	"github.com/Faultbox/planar-reflections/internal/engine/shading"
	"github.com/Faultbox/planar-reflections/internal/engine/window"
	"github.com/Faultbox/planar-reflections/internal/logger"
	"github.com/Faultbox/planar-reflections/pkg/math"
)

const title = "Planar Reflections"

// moveSpeed scales held movement keys per second.
const moveSpeed = 60

// Demo is the running application.
type Demo struct {
	cfg *config.Config
	log *zap.Logger

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	device   *framebuffer.Device

	pipeline *pipeline.Pipeline
	globals  *shading.Globals
	quality  quality.Settings

	orbit      *camera.OrbitCamera
	main       *camera.Camera
	reflection *reflection.Component

	watcher *config.Watcher
	capture *debug.Capture

	running bool
	start   time.Time
	frame   uint64
}

// New creates the window, renderer and reflection component. configPath
// is watched for changes when not empty.
func New(cfg *config.Config, configPath string) (*Demo, error) {
	d := &Demo{
		cfg:      cfg,
		log:      logger.Named("demo"),
		pipeline: pipeline.New(logger.Named("pipeline")),
		globals:  shading.NewGlobals(),
		quality:  quality.Settings{Fog: true, MaxLODLevel: 2, LODBias: 1},
		orbit:    camera.NewOrbitCamera(),
		main:     camera.New("Main Camera"),
	}

	d.log.Info("initializing demo",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.Stringer("multiplier", cfg.Reflection.ResolutionMultiplier),
	)

	// Create window (this also creates OpenGL context)
	var err error
	d.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
		Logger:     logger.Named("window"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	dw, dh := d.window.DrawableSize()
	settings := cfg.Reflection.Settings()

	// Create renderer (AFTER window, since OpenGL context must exist)
	d.renderer, err = renderer.New(renderer.Config{
		Width:      dw,
		Height:     dh,
		Names:      settings.Names,
		FloorY:     cfg.Reflection.PlaneHeight,
		ClearColor: math.Vec3{X: 0.52, Y: 0.62, Z: 0.75},
		FogColor:   math.Vec3{X: 0.52, Y: 0.62, Z: 0.75},
		FogNear:    15,
		FogFar:     60,
		Logger:     logger.Named("renderer"),
	}, &d.quality, d.globals)
	if err != nil {
		d.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	d.device = framebuffer.NewDevice(logger.Named("framebuffer"))
	d.input = input.New(d.window.DrawableSize)
	d.orbit.Center = math.Vec3{Y: cfg.Reflection.PlaneHeight + 1}
	d.orbit.SetSize(dw, dh)

	caps := pipeline.DetectCapabilities(d.renderer.DeviceName(), cfg.Platform.Overrides())
	d.log.Info("device capabilities",
		zap.String("device", d.renderer.DeviceName()),
		zap.Bool("simultaneous_read_write", caps.SupportsSimultaneousReadWrite),
		zap.Bool("stereo", caps.IsStereoCapable),
	)

	d.reflection, err = reflection.NewComponent(settings, reflection.Host{
		Pipeline:     d.pipeline,
		Camera:       d.orbit,
		Globals:      d.globals,
		Renderer:     d.renderer,
		Device:       d.device,
		Quality:      &d.quality,
		Capabilities: caps,
		Owner: reflection.Placement{
			Origin: math.Vec3{Y: cfg.Reflection.PlaneHeight},
			Normal: math.Up,
		},
		ScreenSize:    d.screenSize,
		RenderScale:   cfg.Graphics.RenderScale,
		CheckInterval: cfg.Reflection.CheckInterval,
		Logger:        logger.Named("reflection"),
	})
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("failed to create reflection: %w", err)
	}
	if cfg.Reflection.Enabled {
		if err := d.reflection.Start(); err != nil {
			d.Close()
			return nil, fmt.Errorf("failed to start reflection: %w", err)
		}
	}

	format, _ := debug.ParseFormat(cfg.Capture.Format)
	d.capture = debug.NewCapture(cfg.Capture.Dir, "reflection", format)

	if configPath != "" {
		d.watcher, err = config.Watch(configPath, logger.Named("config"))
		if err != nil {
			d.log.Warn("config hot reload disabled", zap.Error(err))
		}
	}

	d.log.Info("demo initialized successfully")
	return d, nil
}

func (d *Demo) screenSize() rendertarget.Size {
	w, h := d.window.DrawableSize()
	return rendertarget.Size{Width: w, Height: h}
}

// Run starts the main loop.
func (d *Demo) Run() error {
	d.running = true
	d.start = time.Now()

	// Timing
	lastTime := d.start
	frameCount := 0
	fpsTimer := d.start

	d.log.Info("starting main loop")

	for d.running {
		// Calculate delta time
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		// 1. Process input
		d.handleInput(d.input.Poll(), dt)
		if !d.running {
			break
		}

		// 2. Pick up reloaded config
		d.pollConfig()

		// 3. Render
		d.renderer.Update(dt)
		if err := d.render(now.Sub(d.start)); err != nil {
			return fmt.Errorf("render error: %w", err)
		}

		// 4. Present (swap buffers)
		d.window.SwapBuffers()

		// FPS counter
		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			d.log.Debug("fps", zap.Int("count", frameCount), zap.Float32("dt_ms", dt*1000))
			d.window.SetTitle(fmt.Sprintf("%s - %d fps - %s", title, frameCount, d.reflection.Settings().Multiplier))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (d *Demo) handleInput(a input.Actions, dt float32) {
	if a.Quit {
		d.running = false
		return
	}
	if a.Resized {
		d.renderer.Resize(a.Width, a.Height)
		d.orbit.SetSize(a.Width, a.Height)
	}

	d.orbit.HandleDrag(a.DragX, a.DragY)
	if a.Zoom != 0 {
		d.orbit.HandleZoom(a.Zoom)
	}
	step := moveSpeed * dt
	d.orbit.HandleMovement(a.Forward*step, a.Right*step, a.Up*step)

	if a.Pick {
		d.recenter(a.PickX, a.PickY)
	}

	if a.MultiplierIndex >= 0 {
		if err := d.reflection.SetResolutionMultiplierIndex(a.MultiplierIndex); err == nil {
			d.log.Info("resolution multiplier changed", zap.Stringer("multiplier", d.reflection.Settings().Multiplier))
		}
	}
	if a.ToggleReflection {
		d.setReflectionEnabled(!d.reflection.Running())
	}
	if a.Capture {
		d.captureReflection()
	}
}

// recenter moves the orbit center to the floor point under the cursor.
func (d *Demo) recenter(u, v float32) {
	inv := d.orbit.Projection().Mul(d.orbit.View()).Inverse()
	floor := math.PlaneFromPointNormal(math.Vec3{Y: d.cfg.Reflection.PlaneHeight}, math.Up, 0)

	hit, ok := picking.ScreenToRay(u, v, inv).IntersectPlane(floor)
	if !ok {
		return
	}
	d.orbit.Center = math.Vec3{X: hit.X, Y: d.orbit.Center.Y, Z: hit.Z}
	d.log.Debug("orbit recentered", zap.Float32("x", hit.X), zap.Float32("z", hit.Z))
}

func (d *Demo) setReflectionEnabled(on bool) {
	if on == d.reflection.Running() {
		return
	}
	if !on {
		d.reflection.Stop()
		d.log.Info("reflection disabled")
		return
	}
	if err := d.reflection.Start(); err != nil {
		d.log.Error("failed to enable reflection", zap.Error(err))
		return
	}
	d.log.Info("reflection enabled")
}

// pollConfig applies at most one reloaded config per frame.
func (d *Demo) pollConfig() {
	if d.watcher == nil {
		return
	}
	select {
	case next := <-d.watcher.C:
		d.applyConfig(next)
	default:
	}
}

func (d *Demo) applyConfig(next *config.Config) {
	settings := next.Reflection.Settings()
	if err := d.reflection.Apply(settings); err != nil {
		return
	}
	d.renderer.SetNames(settings.Names)
	d.reflection.SetRenderScale(next.Graphics.RenderScale)

	if next.Graphics.VSync != d.cfg.Graphics.VSync {
		d.window.SetVSync(next.Graphics.VSync)
	}
	if !samePlatform(next.Platform, d.cfg.Platform) {
		d.log.Info("platform overrides take effect after restart")
	}
	if format, err := debug.ParseFormat(next.Capture.Format); err == nil {
		d.capture = debug.NewCapture(next.Capture.Dir, "reflection", format)
	}
	d.setReflectionEnabled(next.Reflection.Enabled)

	d.cfg = next
	d.log.Info("config applied", zap.Stringer("multiplier", settings.Multiplier))
}

func samePlatform(a, b config.PlatformConfig) bool {
	same := func(x, y *bool) bool {
		if x == nil || y == nil {
			return x == y
		}
		return *x == *y
	}
	return same(a.Stereo, b.Stereo) && same(a.SimultaneousReadWrite, b.SimultaneousReadWrite)
}

// captureReflection saves the published reflection textures.
func (d *Demo) captureReflection() {
	targets := d.reflection.Targets()
	shots := []struct {
		label  string
		target rendertarget.Target
	}{
		{"left", targets.Primary},
		{"right", targets.Right},
	}

	saved := 0
	for _, s := range shots {
		src, ok := s.target.(debug.PixelSource)
		if !ok {
			continue
		}
		path, err := d.capture.Target(src, s.label)
		if err != nil {
			d.log.Error("capture failed", zap.String("eye", s.label), zap.Error(err))
			continue
		}
		d.log.Info("reflection captured", zap.String("path", path))
		saved++
	}
	if saved == 0 {
		d.log.Warn("nothing to capture, reflection has not rendered")
	}
}

// render draws one frame: the reflection pass runs from the pipeline
// callback, then the main camera draws the scene.
func (d *Demo) render(elapsed time.Duration) error {
	d.frame++
	d.main.CopyFrom(d.orbit)

	d.pipeline.BeginCamera(pipeline.Frame{Index: d.frame, Time: elapsed}, pipeline.CameraGame)

	return d.renderer.RenderCamera(d.main)
}

// Close cleans up resources.
func (d *Demo) Close() {
	d.log.Info("closing demo")

	if d.watcher != nil {
		if err := d.watcher.Close(); err != nil {
			d.log.Warn("closing config watcher", zap.Error(err))
		}
	}
	if d.reflection != nil {
		d.reflection.Stop()
	}
	if d.device != nil && d.device.Live() > 0 {
		d.log.Warn("render targets leaked", zap.Int("live", d.device.Live()))
	}
	if d.renderer != nil {
		d.renderer.Close()
	}
	if d.window != nil {
		d.window.Close()
	}
}
