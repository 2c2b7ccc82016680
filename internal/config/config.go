// Package config handles demo configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/Faultbox/planar-reflections/internal/engine/camera"
	"github.com/Faultbox/planar-reflections/internal/engine/debug"
	"github.com/Faultbox/planar-reflections/internal/engine/pipeline"
	"github.com/Faultbox/planar-reflections/internal/engine/reflection"
	"github.com/Faultbox/planar-reflections/internal/engine/rendertarget"
)

// Config holds all demo settings.
type Config struct {
	Graphics   GraphicsConfig   `yaml:"graphics" toml:"graphics"`
	Reflection ReflectionConfig `yaml:"reflection" toml:"reflection"`
	Platform   PlatformConfig   `yaml:"platform" toml:"platform"`
	Capture    CaptureConfig    `yaml:"capture" toml:"capture"`
	Logging    LoggingConfig    `yaml:"logging" toml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width" toml:"width"`
	Height     int  `yaml:"height" toml:"height"`
	Fullscreen bool `yaml:"fullscreen" toml:"fullscreen"`
	VSync      bool `yaml:"vsync" toml:"vsync"`
	// RenderScale is the pipeline's screen scale, applied on top of the
	// reflection multiplier.
	RenderScale float32 `yaml:"render_scale" toml:"render_scale"`
}

// ReflectionConfig holds planar reflection settings.
type ReflectionConfig struct {
	Enabled              bool                    `yaml:"enabled" toml:"enabled"`
	ResolutionMultiplier rendertarget.Multiplier `yaml:"resolution_multiplier" toml:"resolution_multiplier"`
	ClipPlaneOffset      float32                 `yaml:"clip_plane_offset" toml:"clip_plane_offset"`
	// PlaneHeight is where the mirror floor sits.
	PlaneHeight float32 `yaml:"plane_height" toml:"plane_height"`
	PlaneOffset float32 `yaml:"plane_offset" toml:"plane_offset"`
	// ReflectLayers is a bit mask of the scene layers drawn into the mirror.
	ReflectLayers uint32 `yaml:"reflect_layers" toml:"reflect_layers"`
	RenderShadows bool   `yaml:"render_shadows" toml:"render_shadows"`
	// CheckInterval is how often the screen size is compared against the
	// targets. Zero uses the pool default.
	CheckInterval time.Duration `yaml:"check_interval" toml:"check_interval"`

	TextureName      string `yaml:"texture_name" toml:"texture_name"`
	TextureRightName string `yaml:"texture_right_name" toml:"texture_right_name"`
	RectName         string `yaml:"rect_name" toml:"rect_name"`
}

// PlatformConfig overrides detected device capabilities. Unset fields keep
// the detected value.
type PlatformConfig struct {
	Stereo                *bool `yaml:"stereo,omitempty" toml:"stereo,omitempty"`
	SimultaneousReadWrite *bool `yaml:"simultaneous_read_write,omitempty" toml:"simultaneous_read_write,omitempty"`
}

// CaptureConfig holds reflection texture dump settings.
type CaptureConfig struct {
	Dir    string `yaml:"dir" toml:"dir"`
	Format string `yaml:"format" toml:"format"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// mirrorLayerMask is every layer except 4, where the demo's mirror floor lives.
const mirrorLayerMask = uint32(camera.AllLayers) &^ (1 << 4)

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:       1280,
			Height:      720,
			Fullscreen:  false,
			VSync:       true,
			RenderScale: 1,
		},
		Reflection: ReflectionConfig{
			Enabled:              true,
			ResolutionMultiplier: rendertarget.Third,
			ReflectLayers:        mirrorLayerMask,
			TextureName:          reflection.DefaultTextureName,
			TextureRightName:     reflection.DefaultTextureRightName,
			RectName:             reflection.DefaultRectName,
		},
		Capture: CaptureConfig{
			Dir:    "captures",
			Format: string(debug.FormatPNG),
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Settings converts the reflection section into component settings. The
// target plane is left to the component owner.
func (r ReflectionConfig) Settings() reflection.Settings {
	return reflection.Settings{
		Multiplier:      r.ResolutionMultiplier,
		ClipPlaneOffset: r.ClipPlaneOffset,
		ReflectLayers:   camera.LayerMask(r.ReflectLayers),
		RenderShadows:   r.RenderShadows,
		PlaneOffset:     r.PlaneOffset,
		Names: reflection.Names{
			Texture:      r.TextureName,
			TextureRight: r.TextureRightName,
			Rect:         r.RectName,
		},
	}
}

// Overrides converts the platform section for capability detection.
func (p PlatformConfig) Overrides() pipeline.Overrides {
	return pipeline.Overrides{
		SimultaneousReadWrite: p.SimultaneousReadWrite,
		Stereo:                p.Stereo,
	}
}

// Validate reports values the demo cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		errs = append(errs, fmt.Errorf("graphics: invalid size %dx%d", c.Graphics.Width, c.Graphics.Height))
	}
	if c.Graphics.RenderScale <= 0 {
		errs = append(errs, fmt.Errorf("graphics: render_scale must be positive, got %g", c.Graphics.RenderScale))
	}
	settings := c.Reflection.Settings()
	if err := settings.Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := debug.ParseFormat(c.Capture.Format); err != nil {
		errs = append(errs, fmt.Errorf("capture: %w", err))
	}
	return errors.Join(errs...)
}
