package config

import (
	"flag"
	"fmt"
	"strconv"

	"github.com/Faultbox/planar-reflections/internal/engine/rendertarget"
)

var (
	flagConfig     = flag.String("config", "", "Path to config file (.yaml, .yml or .toml)")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagMultiplier = flag.String("multiplier", "", "Reflection resolution: full, half, third or quarter")
	flagStereo     = flag.String("stereo", "", "Force stereo reflections on or off (true/false)")
	flagCapture    = flag.String("capture", "", "Capture format: png or webp")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) error {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagMultiplier != "" {
		m, err := rendertarget.ParseMultiplier(*flagMultiplier)
		if err != nil {
			return fmt.Errorf("-multiplier: %w", err)
		}
		cfg.Reflection.ResolutionMultiplier = m
	}
	if *flagStereo != "" {
		on, err := strconv.ParseBool(*flagStereo)
		if err != nil {
			return fmt.Errorf("-stereo: %w", err)
		}
		cfg.Platform.Stereo = &on
	}
	if *flagCapture != "" {
		cfg.Capture.Format = *flagCapture
	}
	return nil
}
