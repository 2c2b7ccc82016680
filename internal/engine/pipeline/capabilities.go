package pipeline

import "strings"

// Capabilities are platform traits resolved once at startup and read by
// the reflection pass instead of compile-time platform switches.
type Capabilities struct {
	// SupportsSimultaneousReadWrite is false on platforms (WebGL) that
	// report a feedback loop when a texture bound for sampling is also the
	// current render target.
	SupportsSimultaneousReadWrite bool
	// IsStereoCapable is true when the display renders one view per eye.
	IsStereoCapable bool
}

// Overrides force capability values from configuration. Nil keeps the
// detected value.
type Overrides struct {
	SimultaneousReadWrite *bool
	Stereo                *bool
}

// DetectCapabilities derives capabilities from the graphics API's renderer
// string (as reported by glGetString(GL_RENDERER) or a browser) and applies
// overrides.
func DetectCapabilities(renderer string, o Overrides) Capabilities {
	r := strings.ToLower(renderer)
	caps := Capabilities{
		SupportsSimultaneousReadWrite: !strings.Contains(r, "webgl"),
		IsStereoCapable:               strings.Contains(r, "quest") || strings.Contains(r, "openxr"),
	}
	if o.SimultaneousReadWrite != nil {
		caps.SupportsSimultaneousReadWrite = *o.SimultaneousReadWrite
	}
	if o.Stereo != nil {
		caps.IsStereoCapable = *o.Stereo
	}
	return caps
}
