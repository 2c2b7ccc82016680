// Package rendertarget manages the off-screen color targets the reflection
// pass renders into.
package rendertarget

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAllocation is returned when a target cannot be created, either because
// the requested size is empty or because the device rejected it.
var ErrAllocation = errors.New("render target allocation failed")

// Format is a color buffer format.
type Format int

const (
	FormatUnknown Format = iota
	FormatRGBA8
	FormatRG11B10Float
	FormatRGBA16Float
)

// DefaultHDR is the HDR fallback every device must support.
const DefaultHDR = FormatRGBA16Float

func (f Format) String() string {
	switch f {
	case FormatRGBA8:
		return "RGBA8"
	case FormatRG11B10Float:
		return "RG11B10F"
	case FormatRGBA16Float:
		return "RGBA16F"
	default:
		return "unknown"
	}
}

// Size is a width/height pair in pixels.
type Size struct {
	Width, Height int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Empty reports whether either axis is below one pixel.
func (s Size) Empty() bool {
	return s.Width < 1 || s.Height < 1
}

// Descriptor describes a target to allocate.
type Descriptor struct {
	Name      string
	Size      Size
	Format    Format
	DepthBits int
}

// Target is an allocated color buffer with a depth attachment.
type Target interface {
	Size() Size
	Format() Format
	// Release frees the GPU resources. Calling it twice is a no-op.
	Release()
}

// Device allocates targets and copies between them.
type Device interface {
	Supports(f Format) bool
	Allocate(desc Descriptor) (Target, error)
	// Blit copies the color contents of src into dst.
	Blit(src, dst Target) error
}

// Targets is the set of buffers owned by a Pool. Right and Clone are nil
// unless stereo rendering or the read/write clone is required.
type Targets struct {
	Primary Target
	Right   Target
	Clone   Target
}

// Count returns the number of allocated targets.
func (t Targets) Count() int {
	n := 0
	for _, tg := range []Target{t.Primary, t.Right, t.Clone} {
		if tg != nil {
			n++
		}
	}
	return n
}

// Multiplier scales reflection targets relative to the screen.
type Multiplier int

const (
	Full Multiplier = iota
	Half
	Third
	Quarter
)

var multiplierNames = [...]string{"full", "half", "third", "quarter"}

// Scale returns the size factor. Unknown values fall back to half size.
func (m Multiplier) Scale() float32 {
	switch m {
	case Full:
		return 1
	case Half:
		return 0.5
	case Third:
		return 0.33
	case Quarter:
		return 0.25
	default:
		return 0.5
	}
}

// Valid reports whether m is one of the defined multipliers.
func (m Multiplier) Valid() bool {
	return m >= Full && m <= Quarter
}

func (m Multiplier) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Multiplier(%d)", int(m))
	}
	return multiplierNames[m]
}

// MultiplierFromIndex converts a selector index (0 = full ... 3 = quarter).
func MultiplierFromIndex(i int) (Multiplier, error) {
	m := Multiplier(i)
	if !m.Valid() {
		return 0, fmt.Errorf("resolution multiplier index %d out of range [0,%d]", i, len(multiplierNames)-1)
	}
	return m, nil
}

// ParseMultiplier parses a multiplier name, case-insensitively.
func ParseMultiplier(s string) (Multiplier, error) {
	for i, name := range multiplierNames {
		if strings.EqualFold(s, name) {
			return Multiplier(i), nil
		}
	}
	return 0, fmt.Errorf("unknown resolution multiplier %q", s)
}

// MarshalText implements encoding.TextMarshaler for YAML and TOML configs.
func (m Multiplier) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid resolution multiplier %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Multiplier) UnmarshalText(text []byte) error {
	v, err := ParseMultiplier(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
