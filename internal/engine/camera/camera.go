// Package camera provides the cameras the renderer draws through: the
// host-facing Source accessor and the Camera entity used for off-screen
// passes.
package camera

import (
	"github.com/Faultbox/planar-reflections/internal/engine/rendertarget"
	"github.com/Faultbox/planar-reflections/pkg/math"
)

// Eye selects one view of a stereo camera.
type Eye int

const (
	EyeLeft Eye = iota
	EyeRight
)

func (e Eye) String() string {
	if e == EyeRight {
		return "right"
	}
	return "left"
}

// LayerMask selects which scene layers a camera draws. Bit i is layer i.
type LayerMask uint32

// AllLayers draws everything.
const AllLayers = ^LayerMask(0)

// Has reports whether layer is enabled.
func (m LayerMask) Has(layer int) bool {
	return layer >= 0 && layer < 32 && m&(1<<uint(layer)) != 0
}

// Rect is a viewport in normalized screen coordinates.
type Rect struct {
	X, Y, Width, Height float32
}

// FullRect covers the whole screen.
var FullRect = Rect{Width: 1, Height: 1}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Vec4 packs r as (x, y, width, height).
func (r Rect) Vec4() math.Vec4 {
	return math.Vec4{r.X, r.Y, r.Width, r.Height}
}

// Params are the lens and layer settings shared between cameras.
type Params struct {
	FOV         float32 // vertical, radians
	Near, Far   float32
	Aspect      float32
	CullingMask LayerMask
}

// Source is the read-only view of a host camera that passes derive their
// own cameras from.
type Source interface {
	Position() math.Vec3
	Forward() math.Vec3
	View() math.Mat4
	Projection() math.Mat4
	StereoView(eye Eye) math.Mat4
	StereoProjection(eye Eye) math.Mat4
	// PixelSize is the size of the area the camera renders to. Zero when
	// the host has not sized it yet.
	PixelSize() (width, height int)
	Rect() Rect
	Params() Params
}

// Camera is a render camera entity owned by a pass. It is driven
// explicitly each frame and drawn only when its owner asks.
type Camera struct {
	Name string

	Position math.Vec3
	Forward  math.Vec3
	Params

	View       math.Mat4
	Projection math.Mat4

	// Target is where the camera renders. Nil renders to the screen.
	Target rendertarget.Target

	OcclusionCulling bool
	Shadows          bool
	// AutoRender makes the host draw the camera every frame on its own.
	AutoRender bool
	// Persistent cameras are saved with the scene.
	Persistent bool
	// Depth orders cameras; lower draws first.
	Depth int
}

// New returns a camera with identity matrices that draws every layer.
func New(name string) *Camera {
	return &Camera{
		Name:             name,
		Forward:          math.Vec3{Z: -1},
		Params:           Params{CullingMask: AllLayers},
		View:             math.Identity(),
		Projection:       math.Identity(),
		OcclusionCulling: true,
		Shadows:          true,
		AutoRender:       true,
		Persistent:       true,
	}
}

// CopyFrom seeds c from src: transform, matrices and lens parameters.
// Flags, depth and target are left alone.
func (c *Camera) CopyFrom(src Source) {
	c.Position = src.Position()
	c.Forward = src.Forward()
	c.View = src.View()
	c.Projection = src.Projection()
	c.Params = src.Params()
}
