package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/planar-reflections/pkg/math"
)

// OrbitCamera orbits around a center point. It is the host camera of the
// demo and implements Source.
type OrbitCamera struct {
	Center math.Vec3

	// Spherical coordinates
	Distance  float32
	RotationX float32 // pitch, radians
	RotationY float32 // yaw, radians

	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	DragSensitivity float32
	ZoomSensitivity float32

	Lens Params

	// EyeSeparation is the interpupillary distance used for stereo views.
	EyeSeparation float32

	// Width and Height are the pixel size of the render area.
	Width, Height int
	Viewport      Rect
}

// NewOrbitCamera creates an orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        12,
		RotationX:       0.45,
		MinDistance:     2,
		MaxDistance:     80,
		MinPitch:        -1.2,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		Lens: Params{
			FOV:         math32.Pi / 3,
			Near:        0.1,
			Far:         500,
			Aspect:      16.0 / 9.0,
			CullingMask: AllLayers,
		},
		EyeSeparation: 0.064,
		Viewport:      FullRect,
	}
}

// SetSize updates the pixel size and aspect ratio.
func (c *OrbitCamera) SetSize(width, height int) {
	c.Width, c.Height = width, height
	if width > 0 && height > 0 {
		c.Lens.Aspect = float32(width) / float32(height)
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	sx, cx := math32.Sincos(c.RotationX)
	sy, cy := math32.Sincos(c.RotationY)
	return c.Center.Add(math.Vec3{
		X: c.Distance * cx * sy,
		Y: c.Distance * sx,
		Z: c.Distance * cx * cy,
	})
}

// Forward returns the unit view direction.
func (c *OrbitCamera) Forward() math.Vec3 {
	return c.Center.Sub(c.Position()).Normalize()
}

// View returns the world-to-camera matrix.
func (c *OrbitCamera) View() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, math.Up)
}

// Projection returns the perspective projection.
func (c *OrbitCamera) Projection() math.Mat4 {
	return math.Perspective(c.Lens.FOV, c.Lens.Aspect, c.Lens.Near, c.Lens.Far)
}

// StereoView shifts the mono view half the eye separation sideways.
func (c *OrbitCamera) StereoView(eye Eye) math.Mat4 {
	half := c.EyeSeparation / 2
	if eye == EyeLeft {
		half = -half
	}
	// Moving the eye right moves the world left in camera space.
	return math.Translate(-half, 0, 0).Mul(c.View())
}

// StereoProjection returns the per-eye projection. Both eyes share the
// symmetric frustum.
func (c *OrbitCamera) StereoProjection(Eye) math.Mat4 {
	return c.Projection()
}

// PixelSize returns the render area size.
func (c *OrbitCamera) PixelSize() (int, int) {
	return c.Width, c.Height
}

// Rect returns the normalized viewport.
func (c *OrbitCamera) Rect() Rect {
	return c.Viewport
}

// Params returns the lens parameters.
func (c *OrbitCamera) Params() Params {
	return c.Lens
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.RotationY -= deltaX * c.DragSensitivity
	c.RotationX += deltaY * c.DragSensitivity
	c.RotationX = clamp(c.RotationX, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = clamp(c.Distance, c.MinDistance, c.MaxDistance)
}

// HandleMovement pans the center point. Speed scales with distance.
func (c *OrbitCamera) HandleMovement(forward, right, up float32) {
	speed := c.Distance * 0.01
	sy, cy := math32.Sincos(c.RotationY)

	// negate forward so W moves into the scene
	c.Center.X += (-sy*forward + cy*right) * speed
	c.Center.Z += (-cy*forward - sy*right) * speed
	c.Center.Y += up * speed
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var _ Source = (*OrbitCamera)(nil)
