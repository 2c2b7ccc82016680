// Package reflection renders planar reflections: every frame it mirrors the
// host camera across a plane, draws the scene from there into an
// off-screen target and publishes the result to the shading globals.
package reflection

import (
	"fmt"

	"github.com/Faultbox/planar-reflections/internal/engine/camera"
	"github.com/Faultbox/planar-reflections/internal/engine/rendertarget"
	"github.com/Faultbox/planar-reflections/pkg/math"
)

// Default shader parameter names.
const (
	DefaultTextureName      = "_PlanarReflectionTexture"
	DefaultTextureRightName = "_PlanarReflectionTextureRight"
	DefaultRectName         = "_PlanarReflectionTextureRect"
)

// CameraName is the name of the mirror camera entity.
const CameraName = "Planar Reflection Camera"

// Transform is the world placement of a plane-defining object.
type Transform interface {
	Position() math.Vec3
	// Up is the object's local up axis in world space.
	Up() math.Vec3
}

// Placement is a fixed Transform.
type Placement struct {
	Origin math.Vec3
	Normal math.Vec3
}

// Position implements Transform.
func (p Placement) Position() math.Vec3 { return p.Origin }

// Up implements Transform.
func (p Placement) Up() math.Vec3 { return p.Normal }

// Names are the shader globals results are published under.
type Names struct {
	Texture      string
	TextureRight string
	Rect         string
}

// Settings configure one reflection component.
type Settings struct {
	Multiplier rendertarget.Multiplier
	// ClipPlaneOffset pushes the reflection plane along its normal.
	ClipPlaneOffset float32
	ReflectLayers   camera.LayerMask
	RenderShadows   bool

	// TargetPlane defines the mirror. Nil uses the component owner.
	TargetPlane Transform
	// PlaneOffset raises the target plane along world up.
	PlaneOffset float32

	Names Names
}

// DefaultSettings returns third-resolution reflections of every layer
// without shadows.
func DefaultSettings() Settings {
	return Settings{
		Multiplier:    rendertarget.Third,
		ReflectLayers: camera.AllLayers,
		Names: Names{
			Texture:      DefaultTextureName,
			TextureRight: DefaultTextureRightName,
			Rect:         DefaultRectName,
		},
	}
}

// Validate reports settings the component cannot run with.
func (s Settings) Validate() error {
	if !s.Multiplier.Valid() {
		return fmt.Errorf("%w: resolution multiplier %d", ErrInvalidConfiguration, int(s.Multiplier))
	}
	if s.Names.Texture == "" || s.Names.TextureRight == "" || s.Names.Rect == "" {
		return fmt.Errorf("%w: empty shader property name", ErrInvalidConfiguration)
	}
	return nil
}

// ReflectionPlane is the mirror for one frame.
type ReflectionPlane struct {
	Position math.Vec3
	Normal   math.Vec3
}

// plane resolves the mirror from the target plane, falling back to owner.
func (s *Settings) plane(owner Transform) ReflectionPlane {
	if s.TargetPlane != nil {
		return ReflectionPlane{
			Position: s.TargetPlane.Position().Add(math.Up.Scale(s.PlaneOffset)),
			Normal:   s.TargetPlane.Up().Normalize(),
		}
	}
	return ReflectionPlane{
		Position: owner.Position(),
		Normal:   owner.Up().Normalize(),
	}
}
