package renderer

import (
	"github.com/Faultbox/planar-reflections/internal/engine/camera"
	"github.com/Faultbox/planar-reflections/internal/engine/shadow"
	"github.com/Faultbox/planar-reflections/internal/engine/water"
	"github.com/Faultbox/planar-reflections/pkg/math"
)

// Scene layers.
const (
	LayerDefault = 0
	LayerMirror  = 4
)

// Object is one drawable in the scene.
type Object struct {
	Name  string
	mesh  *Mesh
	Model math.Mat4
	Color math.Vec3
	Layer int
	// Reflective objects sample the published reflection texture.
	Reflective   bool
	Reflectivity float32
}

// Scene is the set of objects the renderer draws.
type Scene struct {
	Objects []*Object
	// Bounds encloses every object, for the shadow light frustum.
	Bounds shadow.Bounds
	meshes []*Mesh
}

func (s *Scene) visible(mask camera.LayerMask) []*Object {
	out := make([]*Object, 0, len(s.Objects))
	for _, o := range s.Objects {
		if mask.Has(o.Layer) {
			out = append(out, o)
		}
	}
	return out
}

func (s *Scene) destroy() {
	for _, m := range s.meshes {
		m.destroy()
	}
	s.meshes = nil
	s.Objects = nil
}

// buildDemoScene uploads a ring of pillars standing on a reflective floor
// at floorY.
func buildDemoScene(floorY float32) *Scene {
	cube := newMesh(cubeVertices())
	floor := newMesh(water.BuildPlaneWithPadding(-10, 10, -10, 10, floorY, 2).Vertices)
	s := &Scene{
		meshes: []*Mesh{cube, floor},
		Bounds: shadow.Bounds{
			Min: math.Vec3{X: -12, Y: floorY, Z: -12},
			Max: math.Vec3{X: 12, Y: floorY + 4, Z: 12},
		},
	}

	s.Objects = append(s.Objects, &Object{
		Name:         "floor",
		mesh:         floor,
		Model:        math.Identity(),
		Color:        math.Vec3{X: 0.08, Y: 0.1, Z: 0.14},
		Layer:        LayerMirror,
		Reflective:   true,
		Reflectivity: 0.85,
	})

	colors := []math.Vec3{
		{X: 0.9, Y: 0.3, Z: 0.2},
		{X: 0.2, Y: 0.7, Z: 0.3},
		{X: 0.2, Y: 0.4, Z: 0.9},
		{X: 0.9, Y: 0.8, Z: 0.2},
		{X: 0.7, Y: 0.3, Z: 0.8},
		{X: 0.9, Y: 0.9, Z: 0.9},
	}
	for i, c := range colors {
		height := 1 + float32(i%3)
		model := math.RotateY(float32(i) * 1.047).
			Mul(math.Translate(6, floorY+height/2, 0)).
			Mul(math.Scale(1, height, 1))
		s.Objects = append(s.Objects, &Object{
			Name:  "pillar",
			mesh:  cube,
			Model: model,
			Color: c,
			Layer: LayerDefault,
		})
	}
	s.Objects = append(s.Objects, &Object{
		Name:  "center",
		mesh:  cube,
		Model: math.Translate(0, floorY+1.5, 0).Mul(math.Scale(1.5, 1.5, 1.5)),
		Color: math.Vec3{X: 0.95, Y: 0.5, Z: 0.1},
		Layer: LayerDefault,
	})
	return s
}
