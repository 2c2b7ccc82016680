// Package shading stores the global shader parameters published by render
// passes and consumed by surface shaders.
package shading

import (
	"github.com/Faultbox/planar-reflections/internal/engine/rendertarget"
	"github.com/Faultbox/planar-reflections/pkg/math"
)

// Globals is a name-keyed store of textures and vectors, the equivalent of
// global shader uniforms. Renderers look values up by name when they bind
// a program.
type Globals struct {
	textures map[string]rendertarget.Target
	vectors  map[string]math.Vec4
}

// NewGlobals returns an empty store.
func NewGlobals() *Globals {
	return &Globals{
		textures: make(map[string]rendertarget.Target),
		vectors:  make(map[string]math.Vec4),
	}
}

// SetTexture binds t under name. A nil target unbinds it.
func (g *Globals) SetTexture(name string, t rendertarget.Target) {
	if t == nil {
		delete(g.textures, name)
		return
	}
	g.textures[name] = t
}

// SetVector sets a global vector.
func (g *Globals) SetVector(name string, v math.Vec4) {
	g.vectors[name] = v
}

// Texture returns the texture bound under name.
func (g *Globals) Texture(name string) (rendertarget.Target, bool) {
	t, ok := g.textures[name]
	return t, ok
}

// Vector returns the vector stored under name.
func (g *Globals) Vector(name string) (math.Vec4, bool) {
	v, ok := g.vectors[name]
	return v, ok
}
