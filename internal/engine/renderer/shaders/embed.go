// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// SceneVertexShader transforms lit scene geometry.
//
//go:embed scene.vert
var SceneVertexShader string

// SceneFragmentShader shades opaque geometry with sun light and fog.
//
//go:embed scene.frag
var SceneFragmentShader string

// MirrorFragmentShader shades reflective surfaces from the published
// reflection texture.
//
//go:embed mirror.frag
var MirrorFragmentShader string

// ShadowVertexShader projects geometry into light space for the depth pass.
//
//go:embed shadow.vert
var ShadowVertexShader string

// ShadowFragmentShader writes depth only.
//
//go:embed shadow.frag
var ShadowFragmentShader string
