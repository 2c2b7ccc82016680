// Package renderer draws the demo scene through render cameras with
// OpenGL. It implements reflection.SceneRenderer.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/planar-reflections/internal/engine/camera"
	"github.com/Faultbox/planar-reflections/internal/engine/framebuffer"
	"github.com/Faultbox/planar-reflections/internal/engine/lighting"
	"github.com/Faultbox/planar-reflections/internal/engine/quality"
	"github.com/Faultbox/planar-reflections/internal/engine/reflection"
	"github.com/Faultbox/planar-reflections/internal/engine/renderer/shaders"
	"github.com/Faultbox/planar-reflections/internal/engine/shader"
	"github.com/Faultbox/planar-reflections/internal/engine/shading"
	"github.com/Faultbox/planar-reflections/internal/engine/shadow"
	"github.com/Faultbox/planar-reflections/internal/engine/water"
	"github.com/Faultbox/planar-reflections/internal/logger"
	"github.com/Faultbox/planar-reflections/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int

	// Names the reflective material reads the published reflection from.
	Names reflection.Names

	FloorY     float32
	ClearColor math.Vec3
	FogColor   math.Vec3
	FogNear    float32
	FogFar     float32

	Logger *zap.Logger
}

// Renderer owns the GL programs and scene.
type Renderer struct {
	config  Config
	log     *zap.Logger
	quality *quality.Settings
	globals *shading.Globals

	scene  *Scene
	sun    lighting.Sun
	lit    *shader.Program
	mirror *shader.Program

	// Depth pass for cameras with shadows on. Nil when unsupported.
	depth      *shader.Program
	shadowMap  *shadow.Map
	lightSpace math.Mat4

	time   float32
	glName string
}

// New initializes OpenGL and uploads the scene. The GL context must be
// current.
func New(cfg Config, q *quality.Settings, globals *shading.Globals) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r := &Renderer{
		config:  cfg,
		log:     logger.Or(cfg.Logger, "renderer"),
		quality: q,
		globals: globals,
		sun:     lighting.DefaultSun(),
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	r.glName = gl.GoStr(gl.GetString(gl.RENDERER))
	r.log.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", r.glName),
		zap.String("vendor", gl.GoStr(gl.GetString(gl.VENDOR))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)

	var err error
	r.lit, err = shader.Compile("scene", shaders.SceneVertexShader, shaders.SceneFragmentShader)
	if err != nil {
		return nil, err
	}
	r.mirror, err = shader.Compile("mirror", shaders.SceneVertexShader, shaders.MirrorFragmentShader)
	if err != nil {
		r.lit.Delete()
		return nil, err
	}

	r.scene = buildDemoScene(cfg.FloorY)
	r.lightSpace = shadow.LightMatrix(r.sun.Direction, r.scene.Bounds)

	// Samplers of different types may not share a unit.
	for _, p := range []*shader.Program{r.lit, r.mirror} {
		p.Use()
		p.SetInt("uReflection", 0)
		p.SetInt("uShadowMap", 1)
		p.SetMat4("uLightSpace", r.lightSpace)
	}
	gl.UseProgram(0)

	r.initShadows()
	r.log.Debug("scene uploaded", zap.Int("objects", len(r.scene.Objects)))
	return r, nil
}

// initShadows sets up the depth pass. Failure only disables shadows.
func (r *Renderer) initShadows() {
	var err error
	r.depth, err = shader.Compile("shadow", shaders.ShadowVertexShader, shaders.ShadowFragmentShader)
	if err != nil {
		r.log.Warn("shadows disabled", zap.Error(err))
		return
	}
	r.shadowMap, err = shadow.NewMap(shadow.DefaultResolution)
	if err != nil {
		r.log.Warn("shadows disabled", zap.Error(err))
		r.depth.Delete()
		r.depth = nil
	}
}

// DeviceName returns the GL renderer string, used for capability detection.
func (r *Renderer) DeviceName() string {
	return r.glName
}

// Scene returns the drawn scene.
func (r *Renderer) Scene() *Scene {
	return r.scene
}

// Close releases GL resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	r.scene.destroy()
	r.lit.Delete()
	r.mirror.Delete()
	if r.shadowMap != nil {
		r.shadowMap.Destroy()
		r.depth.Delete()
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	r.log.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

// SetNames changes which shader globals the reflective material reads.
func (r *Renderer) SetNames(n reflection.Names) {
	r.config.Names = n
}

// Update advances animation by dt seconds.
func (r *Renderer) Update(dt float32) {
	r.time += dt
}

// RenderCamera draws the layers in cam's culling mask into cam.Target, or
// to the window when it has none.
func (r *Renderer) RenderCamera(cam *camera.Camera) error {
	shadows := cam.Shadows && r.shadowMap != nil
	if shadows {
		r.renderShadows(cam.CullingMask)
	}

	var target *framebuffer.Framebuffer
	if cam.Target != nil {
		fb, ok := cam.Target.(*framebuffer.Framebuffer)
		if !ok {
			return fmt.Errorf("camera %q: target %T is not a framebuffer", cam.Name, cam.Target)
		}
		target = fb
		restore := fb.Bind()
		defer restore()
	} else {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.Viewport(0, 0, int32(r.config.Width), int32(r.config.Height))
	}

	// Mirrored views flip handedness, so front faces wind clockwise.
	if r.quality.InvertCulling {
		gl.FrontFace(gl.CW)
	} else {
		gl.FrontFace(gl.CCW)
	}
	defer gl.FrontFace(gl.CCW)

	c := r.config.ClearColor
	gl.ClearColor(c.X, c.Y, c.Z, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	for _, o := range r.scene.visible(cam.CullingMask) {
		if o.Reflective {
			r.drawMirror(cam, o, target, shadows)
		} else {
			r.drawLit(cam, o, shadows)
		}
	}
	return nil
}

// renderShadows draws the depth of every caster in mask from the sun.
func (r *Renderer) renderShadows(mask camera.LayerMask) {
	restore := r.shadowMap.Bind()
	defer restore()

	r.depth.Use()
	r.depth.SetMat4("uLightSpace", r.lightSpace)
	for _, o := range r.scene.visible(mask) {
		if o.Reflective {
			continue
		}
		r.depth.SetMat4("uModel", o.Model)
		o.mesh.draw()
	}
}

func (r *Renderer) setCommon(p *shader.Program, cam *camera.Camera, o *Object, shadows bool) {
	p.SetMat4("uModel", o.Model)
	p.SetMat4("uView", cam.View)
	p.SetMat4("uProjection", cam.Projection)
	p.SetVec3("uColor", o.Color)

	fog := int32(0)
	if r.quality.Fog {
		fog = 1
	}
	p.SetInt("uFogEnabled", fog)
	p.SetVec3("uFogColor", r.config.FogColor)
	p.SetVec2("uFogRange", r.config.FogNear, r.config.FogFar)

	on := int32(0)
	if shadows {
		on = 1
		r.shadowMap.BindTexture(gl.TEXTURE1)
	}
	p.SetInt("uShadowEnabled", on)
}

func (r *Renderer) drawLit(cam *camera.Camera, o *Object, shadows bool) {
	r.lit.Use()
	r.setCommon(r.lit, cam, o, shadows)
	r.lit.SetVec3("uSunDir", r.sun.Direction)
	r.lit.SetVec3("uSunColor", r.sun.Color)
	r.lit.SetFloat("uAmbient", r.sun.Ambient)
	o.mesh.draw()
}

func (r *Renderer) drawMirror(cam *camera.Camera, o *Object, target *framebuffer.Framebuffer, shadows bool) {
	r.mirror.Use()
	r.setCommon(r.mirror, cam, o, shadows)
	r.mirror.SetFloat("uReflectivity", o.Reflectivity)
	r.mirror.SetFloat("uRipplePhase", water.RipplePhase(r.time, water.DefaultRippleSpeed))
	r.mirror.SetVec2("uScreenSize", float32(r.config.Width), float32(r.config.Height))

	rect, ok := r.globals.Vector(r.config.Names.Rect)
	if !ok {
		rect = camera.FullRect.Vec4()
	}
	r.mirror.SetVec4("uReflectionRect", rect)

	has := int32(0)
	if tex, ok := r.globals.Texture(r.config.Names.Texture); ok {
		// Never sample the texture being drawn into.
		if fb, isFB := tex.(*framebuffer.Framebuffer); isFB && fb != target {
			gl.ActiveTexture(gl.TEXTURE0)
			gl.BindTexture(gl.TEXTURE_2D, fb.ColorTexture())
			has = 1
		}
	}
	r.mirror.SetInt("uHasReflection", has)

	o.mesh.draw()
	gl.BindTexture(gl.TEXTURE_2D, 0)
}
