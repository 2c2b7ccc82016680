package reflection

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/planar-reflections/internal/engine/camera"
	"github.com/Faultbox/planar-reflections/internal/engine/pipeline"
	"github.com/Faultbox/planar-reflections/internal/engine/quality"
	"github.com/Faultbox/planar-reflections/internal/engine/rendertarget"
	"github.com/Faultbox/planar-reflections/pkg/math"
)

// ShaderGlobals receives published textures and vectors.
type ShaderGlobals interface {
	SetTexture(name string, t rendertarget.Target)
	SetVector(name string, v math.Vec4)
}

// SceneRenderer draws the scene through a camera into its target.
type SceneRenderer interface {
	RenderCamera(cam *camera.Camera) error
}

// State is the phase of a reflection pass.
type State int

const (
	StateIdle State = iota
	StatePreparing
	StateRenderingMono
	StateRenderingLeft
	StateRenderingRight
	StatePublishing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreparing:
		return "preparing"
	case StateRenderingMono:
		return "rendering-mono"
	case StateRenderingLeft:
		return "rendering-left"
	case StateRenderingRight:
		return "rendering-right"
	case StatePublishing:
		return "publishing"
	default:
		return "unknown"
	}
}

// Pass renders and publishes the reflection for one frame.
type Pass struct {
	settings *Settings
	mirror   *MirrorController
	pool     *rendertarget.Pool
	device   rendertarget.Device
	source   camera.Source
	globals  ShaderGlobals
	renderer SceneRenderer
	quality  *quality.Settings
	caps     pipeline.Capabilities
	owner    Transform
	screen   func() rendertarget.Size
	log      *zap.Logger

	state   State
	onState func(from, to State)
}

// State returns the current phase.
func (p *Pass) State() State {
	return p.state
}

// OnStateChange installs a hook called on every phase transition.
func (p *Pass) OnStateChange(fn func(from, to State)) {
	p.onState = fn
}

func (p *Pass) setState(s State) {
	from := p.state
	p.state = s
	if p.onState != nil && from != s {
		p.onState(from, s)
	}
}

// Execute runs the pass for a camera about to render. Reflection and
// preview cameras are ignored. Quality settings are restored on every
// return path.
func (p *Pass) Execute(frame pipeline.Frame, kind pipeline.CameraKind) error {
	if kind == pipeline.CameraReflection || kind == pipeline.CameraPreview {
		return nil
	}

	p.setState(StatePreparing)
	defer p.setState(StateIdle)

	scope := quality.Begin(p.quality)
	scope.Apply()
	defer scope.Restore()

	plane := p.settings.plane(p.owner)

	if !p.caps.IsStereoCapable {
		return p.render(frame, plane, false, camera.EyeLeft, StateRenderingMono)
	}
	if err := p.render(frame, plane, true, camera.EyeLeft, StateRenderingLeft); err != nil {
		return err
	}
	return p.render(frame, plane, true, camera.EyeRight, StateRenderingRight)
}

func (p *Pass) render(frame pipeline.Frame, plane ReflectionPlane, stereo bool, eye camera.Eye, state State) error {
	p.setState(state)

	p.mirror.Update(p.source, plane, stereo, eye)

	needsClone := !p.caps.SupportsSimultaneousReadWrite
	targets, err := p.pool.Ensure(frame.Time, p.screenSize(), stereo, needsClone)
	if err != nil {
		p.unpublish()
		return fmt.Errorf("reflection %s: %w", state, err)
	}

	cam := p.mirror.Camera()
	cam.Target = targets.Primary
	if eye == camera.EyeRight {
		cam.Target = targets.Right
	}

	if err := p.renderer.RenderCamera(cam); err != nil {
		return fmt.Errorf("reflection %s: render: %w", state, err)
	}

	p.setState(StatePublishing)
	return p.publish(targets, eye)
}

func (p *Pass) publish(targets rendertarget.Targets, eye camera.Eye) error {
	names := p.settings.Names
	if eye == camera.EyeRight {
		p.globals.SetTexture(names.TextureRight, targets.Right)
	} else {
		tex := targets.Primary
		if !p.caps.SupportsSimultaneousReadWrite {
			if err := p.device.Blit(targets.Primary, targets.Clone); err != nil {
				return fmt.Errorf("reflection publish: copy to clone: %w", err)
			}
			tex = targets.Clone
		}
		p.globals.SetTexture(names.Texture, tex)
	}
	p.globals.SetVector(names.Rect, p.rect().Vec4())
	return nil
}

// unpublish unbinds every published texture. Called whenever the pool may
// have released them.
func (p *Pass) unpublish() {
	p.globals.SetTexture(p.settings.Names.Texture, nil)
	p.globals.SetTexture(p.settings.Names.TextureRight, nil)
}

// screenSize is the host camera's pixel size, or the window size while the
// camera reports none.
func (p *Pass) screenSize() rendertarget.Size {
	w, h := p.source.PixelSize()
	if (w <= 0 || h <= 0) && p.screen != nil {
		return p.screen()
	}
	return rendertarget.Size{Width: w, Height: h}
}

func (p *Pass) rect() camera.Rect {
	r := p.source.Rect()
	if r.Empty() {
		return camera.FullRect
	}
	return r
}
