package reflection

import (
	"go.uber.org/zap"

	"github.com/Faultbox/planar-reflections/internal/engine/camera"
	"github.com/Faultbox/planar-reflections/pkg/math"
)

// clipNudge moves the oblique near plane slightly below the mirror so
// geometry touching the surface is not clipped away.
const clipNudge = 0.1

// mirrorDepth orders the mirror camera before the host cameras.
const mirrorDepth = -10

// MirrorTransform is the mirrored camera state for one frame.
type MirrorTransform struct {
	View       math.Mat4
	Projection math.Mat4
	Position   math.Vec3
	Forward    math.Vec3
}

// MirrorController owns the mirror camera of one component and keeps it
// in sync with the host camera.
type MirrorController struct {
	settings *Settings
	log      *zap.Logger
	cam      *camera.Camera
}

// NewMirrorController creates a controller reading the given settings.
// No camera exists until EnsureCamera or Update.
func NewMirrorController(settings *Settings, log *zap.Logger) *MirrorController {
	return &MirrorController{settings: settings, log: log}
}

// EnsureCamera returns the mirror camera, creating it on first use.
func (m *MirrorController) EnsureCamera() *camera.Camera {
	if m.cam == nil {
		m.cam = camera.New(CameraName)
		m.cam.AutoRender = false
		m.cam.Persistent = false
		m.cam.Depth = mirrorDepth
		m.log.Debug("mirror camera created")
	}
	return m.cam
}

// Camera returns the mirror camera, or nil before it is created.
func (m *MirrorController) Camera() *camera.Camera {
	return m.cam
}

// Update mirrors src across plane and writes the result to the mirror
// camera. For stereo rendering the eye's view and projection are used.
func (m *MirrorController) Update(src camera.Source, plane ReflectionPlane, stereo bool, eye camera.Eye) MirrorTransform {
	cam := m.EnsureCamera()
	cam.CopyFrom(src)
	cam.OcclusionCulling = false
	cam.Shadows = m.settings.RenderShadows

	reflect := math.ReflectionMatrix(math.PlaneFromPointNormal(plane.Position, plane.Normal, m.settings.ClipPlaneOffset))

	view, proj := src.View(), src.Projection()
	if stereo {
		view, proj = src.StereoView(eye), src.StereoProjection(eye)
	}

	mt := MirrorTransform{
		View:     view.Mul(reflect),
		Position: reflect.TransformVec3(src.Position()),
		Forward:  src.Forward().Reflect(plane.Normal),
	}

	clip := math.CameraSpacePlane(mt.View,
		plane.Position.Sub(plane.Normal.Scale(clipNudge)), plane.Normal,
		m.settings.ClipPlaneOffset, 1)
	mt.Projection = math.ObliqueProjection(clip, proj)

	cam.Position = mt.Position
	cam.Forward = mt.Forward
	cam.View = mt.View
	cam.Projection = mt.Projection
	cam.CullingMask = m.settings.ReflectLayers
	return mt
}

// Destroy detaches the camera from its target and drops it.
func (m *MirrorController) Destroy() {
	if m.cam == nil {
		return
	}
	m.cam.Target = nil
	m.cam = nil
	m.log.Debug("mirror camera destroyed")
}
