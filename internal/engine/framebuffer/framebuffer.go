// Package framebuffer implements render targets as OpenGL framebuffers.
package framebuffer

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/planar-reflections/internal/engine/rendertarget"
	"github.com/Faultbox/planar-reflections/internal/logger"
)

// Framebuffer is an offscreen color texture with a depth renderbuffer.
type Framebuffer struct {
	fbo          uint32
	colorTexture uint32
	depthRBO     uint32
	desc         rendertarget.Descriptor
	device       *Device
}

type glFormat struct {
	internal int32
	format   uint32
	xtype    uint32
}

var glFormats = map[rendertarget.Format]glFormat{
	rendertarget.FormatRGBA8:        {gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE},
	rendertarget.FormatRG11B10Float: {gl.R11F_G11F_B10F, gl.RGB, gl.FLOAT},
	rendertarget.FormatRGBA16Float:  {gl.RGBA16F, gl.RGBA, gl.HALF_FLOAT},
}

func depthFormat(bits int) uint32 {
	switch {
	case bits <= 0:
		return 0
	case bits <= 16:
		return gl.DEPTH_COMPONENT16
	default:
		return gl.DEPTH_COMPONENT24
	}
}

func create(desc rendertarget.Descriptor) (*Framebuffer, error) {
	f, ok := glFormats[desc.Format]
	if !ok {
		return nil, fmt.Errorf("unsupported format %s", desc.Format)
	}
	if desc.Size.Empty() {
		return nil, fmt.Errorf("invalid size %s", desc.Size)
	}
	w, h := int32(desc.Size.Width), int32(desc.Size.Height)

	fb := &Framebuffer{desc: desc}

	gl.GenFramebuffers(1, &fb.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)

	gl.GenTextures(1, &fb.colorTexture)
	gl.BindTexture(gl.TEXTURE_2D, fb.colorTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, f.internal, w, h, 0, f.format, f.xtype, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, fb.colorTexture, 0)

	if df := depthFormat(desc.DepthBits); df != 0 {
		gl.GenRenderbuffers(1, &fb.depthRBO)
		gl.BindRenderbuffer(gl.RENDERBUFFER, fb.depthRBO)
		gl.RenderbufferStorage(gl.RENDERBUFFER, df, w, h)
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, fb.depthRBO)
	}

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		fb.destroy()
		return nil, fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}
	return fb, nil
}

// Size implements rendertarget.Target.
func (fb *Framebuffer) Size() rendertarget.Size {
	return fb.desc.Size
}

// Format implements rendertarget.Target.
func (fb *Framebuffer) Format() rendertarget.Format {
	return fb.desc.Format
}

// Release implements rendertarget.Target. Safe to call more than once.
func (fb *Framebuffer) Release() {
	if fb.fbo == 0 {
		return
	}
	fb.destroy()
	if fb.device != nil {
		fb.device.live--
		fb.device.log.Debug("framebuffer released",
			zap.String("name", fb.desc.Name),
			zap.Int("live", fb.device.live),
		)
	}
}

func (fb *Framebuffer) destroy() {
	if fb.fbo != 0 {
		gl.DeleteFramebuffers(1, &fb.fbo)
		fb.fbo = 0
	}
	if fb.colorTexture != 0 {
		gl.DeleteTextures(1, &fb.colorTexture)
		fb.colorTexture = 0
	}
	if fb.depthRBO != 0 {
		gl.DeleteRenderbuffers(1, &fb.depthRBO)
		fb.depthRBO = 0
	}
}

// Bind makes this framebuffer the current render target and returns a
// function restoring the previous framebuffer and viewport.
func (fb *Framebuffer) Bind() func() {
	var prevFBO int32
	var prevViewport [4]int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prevFBO)
	gl.GetIntegerv(gl.VIEWPORT, &prevViewport[0])

	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)
	gl.Viewport(0, 0, int32(fb.desc.Size.Width), int32(fb.desc.Size.Height))

	return func() {
		gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prevFBO))
		gl.Viewport(prevViewport[0], prevViewport[1], prevViewport[2], prevViewport[3])
	}
}

// ColorTexture returns the color attachment texture ID.
func (fb *Framebuffer) ColorTexture() uint32 {
	return fb.colorTexture
}

// ReadPixels reads the color attachment as 8-bit RGBA, bottom row first.
func (fb *Framebuffer) ReadPixels() []byte {
	w, h := fb.desc.Size.Width, fb.desc.Size.Height
	pixels := make([]byte, w*h*4)

	var prevFBO int32
	gl.GetIntegerv(gl.READ_FRAMEBUFFER_BINDING, &prevFBO)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, fb.fbo)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, uint32(prevFBO))

	return pixels
}

// Device allocates framebuffers on the current GL context.
type Device struct {
	log       *zap.Logger
	supported map[rendertarget.Format]bool
	live      int
}

// NewDevice creates a device. The GL context must be current.
func NewDevice(log *zap.Logger) *Device {
	return &Device{
		log:       logger.Or(log, "framebuffer"),
		supported: make(map[rendertarget.Format]bool),
	}
}

// Supports reports whether the driver can render to f. The first query
// per format probes with a tiny framebuffer.
func (d *Device) Supports(f rendertarget.Format) bool {
	if ok, seen := d.supported[f]; seen {
		return ok
	}
	fb, err := create(rendertarget.Descriptor{Size: rendertarget.Size{Width: 4, Height: 4}, Format: f})
	ok := err == nil
	if ok {
		fb.destroy()
	}
	d.supported[f] = ok
	d.log.Debug("render format probed", zap.Stringer("format", f), zap.Bool("supported", ok))
	return ok
}

// Allocate implements rendertarget.Device.
func (d *Device) Allocate(desc rendertarget.Descriptor) (rendertarget.Target, error) {
	fb, err := create(desc)
	if err != nil {
		return nil, fmt.Errorf("creating %s framebuffer: %w", desc.Name, err)
	}
	fb.device = d
	d.live++
	d.log.Debug("framebuffer allocated",
		zap.String("name", desc.Name),
		zap.Stringer("size", desc.Size),
		zap.Stringer("format", desc.Format),
		zap.Int("live", d.live),
	)
	return fb, nil
}

// Blit copies the color of src into dst, scaling if the sizes differ.
func (d *Device) Blit(src, dst rendertarget.Target) error {
	s, ok := src.(*Framebuffer)
	if !ok || s.fbo == 0 {
		return errors.New("blit source is not a live framebuffer")
	}
	t, ok := dst.(*Framebuffer)
	if !ok || t.fbo == 0 {
		return errors.New("blit destination is not a live framebuffer")
	}

	var prevRead, prevDraw int32
	gl.GetIntegerv(gl.READ_FRAMEBUFFER_BINDING, &prevRead)
	gl.GetIntegerv(gl.DRAW_FRAMEBUFFER_BINDING, &prevDraw)

	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, s.fbo)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, t.fbo)
	gl.BlitFramebuffer(
		0, 0, int32(s.desc.Size.Width), int32(s.desc.Size.Height),
		0, 0, int32(t.desc.Size.Width), int32(t.desc.Size.Height),
		gl.COLOR_BUFFER_BIT, gl.LINEAR,
	)

	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, uint32(prevRead))
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, uint32(prevDraw))
	return nil
}

// Live returns the number of unreleased framebuffers.
func (d *Device) Live() int {
	return d.live
}

var _ rendertarget.Device = (*Device)(nil)
