// Package rendertargettest provides an in-memory rendertarget.Device for
// tests that cannot create a GL context.
package rendertargettest

import (
	"errors"

	"github.com/Faultbox/planar-reflections/internal/engine/rendertarget"
)

// ErrRejected is returned by Allocate while Device.Fail is set.
var ErrRejected = errors.New("fake device rejected allocation")

// Target is a fake render target.
type Target struct {
	Desc     rendertarget.Descriptor
	Released bool
	device   *Device
}

// Size implements rendertarget.Target.
func (t *Target) Size() rendertarget.Size { return t.Desc.Size }

// Format implements rendertarget.Target.
func (t *Target) Format() rendertarget.Format { return t.Desc.Format }

// Release implements rendertarget.Target.
func (t *Target) Release() {
	if t.Released {
		return
	}
	t.Released = true
	t.device.Releases++
}

// Blit records one copy.
type Blit struct {
	Src, Dst *Target
}

// Device records every allocation, release and blit.
type Device struct {
	// Formats lists the supported formats; nil means every format.
	Formats []rendertarget.Format
	// Fail makes Allocate return ErrRejected.
	Fail bool

	Allocations int
	Releases    int
	Allocated   []*Target
	Blits       []Blit
}

// New returns a device that supports every format.
func New() *Device {
	return &Device{}
}

// Supports implements rendertarget.Device.
func (d *Device) Supports(f rendertarget.Format) bool {
	if d.Formats == nil {
		return true
	}
	for _, s := range d.Formats {
		if s == f {
			return true
		}
	}
	return false
}

// Allocate implements rendertarget.Device.
func (d *Device) Allocate(desc rendertarget.Descriptor) (rendertarget.Target, error) {
	if d.Fail {
		return nil, ErrRejected
	}
	t := &Target{Desc: desc, device: d}
	d.Allocations++
	d.Allocated = append(d.Allocated, t)
	return t, nil
}

// Blit implements rendertarget.Device.
func (d *Device) Blit(src, dst rendertarget.Target) error {
	s, ok1 := src.(*Target)
	t, ok2 := dst.(*Target)
	if !ok1 || !ok2 {
		return errors.New("blit between foreign targets")
	}
	d.Blits = append(d.Blits, Blit{Src: s, Dst: t})
	return nil
}

// Live returns the number of allocated, unreleased targets.
func (d *Device) Live() int {
	return d.Allocations - d.Releases
}
