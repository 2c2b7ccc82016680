package rendertarget

import (
	"fmt"
	"time"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/planar-reflections/internal/logger"
)

// DefaultCheckInterval is how often the screen resolution is compared
// against the size the targets were built for.
const DefaultCheckInterval = 2 * time.Second

// DepthBits is the depth attachment precision of every target.
const DepthBits = 16

// PoolConfig configures a Pool.
type PoolConfig struct {
	Multiplier    Multiplier
	RenderScale   float32       // pipeline-wide render scale, 1 if zero
	CheckInterval time.Duration // DefaultCheckInterval if zero
	Logger        *zap.Logger
}

// Pool owns the primary, right-eye and clone targets of one reflection
// component and rebuilds them when the screen size or scale changes.
type Pool struct {
	device Device
	log    *zap.Logger

	multiplier    Multiplier
	renderScale   float32
	checkInterval time.Duration

	targets Targets

	// Last screen size seen and when it was sampled.
	screen    Size
	lastCheck time.Duration
	checked   bool
}

// NewPool creates an empty pool. Nothing is allocated until Ensure.
func NewPool(device Device, cfg PoolConfig) *Pool {
	if cfg.RenderScale <= 0 {
		cfg.RenderScale = 1
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = DefaultCheckInterval
	}
	return &Pool{
		device:        device,
		log:           logger.Or(cfg.Logger, "rendertarget"),
		multiplier:    cfg.Multiplier,
		renderScale:   cfg.RenderScale,
		checkInterval: cfg.CheckInterval,
	}
}

// Multiplier returns the current resolution multiplier.
func (p *Pool) Multiplier() Multiplier {
	return p.multiplier
}

// SetMultiplier changes the resolution multiplier. A different value
// releases every target so the next Ensure rebuilds them once.
func (p *Pool) SetMultiplier(m Multiplier) bool {
	if m == p.multiplier {
		return false
	}
	p.log.Debug("resolution multiplier changed",
		zap.Stringer("from", p.multiplier),
		zap.Stringer("to", m),
	)
	p.multiplier = m
	p.Release()
	return true
}

// SetRenderScale changes the pipeline render scale, releasing targets when
// it differs from the current one.
func (p *Pool) SetRenderScale(scale float32) bool {
	if scale <= 0 {
		scale = 1
	}
	if scale == p.renderScale {
		return false
	}
	p.renderScale = scale
	p.Release()
	return true
}

// TargetSize returns the size targets are allocated at for the last
// sampled screen size.
func (p *Pool) TargetSize() Size {
	return p.scaled(p.screen)
}

func (p *Pool) scaled(screen Size) Size {
	s := p.multiplier.Scale() * p.renderScale
	return Size{
		Width:  int(math32.Round(float32(screen.Width) * s)),
		Height: int(math32.Round(float32(screen.Height) * s)),
	}
}

// Ensure returns up-to-date targets for the given screen size.
//
// The screen size is sampled at most once per check interval; now is the
// frame time. A changed size releases everything and reallocates. Missing
// targets that are required are allocated; ones no longer required are
// released.
func (p *Pool) Ensure(now time.Duration, screen Size, needsStereo, needsClone bool) (Targets, error) {
	if !p.checked || now-p.lastCheck > p.checkInterval {
		changed := p.checked && screen != p.screen
		p.checked = true
		p.lastCheck = now
		if changed {
			p.log.Debug("screen resolution changed",
				zap.Stringer("from", p.screen),
				zap.Stringer("to", screen),
			)
			p.Release()
		}
		p.screen = screen
	}

	if !needsStereo {
		release(&p.targets.Right)
	}
	if !needsClone {
		release(&p.targets.Clone)
	}

	size := p.TargetSize()
	if size.Empty() {
		return Targets{}, fmt.Errorf("%w: empty size %s (screen %s, scale %.2f)",
			ErrAllocation, size, p.screen, p.multiplier.Scale()*p.renderScale)
	}

	desc := Descriptor{Size: size, Format: p.format(), DepthBits: DepthBits}

	if err := p.ensure(&p.targets.Primary, desc, "primary"); err != nil {
		return Targets{}, err
	}
	if needsClone {
		if err := p.ensure(&p.targets.Clone, desc, "clone"); err != nil {
			return Targets{}, err
		}
	}
	if needsStereo {
		if err := p.ensure(&p.targets.Right, desc, "right"); err != nil {
			return Targets{}, err
		}
	}

	return p.targets, nil
}

func (p *Pool) ensure(slot *Target, desc Descriptor, name string) error {
	if *slot != nil {
		return nil
	}
	desc.Name = name
	t, err := p.device.Allocate(desc)
	if err != nil {
		return fmt.Errorf("%w: %s target %s %s: %w", ErrAllocation, name, desc.Size, desc.Format, err)
	}
	if t == nil {
		return fmt.Errorf("%w: %s target: device returned no target", ErrAllocation, name)
	}
	*slot = t
	p.log.Debug("render target allocated",
		zap.String("name", name),
		zap.Stringer("size", desc.Size),
		zap.Stringer("format", desc.Format),
	)
	return nil
}

// format picks the packed 11/11/10 float format when the device can render
// to it, else the generic HDR format.
func (p *Pool) format() Format {
	if p.device.Supports(FormatRG11B10Float) {
		return FormatRG11B10Float
	}
	return DefaultHDR
}

// Targets returns the currently held targets without allocating.
func (p *Pool) Targets() Targets {
	return p.targets
}

// Live returns the number of allocated targets.
func (p *Pool) Live() int {
	return p.targets.Count()
}

// Release frees every target. It is safe to call repeatedly.
func (p *Pool) Release() {
	release(&p.targets.Primary)
	release(&p.targets.Right)
	release(&p.targets.Clone)
}

func release(slot *Target) {
	if *slot != nil {
		(*slot).Release()
		*slot = nil
	}
}
