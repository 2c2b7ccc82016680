// Package pipeline is the host side of per-camera render callbacks: passes
// subscribe to be run before a camera renders.
package pipeline

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/planar-reflections/internal/logger"
)

// CameraKind says what a camera is rendering for.
type CameraKind int

const (
	CameraGame CameraKind = iota
	CameraSceneView
	CameraPreview
	CameraReflection
	CameraVR
)

func (k CameraKind) String() string {
	switch k {
	case CameraGame:
		return "game"
	case CameraSceneView:
		return "scene-view"
	case CameraPreview:
		return "preview"
	case CameraReflection:
		return "reflection"
	case CameraVR:
		return "vr"
	default:
		return "unknown"
	}
}

// Frame is the per-frame context handed to handlers.
type Frame struct {
	Index uint64
	// Time since the host started, used for rate limiting.
	Time time.Duration
}

// Handler runs before a camera of the given kind renders.
type Handler func(frame Frame, kind CameraKind)

// Subscription identifies a registered handler.
type Subscription uint64

type entry struct {
	id      Subscription
	fn      Handler
	removed bool
}

// Pipeline dispatches begin-camera callbacks in subscription order. It is
// used from the render thread only.
type Pipeline struct {
	log      *zap.Logger
	handlers []*entry
	nextID   Subscription
}

// New creates an empty pipeline.
func New(log *zap.Logger) *Pipeline {
	return &Pipeline{log: logger.Or(log, "pipeline")}
}

// Subscribe registers fn and returns a handle for Unsubscribe.
func (p *Pipeline) Subscribe(fn Handler) Subscription {
	p.nextID++
	p.handlers = append(p.handlers, &entry{id: p.nextID, fn: fn})
	p.log.Debug("begin-camera handler subscribed", zap.Uint64("id", uint64(p.nextID)))
	return p.nextID
}

// Unsubscribe removes a handler. Unknown handles are ignored.
func (p *Pipeline) Unsubscribe(s Subscription) {
	for i, e := range p.handlers {
		if e.id == s {
			e.removed = true
			p.handlers = append(p.handlers[:i:i], p.handlers[i+1:]...)
			p.log.Debug("begin-camera handler unsubscribed", zap.Uint64("id", uint64(s)))
			return
		}
	}
}

// Len returns the number of subscribed handlers.
func (p *Pipeline) Len() int {
	return len(p.handlers)
}

// BeginCamera runs every handler for a camera about to render. Handlers
// may unsubscribe themselves or others while running; a handler removed
// during dispatch is not called, and one added is called from the next
// dispatch on.
func (p *Pipeline) BeginCamera(frame Frame, kind CameraKind) {
	handlers := p.handlers
	for _, e := range handlers {
		if e.removed {
			continue
		}
		e.fn(frame, kind)
	}
}
