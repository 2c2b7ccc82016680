// Package quality holds the global render-quality toggles a host renderer
// honours, and a scope that overrides them for a reflection pass.
package quality

// Settings are the render-quality toggles shared by every camera the host
// renders. The host owns one instance and reads it when it draws.
type Settings struct {
	Fog bool
	// InvertCulling swaps front and back faces. Mirrored views flip
	// handedness, so reflection passes render with it set.
	InvertCulling bool
	MaxLODLevel   int
	LODBias       float32
}

// Snapshot is a copy of Settings taken when a Scope begins.
type Snapshot Settings

// Scope overrides Settings for the duration of one reflection pass.
//
//	scope := quality.Begin(settings)
//	scope.Apply()
//	defer scope.Restore()
type Scope struct {
	settings *Settings
	snapshot Snapshot
	applied  bool
}

// Begin captures the current settings.
func Begin(s *Settings) *Scope {
	return &Scope{settings: s, snapshot: Snapshot(*s)}
}

// Snapshot returns the captured values.
func (sc *Scope) Snapshot() Snapshot {
	return sc.snapshot
}

// Apply disables fog and inverts face culling.
func (sc *Scope) Apply() {
	sc.settings.InvertCulling = true
	sc.settings.Fog = false
	sc.applied = true
}

// Restore puts every captured value back. Only the first call after Apply
// has an effect.
func (sc *Scope) Restore() {
	if !sc.applied {
		return
	}
	*sc.settings = Settings(sc.snapshot)
	sc.applied = false
}
