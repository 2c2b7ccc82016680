package quality

import (
	"errors"
	"testing"
)

func TestApplyOverridesFogAndCulling(t *testing.T) {
	s := &Settings{Fog: true, MaxLODLevel: 2, LODBias: 1.5}
	sc := Begin(s)
	sc.Apply()

	if s.Fog {
		t.Error("fog should be disabled during the pass")
	}
	if !s.InvertCulling {
		t.Error("culling should be inverted during the pass")
	}
	if s.MaxLODLevel != 2 || s.LODBias != 1.5 {
		t.Errorf("LOD settings should be left alone, got %d / %f", s.MaxLODLevel, s.LODBias)
	}
}

func TestRestoreReturnsCapturedValues(t *testing.T) {
	s := &Settings{Fog: true, MaxLODLevel: 1, LODBias: 2}
	sc := Begin(s)
	sc.Apply()

	// Something inside the pass fiddles with LOD.
	s.MaxLODLevel = 3
	s.LODBias = 0.5

	sc.Restore()
	want := Settings{Fog: true, MaxLODLevel: 1, LODBias: 2}
	if *s != want {
		t.Errorf("after Restore got %+v, want %+v", *s, want)
	}
}

func TestRestoreRunsOnce(t *testing.T) {
	s := &Settings{Fog: true}
	sc := Begin(s)
	sc.Apply()
	sc.Restore()

	s.Fog = false
	sc.Restore()
	if s.Fog {
		t.Error("second Restore must not overwrite later changes")
	}
}

func TestRestoreWithoutApplyIsNoop(t *testing.T) {
	s := &Settings{Fog: true}
	sc := Begin(s)
	s.Fog = false

	sc.Restore()
	if s.Fog {
		t.Error("Restore without Apply must not touch settings")
	}
}

func TestRestoreOnErrorPath(t *testing.T) {
	s := &Settings{Fog: true}

	failingPass := func() (err error) {
		sc := Begin(s)
		sc.Apply()
		defer sc.Restore()
		return errors.New("render failed")
	}

	if err := failingPass(); err == nil {
		t.Fatal("expected error")
	}
	if !s.Fog || s.InvertCulling {
		t.Errorf("settings not restored after error: %+v", *s)
	}
}

func TestSnapshot(t *testing.T) {
	s := &Settings{Fog: true, InvertCulling: false, MaxLODLevel: 4, LODBias: 0.75}
	got := Begin(s).Snapshot()
	if got != Snapshot(*s) {
		t.Errorf("Snapshot = %+v, want %+v", got, *s)
	}
}
