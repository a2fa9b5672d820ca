package profile

import (
	"slices"
	"testing"
)

func TestMake(t *testing.T) {
	p := Make(WithMode("cpu"), WithPath("/tmp/x"), WithQuiet(true))

	want := Profiler{Mode: "cpu", Path: "/tmp/x", Quiet: true}
	if p != want {
		t.Errorf("Make() = %+v, want %+v", p, want)
	}
}

func TestStart_NoMode(t *testing.T) {
	s := Make(WithPath(t.TempDir())).Start()
	if _, ok := s.(ignore); !ok {
		t.Errorf("Start() without mode = %T, want ignore", s)
	}

	s.Stop()
}

func TestStart_UnknownMode(t *testing.T) {
	s := Make(WithMode("bogus"), WithPath(t.TempDir()), WithQuiet(true)).Start()
	if _, ok := s.(ignore); !ok {
		t.Errorf("Start() with unknown mode = %T, want ignore", s)
	}

	s.Stop()
}

func TestModes_Sorted(t *testing.T) {
	if m := Modes(); !slices.IsSorted(m) {
		t.Errorf("Modes() not sorted: %v", m)
	}
}
