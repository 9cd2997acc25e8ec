package store

import (
	"path/filepath"
	"testing"
)

func TestDefaultDataDir_EnvOverride(t *testing.T) {
	want := t.TempDir()
	t.Setenv("MENTOR_DATA_DIR", want)

	got, err := DefaultDataDir()
	if err != nil {
		t.Fatalf("DefaultDataDir: %v", err)
	}
	if got != want {
		t.Errorf("data dir = %q, want %q", got, want)
	}
}

func TestDefaultDataDir_XDGFallback(t *testing.T) {
	t.Setenv("MENTOR_DATA_DIR", "")
	xdg := t.TempDir()
	t.Setenv("XDG_DATA_HOME", xdg)

	got, err := DefaultDataDir()
	if err != nil {
		t.Fatalf("DefaultDataDir: %v", err)
	}
	if got != filepath.Join(xdg, "mentor") {
		t.Errorf("data dir = %q", got)
	}
}

func TestEpisodicDBPath(t *testing.T) {
	got := EpisodicDBPath("/data", "u1")
	if got != filepath.Join("/data", "users", "u1", "episodic.db") {
		t.Errorf("path = %q", got)
	}
}
