package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFallsBackToDefaultWhenMissing(t *testing.T) {
	dir := t.TempDir()

	snapshot, err := Load(dir, "tattoy.toml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot.FrameRate != Default().FrameRate {
		t.Errorf("expected default frame rate, got %d", snapshot.FrameRate)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()

	snapshot := Default()
	snapshot.FrameRate = 60
	snapshot.Minimap.Enabled = true
	snapshot.Minimap.MaxWidth = 20

	if err := Save(dir, "tattoy.toml", snapshot); err != nil {
		t.Fatalf("unexpected error saving: %v", err)
	}

	loaded, err := Load(dir, "tattoy.toml")
	if err != nil {
		t.Fatalf("unexpected error loading: %v", err)
	}
	if loaded.FrameRate != 60 {
		t.Errorf("expected frame rate 60, got %d", loaded.FrameRate)
	}
	if !loaded.Minimap.Enabled || loaded.Minimap.MaxWidth != 20 {
		t.Errorf("expected minimap settings preserved, got %+v", loaded.Minimap)
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "tattoy.toml"), []byte("not = [valid"), 0o644); err != nil {
		t.Fatalf("unexpected error writing fixture: %v", err)
	}

	if _, err := Load(dir, "tattoy.toml"); err == nil {
		t.Error("expected an error parsing malformed TOML")
	}
}

func TestDefaultDirectoryIsUnderConfigHome(t *testing.T) {
	if filepath.Base(DefaultDirectory()) != "tattoy" {
		t.Errorf("expected directory to end in 'tattoy', got %s", DefaultDirectory())
	}
}
