package palette

import (
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	p := New()
	p.Set("0", RGB8{R: 1, G: 2, B: 3})
	p.Set(foregroundKey, RGB8{R: 200, G: 200, B: 200})

	if err := Save(dir, "palette.toml", p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(dir, "palette.toml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected a non-nil palette")
	}

	if got := loaded.entries["0"]; got != (RGB8{R: 1, G: 2, B: 3}) {
		t.Errorf("expected index 0 round-tripped, got %+v", got)
	}
	if got := loaded.entries[foregroundKey]; got != (RGB8{R: 200, G: 200, B: 200}) {
		t.Errorf("expected foreground round-tripped, got %+v", got)
	}
}

func TestLoadMissingFileReturnsNil(t *testing.T) {
	dir := t.TempDir()

	loaded, err := Load(dir, "does-not-exist.toml")
	if err != nil {
		t.Fatalf("expected no error for a missing file, got %v", err)
	}
	if loaded != nil {
		t.Error("expected a nil palette when the file doesn't exist")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "config")

	if err := Save(dir, "palette.toml", New()); err != nil {
		t.Fatalf("Save: %v", err)
	}
}
