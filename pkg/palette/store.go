package palette

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// storedEntry is one row of palette.toml: an index→[r,g,b] table (spec §6
// "Persisted state... palette.toml (index→[r,g,b] table)").
type storedEntry struct {
	R uint8 `toml:"r"`
	G uint8 `toml:"g"`
	B uint8 `toml:"b"`
}

type storedPalette struct {
	Entries map[string]storedEntry `toml:"entries"`
}

// Save writes p to dir/fileName, creating dir if needed.
func Save(dir, fileName string, p *Palette) error {
	stored := storedPalette{Entries: make(map[string]storedEntry, len(p.entries))}
	for key, c := range p.entries {
		stored.Entries[key] = storedEntry{R: c.R, G: c.G, B: c.B}
	}

	data, err := toml.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encoding palette: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating palette directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, fileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing palette file %s: %w", path, err)
	}
	return nil
}

// Load reads dir/fileName, returning (nil, nil) when it doesn't exist yet
// so callers can fall back to NewDefault().
func Load(dir, fileName string) (*Palette, error) {
	path := filepath.Join(dir, fileName)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading palette file %s: %w", path, err)
	}

	var stored storedPalette
	if err := toml.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("parsing palette file %s: %w", path, err)
	}

	p := New()
	for key, c := range stored.Entries {
		p.Set(key, RGB8{R: c.R, G: c.G, B: c.B})
	}
	return p, nil
}
