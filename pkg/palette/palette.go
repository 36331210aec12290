// Package palette resolves indexed terminal colors (0-255, plus the
// "foreground" and "background" defaults) to concrete SRGBA values, and
// rewrites a cell's color attributes from indexed to true color (spec §4.4
// "Palette").
//
// Grounded on the original's crates/tattoy/src/palette/{converter,main}.rs:
// a flat map keyed by palette index (as a string) plus two named keys for
// the terminal's default foreground/background, with index 0 and 7 as the
// fallback background/foreground per terminal-emulator convention.
package palette

import (
	"strconv"

	"github.com/tattoy-go/tattoy/pkg/cell"
)

const (
	foregroundKey = "foreground"
	backgroundKey = "background"

	fallbackBackgroundIndex = 0
	fallbackForegroundIndex = 7
)

// RGB8 is one palette entry: 8-bit-per-channel red, green, blue.
type RGB8 struct {
	R, G, B uint8
}

func (c RGB8) toSrgba() cell.Srgba {
	return cell.Srgba{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
		A: 1,
	}
}

// Palette holds 256 indexed colors plus the terminal's named default
// foreground/background, resolved either from an OSC query or a built-in
// default.
type Palette struct {
	entries map[string]RGB8
}

// New builds an empty palette; entries are filled in with Set.
func New() *Palette {
	return &Palette{entries: make(map[string]RGB8, 258)}
}

// Set stores one entry, keyed by a palette index ("0".."255") or one of the
// named keys ("foreground", "background").
func (p *Palette) Set(key string, c RGB8) {
	p.entries[key] = c
}

// Len reports how many entries are populated, indexed and named keys
// together.
func (p *Palette) Len() int {
	return len(p.entries)
}

// IndexToTrueColor resolves a raw palette index to a
// TrueColorWithPaletteFallback attribute, so a downstream renderer that
// only understands indexed color can still degrade gracefully.
func (p *Palette) IndexToTrueColor(index uint8) cell.ColorAttribute {
	return cell.FromTrueColorWithPaletteFallback(p.trueColorForIndex(index), index)
}

func (p *Palette) trueColorForIndex(index uint8) cell.Srgba {
	return p.lookup(indexKey(index), fallbackIndexKey(fallbackBackgroundIndex))
}

// BackgroundColour is the color a cell's background resolves to when it
// merely doesn't have an explicit color set.
func (p *Palette) BackgroundColour() cell.Srgba {
	return p.lookup(backgroundKey, fallbackIndexKey(fallbackBackgroundIndex))
}

// ForegroundColour is the color a cell's foreground resolves to when it
// merely doesn't have an explicit color set.
func (p *Palette) ForegroundColour() cell.Srgba {
	return p.lookup(foregroundKey, fallbackIndexKey(fallbackForegroundIndex))
}

func (p *Palette) lookup(key, fallbackKey string) cell.Srgba {
	if c, ok := p.entries[key]; ok {
		return c.toSrgba()
	}
	if c, ok := p.entries[fallbackKey]; ok {
		return c.toSrgba()
	}
	return cell.Srgba{A: 1}
}

func indexKey(index uint8) string {
	return strconv.Itoa(int(index))
}

func fallbackIndexKey(index uint8) string {
	return strconv.Itoa(int(index))
}

// RewriteCellAttributes converts any palette-indexed colors on attrs to
// true color, in place (spec §4.4 "rewrite_cell_colors").
//
// A Default foreground resolves to the palette's named foreground color. A
// Default background is left untouched: that's the signal the compositor
// uses to let a lower layer show through (spec §4.3 "composite_cells").
func (p *Palette) RewriteCellAttributes(attrs *cell.CellAttributes) {
	switch attrs.Foreground.Kind {
	case cell.Default:
		attrs.Foreground = cell.FromTrueColor(p.ForegroundColour())
	case cell.PaletteIndex:
		attrs.Foreground = p.IndexToTrueColor(attrs.Foreground.Index)
	}

	if attrs.Background.Kind == cell.PaletteIndex {
		attrs.Background = p.IndexToTrueColor(attrs.Background.Index)
	}
}
