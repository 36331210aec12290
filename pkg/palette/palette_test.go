package palette

import (
	"testing"

	"github.com/tattoy-go/tattoy/pkg/cell"
)

func TestDefaultPaletteHas256EntriesPlusNamedKeys(t *testing.T) {
	p := NewDefault()
	if p.Len() != 256+2 {
		t.Errorf("expected 258 entries, got %d", p.Len())
	}
}

func TestBackgroundColourFallsBackToIndexZero(t *testing.T) {
	p := New()
	p.Set(indexKey(0), RGB8{R: 10, G: 20, B: 30})

	bg := p.BackgroundColour()
	if bg.R*255 != 10 {
		t.Errorf("expected fallback to index 0, got %+v", bg)
	}
}

func TestForegroundColourFallsBackToIndexSeven(t *testing.T) {
	p := New()
	p.Set(indexKey(7), RGB8{R: 40, G: 50, B: 60})

	fg := p.ForegroundColour()
	if fg.G*255 != 50 {
		t.Errorf("expected fallback to index 7, got %+v", fg)
	}
}

func TestNamedKeyTakesPriorityOverFallback(t *testing.T) {
	p := New()
	p.Set(indexKey(0), RGB8{R: 1, G: 1, B: 1})
	p.Set(backgroundKey, RGB8{R: 200, G: 200, B: 200})

	bg := p.BackgroundColour()
	if bg.R*255 != 200 {
		t.Errorf("expected named background key to win, got %+v", bg)
	}
}

func TestRewriteCellAttributesDefaultForeground(t *testing.T) {
	p := NewDefault()
	attrs := cell.CellAttributes{Foreground: cell.DefaultColor()}

	p.RewriteCellAttributes(&attrs)

	if attrs.Foreground.Kind != cell.TrueColor {
		t.Errorf("expected default foreground rewritten to true color, got %v", attrs.Foreground.Kind)
	}
}

func TestRewriteCellAttributesLeavesDefaultBackgroundAlone(t *testing.T) {
	p := NewDefault()
	attrs := cell.CellAttributes{Background: cell.DefaultColor()}

	p.RewriteCellAttributes(&attrs)

	if !attrs.Background.IsDefault() {
		t.Error("expected default background to stay Default so lower layers show through")
	}
}

func TestRewriteCellAttributesPaletteIndex(t *testing.T) {
	p := NewDefault()
	attrs := cell.CellAttributes{
		Foreground: cell.FromPaletteIndex(1),
		Background: cell.FromPaletteIndex(4),
	}

	p.RewriteCellAttributes(&attrs)

	if attrs.Foreground.Kind != cell.TrueColorWithPaletteFallback || attrs.Foreground.Index != 1 {
		t.Errorf("expected foreground rewritten with palette fallback, got %+v", attrs.Foreground)
	}
	if attrs.Background.Kind != cell.TrueColorWithPaletteFallback || attrs.Background.Index != 4 {
		t.Errorf("expected background rewritten with palette fallback, got %+v", attrs.Background)
	}
}
