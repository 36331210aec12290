package surface

import (
	"testing"

	"github.com/tattoy-go/tattoy/pkg/cell"
)

func TestAddPixelFreshTop(t *testing.T) {
	s := New("test", 1, 1, 0, 1.0)
	s.AddPixel(0, 0, cell.Srgba{R: 1, A: 1})

	got, _ := s.At(0, 0)
	if got.Text != cell.UpperHalfBlock {
		t.Errorf("expected upper half block, got %q", got.Text)
	}
	if got.Attrs.Foreground.Color.R != 1 {
		t.Errorf("expected red foreground, got %+v", got.Attrs.Foreground.Color)
	}
}

func TestAddPixelFreshBottom(t *testing.T) {
	s := New("test", 1, 1, 0, 1.0)
	s.AddPixel(0, 1, cell.Srgba{G: 1, A: 1})

	got, _ := s.At(0, 0)
	if got.Text != cell.LowerHalfBlock {
		t.Errorf("expected lower half block, got %q", got.Text)
	}
	if got.Attrs.Foreground.Color.G != 1 {
		t.Errorf("expected green foreground, got %+v", got.Attrs.Foreground.Color)
	}
}

func TestAddPixelBothHalvesOfOneCell(t *testing.T) {
	s := New("test", 1, 1, 0, 1.0)
	s.AddPixel(0, 1, cell.Srgba{R: 1, A: 1})
	s.AddPixel(0, 0, cell.Srgba{B: 1, A: 1})

	got, _ := s.At(0, 0)
	if got.Text != cell.UpperHalfBlock {
		t.Errorf("expected upgrade to upper half block, got %q", got.Text)
	}
	if got.Attrs.Foreground.Color.B != 1 {
		t.Errorf("expected blue top foreground, got %+v", got.Attrs.Foreground.Color)
	}
	if got.Attrs.Background.Color.R != 1 {
		t.Errorf("expected red bottom carried to background, got %+v", got.Attrs.Background.Color)
	}
}

func TestAddPixelReplacingSameHalf(t *testing.T) {
	s := New("test", 1, 1, 0, 1.0)
	s.AddPixel(0, 0, cell.Srgba{R: 1, A: 1})
	s.AddPixel(0, 0, cell.Srgba{G: 1, A: 1})

	got, _ := s.At(0, 0)
	if got.Text != cell.UpperHalfBlock {
		t.Errorf("expected still upper half block, got %q", got.Text)
	}
	if got.Attrs.Foreground.Color.G != 1 {
		t.Errorf("expected overwritten green foreground, got %+v", got.Attrs.Foreground.Color)
	}
}

func TestAddPixelOverText(t *testing.T) {
	s := New("test", 1, 1, 0, 1.0)
	s.Set(0, 0, cell.NewCell("x", cell.CellAttributes{}))
	s.AddPixel(0, 0, cell.Srgba{R: 1, A: 1})

	got, _ := s.At(0, 0)
	if got.Text != "x" {
		t.Errorf("expected glyph to survive, got %q", got.Text)
	}
	if got.Attrs.Background.Color.R != 1 {
		t.Errorf("expected pixel color on background, got %+v", got.Attrs.Background.Color)
	}
}

func TestAddPixelOutOfBounds(t *testing.T) {
	s := New("test", 1, 1, 0, 1.0)
	s.AddPixel(5, 5, cell.Srgba{R: 1, A: 1})
}
