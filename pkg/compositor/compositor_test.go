package compositor

import (
	"testing"

	"github.com/tattoy-go/tattoy/pkg/cell"
)

func TestCompositeCellsTextReplacesBelow(t *testing.T) {
	below := cell.NewCell("x", cell.CellAttributes{})
	above := cell.NewCell("y", cell.CellAttributes{
		Foreground: cell.FromTrueColor(cell.Srgba{R: 1, A: 1}),
	})

	CompositeCells(&below, above, 1.0, cell.Srgba{})

	if below.Text != "y" {
		t.Errorf("expected text replaced with 'y', got %q", below.Text)
	}
}

func TestCompositeCellsBlankAboveLeavesTextAlone(t *testing.T) {
	below := cell.NewCell("x", cell.CellAttributes{})
	above := cell.Blank()

	CompositeCells(&below, above, 1.0, cell.Srgba{})

	if below.Text != "x" {
		t.Errorf("expected text untouched by blank overlay, got %q", below.Text)
	}
}

func TestCompositeCellsLowerUnderUpperResetsToUpper(t *testing.T) {
	below := cell.NewCell(cell.LowerHalfBlock, cell.CellAttributes{})
	above := cell.NewCell(cell.UpperHalfBlock, cell.CellAttributes{
		Foreground: cell.FromTrueColor(cell.Srgba{R: 1, A: 1}),
	})

	CompositeCells(&below, above, 1.0, cell.Srgba{})

	if below.Text != cell.UpperHalfBlock {
		t.Errorf("expected reset to upper half block convention, got %q", below.Text)
	}
}

func TestCompositeFgColourOnlySkipsWhitespace(t *testing.T) {
	base := cell.Blank()
	above := cell.NewCell("x", cell.CellAttributes{
		Foreground: cell.FromTrueColor(cell.Srgba{R: 1, A: 1}),
	})

	CompositeFgColourOnly(&base, above, cell.Srgba{})

	if base.Attrs.Foreground.Kind != cell.Default {
		t.Errorf("expected whitespace cell to be left alone, got %+v", base.Attrs.Foreground)
	}
}

func TestCompositeFgColourOnlySetsForeground(t *testing.T) {
	base := cell.NewCell("x", cell.CellAttributes{})
	above := cell.NewCell("y", cell.CellAttributes{
		Foreground: cell.FromTrueColor(cell.Srgba{R: 1, A: 1}),
	})

	CompositeFgColourOnly(&base, above, cell.Srgba{})

	if base.Text != "x" {
		t.Errorf("expected base glyph to stay 'x', got %q", base.Text)
	}
	fg, ok := blenderExtract(base.Attrs.Foreground)
	if !ok || fg.R != 1 {
		t.Errorf("expected red foreground copied over, got %+v", base.Attrs.Foreground)
	}
}

func TestBlendCursorPixelIntoTextInterpolatesBothChannels(t *testing.T) {
	base := cell.NewCell("x", cell.CellAttributes{})
	above := cell.CellAttributes{
		Foreground: cell.FromTrueColor(cell.Srgba{R: 1, A: 1}),
		Background: cell.FromTrueColor(cell.Srgba{B: 1, A: 1}),
	}

	BlendCursorPixelIntoText(&base, cell.NewCell("z", above), 1.0, cell.Srgba{})

	bg, ok := blenderExtract(base.Attrs.Background)
	if !ok || bg.R == 0 && bg.B == 0 {
		t.Errorf("expected interpolated color in background, got %+v", base.Attrs.Background)
	}
}

func TestAddIndicatorCompositesOntoGrid(t *testing.T) {
	grid := [][]cell.Cell{{cell.Blank()}}
	indicator := cell.NewCell("x", cell.CellAttributes{
		Foreground: cell.FromTrueColor(cell.Srgba{R: 1, A: 1}),
	})

	if err := AddIndicator(grid, indicator, 0, 0, cell.Srgba{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if grid[0][0].Text != "x" {
		t.Errorf("expected indicator glyph composited, got %q", grid[0][0].Text)
	}
}

func TestAddIndicatorOutOfBounds(t *testing.T) {
	grid := [][]cell.Cell{{cell.Blank()}}
	err := AddIndicator(grid, cell.Blank(), 5, 5, cell.Srgba{})
	if err == nil {
		t.Error("expected an error for an out-of-bounds indicator placement")
	}
}

func TestCleanCursorCellBlanksHalfBlock(t *testing.T) {
	grid := [][]cell.Cell{{cell.NewCell(cell.UpperHalfBlock, cell.CellAttributes{})}}
	CleanCursorCell(grid, 0, 0)
	if grid[0][0].Text != " " {
		t.Errorf("expected half block blanked, got %q", grid[0][0].Text)
	}
}

func TestCleanCursorCellLeavesTextAlone(t *testing.T) {
	grid := [][]cell.Cell{{cell.NewCell("x", cell.CellAttributes{})}}
	CleanCursorCell(grid, 0, 0)
	if grid[0][0].Text != "x" {
		t.Errorf("expected ordinary text left alone, got %q", grid[0][0].Text)
	}
}

func TestCleanCursorCellOutOfBoundsIsNoop(t *testing.T) {
	grid := [][]cell.Cell{{cell.Blank()}}
	CleanCursorCell(grid, 9, 9)
}

func TestAutoTextContrastSkipsWhitespaceWhenReadableOnly(t *testing.T) {
	composited := cell.NewCell(" ", cell.CellAttributes{
		Foreground: cell.FromTrueColor(cell.Srgba{R: 0.5, G: 0.5, B: 0.5, A: 1}),
		Background: cell.FromTrueColor(cell.Srgba{R: 0.51, G: 0.51, B: 0.51, A: 1}),
	})
	before := composited.Attrs.Foreground

	AutoTextContrast(&composited, 4.5, true, cell.Srgba{})

	if composited.Attrs.Foreground != before {
		t.Error("expected a whitespace cell to be left alone when readableOnly is true")
	}
}

func TestAutoTextContrastAppliesToTextEvenWhenNotReadableOnly(t *testing.T) {
	composited := cell.NewCell("x", cell.CellAttributes{
		Foreground: cell.FromTrueColor(cell.Srgba{R: 0.5, G: 0.5, B: 0.5, A: 1}),
		Background: cell.FromTrueColor(cell.Srgba{R: 0.51, G: 0.51, B: 0.51, A: 1}),
	})
	before := composited.Attrs.Foreground

	AutoTextContrast(&composited, 4.5, false, cell.Srgba{})

	if composited.Attrs.Foreground == before {
		t.Error("expected contrast enforced on a non-whitespace cell even when readableOnly is false")
	}
}

func blenderExtract(attr cell.ColorAttribute) (cell.Srgba, bool) {
	if attr.Kind == cell.TrueColor || attr.Kind == cell.TrueColorWithPaletteFallback {
		return attr.Color, true
	}
	return cell.Srgba{}, false
}
