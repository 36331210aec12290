package palette

import (
	"fmt"
	"image"
)

// PaletteRowSize is the number of colour swatches tattoy prints per row
// when asking the user to confirm their palette (original's
// palette/parser.rs PALETTE_ROW_SIZE), reused here as the grid's column
// count.
const PaletteRowSize = 16

// ParseScreenshot extracts a 256-colour palette from an image laid out as
// a PaletteRowSize-wide grid of solid-colour swatches (spec §6
// "--parse-palette <path> — parse a screenshot image into a palette"),
// sampling the centre pixel of each cell.
//
// The original locates this grid inside an arbitrary screen/window capture
// by scanning for red/blue marker columns printed around it
// (palette/parser.rs print_generic_palette), captured via the xcap crate —
// a GUI/OS-screen-capture library with no equivalent in this module's
// retrieval pack. ParseScreenshot instead expects img already cropped to
// the bare swatch grid: the same PaletteRowSize convention, simplified to
// a raster scan instead of marker-column detection.
func ParseScreenshot(img image.Image) (*Palette, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("palette: screenshot has no pixels")
	}

	const rows = 256 / PaletteRowSize
	cellWidth := width / PaletteRowSize
	cellHeight := height / rows
	if cellWidth == 0 || cellHeight == 0 {
		return nil, fmt.Errorf("palette: screenshot too small for a %dx%d grid", PaletteRowSize, rows)
	}

	p := New()
	for index := 0; index < 256; index++ {
		col := index % PaletteRowSize
		row := index / PaletteRowSize

		x := bounds.Min.X + col*cellWidth + cellWidth/2
		y := bounds.Min.Y + row*cellHeight + cellHeight/2

		r, g, b, _ := img.At(x, y).RGBA()
		p.Set(indexKey(uint8(index)), RGB8{
			R: uint8(r >> 8),
			G: uint8(g >> 8),
			B: uint8(b >> 8),
		})
	}
	return p, nil
}
