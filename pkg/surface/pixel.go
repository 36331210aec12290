package surface

import "github.com/tattoy-go/tattoy/pkg/cell"

// AddPixel places a half-block sub-cell pixel (spec §4.3 "add_pixel").
//
// yHalf addresses a half-row: cell y = yHalf/2, and yHalf even means the top
// half of that cell, odd the bottom half. Two pixels share one terminal
// cell using the convention that "▀" (upper half block) draws its top half
// from the foreground color and its bottom half from the background color;
// a lone bottom pixel uses "▄" with its foreground color instead, since
// that's the glyph whose foreground paints the lower half.
func (s *Surface) AddPixel(x, yHalf int, color cell.Srgba) {
	y := yHalf / 2
	isTop := yHalf%2 == 0
	if !s.InBounds(x, y) {
		return
	}

	target := s.Cells[y][x]
	colorAttr := cell.FromTrueColor(color)

	switch {
	case target.IsSpaceOrEmpty():
		s.writeFreshPixel(x, y, isTop, colorAttr)

	case target.Text == cell.UpperHalfBlock:
		if isTop {
			target.Attrs.Foreground = colorAttr
		} else {
			target.Attrs.Background = colorAttr
		}
		s.Cells[y][x] = target

	case target.Text == cell.LowerHalfBlock:
		if !isTop {
			target.Attrs.Foreground = colorAttr
			s.Cells[y][x] = target
			return
		}
		// Upgrading to the upper-half convention: the existing lower pixel
		// (painted via foreground) becomes the background channel of "▀",
		// and the new top pixel becomes its foreground.
		upgraded := cell.NewCell(cell.UpperHalfBlock, cell.CellAttributes{
			Foreground: colorAttr,
			Background: target.Attrs.Foreground,
		})
		s.Cells[y][x] = upgraded

	default:
		// The cell holds real text: the glyph is kept and the pixel colour
		// replaces the cell's background; it is not blended with the old
		// background.
		target.Attrs.Background = colorAttr
		s.Cells[y][x] = target
	}
}

func (s *Surface) writeFreshPixel(x, y int, isTop bool, colorAttr cell.ColorAttribute) {
	if isTop {
		s.Cells[y][x] = cell.NewCell(cell.UpperHalfBlock, cell.CellAttributes{Foreground: colorAttr})
		return
	}
	s.Cells[y][x] = cell.NewCell(cell.LowerHalfBlock, cell.CellAttributes{Foreground: colorAttr})
}
