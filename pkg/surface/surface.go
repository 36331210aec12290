// Package surface implements the addressable 2D cell grid that every
// tattoy, the PTY shadow terminal, and the renderer's composited frame are
// built from (spec §3 "Surface", §4.3).
//
// The row-of-rows allocation scheme is adapted from the teacher's
// TerminalBuffer (terminal/buffer.go NewTerminalBuffer/Resize), generalized
// to carry an id/layer/opacity/cursor alongside the cells instead of being a
// single fixed PTY buffer.
package surface

import (
	"github.com/mattn/go-runewidth"

	"github.com/tattoy-go/tattoy/pkg/cell"
)

// CursorShape mirrors the small set of shapes a real terminal understands.
type CursorShape uint8

const (
	CursorShapeDefault CursorShape = iota
	CursorShapeBlock
	CursorShapeUnderline
	CursorShapeBar
)

// Cursor is the position, shape and visibility carried alongside a Surface.
type Cursor struct {
	X, Y    int
	Shape   CursorShape
	Visible bool
}

// Surface is a 2D addressable grid of cells plus the metadata the
// compositor and renderer need: id, layer, opacity, and cursor (spec §3).
type Surface struct {
	ID      string
	Layer   int
	Opacity float32
	Width   int
	Height  int
	Cells   [][]cell.Cell
	Cursor  Cursor
}

// New allocates a blank surface of the given size.
func New(id string, width, height, layer int, opacity float32) *Surface {
	s := &Surface{
		ID:      id,
		Layer:   layer,
		Opacity: opacity,
		Width:   width,
		Height:  height,
	}
	s.alloc()
	return s
}

func (s *Surface) alloc() {
	s.Cells = make([][]cell.Cell, s.Height)
	for y := range s.Cells {
		row := make([]cell.Cell, s.Width)
		for x := range row {
			row[x] = cell.Blank()
		}
		s.Cells[y] = row
	}
}

// Resize grows or shrinks the grid in place, preserving any overlapping
// content, following the teacher's Resize (terminal/buffer.go) minCols/minRows
// copy pattern.
func (s *Surface) Resize(width, height int) {
	if width == s.Width && height == s.Height {
		return
	}

	newCells := make([][]cell.Cell, height)
	for y := range newCells {
		row := make([]cell.Cell, width)
		for x := range row {
			row[x] = cell.Blank()
		}
		newCells[y] = row
	}

	minRows := min(height, s.Height)
	minCols := min(width, s.Width)
	for y := 0; y < minRows; y++ {
		copy(newCells[y][:minCols], s.Cells[y][:minCols])
	}

	s.Cells = newCells
	s.Width = width
	s.Height = height
}

// IsRemovalMarker reports whether this surface signals "remove me" to the
// renderer: a surface with zero width or height (spec §3 FrameUpdate).
func (s *Surface) IsRemovalMarker() bool {
	return s.Width == 0 || s.Height == 0
}

// Clone makes a deep copy, so the renderer's copy-on-insert discipline (spec
// §9 "Cell ownership") never aliases a producer's working surface.
func (s *Surface) Clone() *Surface {
	clone := &Surface{
		ID:      s.ID,
		Layer:   s.Layer,
		Opacity: s.Opacity,
		Width:   s.Width,
		Height:  s.Height,
		Cursor:  s.Cursor,
	}
	clone.Cells = make([][]cell.Cell, len(s.Cells))
	for y, row := range s.Cells {
		newRow := make([]cell.Cell, len(row))
		copy(newRow, row)
		clone.Cells[y] = newRow
	}
	return clone
}

// InBounds reports whether (x, y) addresses a real cell.
func (s *Surface) InBounds(x, y int) bool {
	return y >= 0 && y < len(s.Cells) && x >= 0 && x < len(s.Cells[y])
}

// At returns the cell at (x, y), or false if out of bounds.
func (s *Surface) At(x, y int) (cell.Cell, bool) {
	if !s.InBounds(x, y) {
		return cell.Cell{}, false
	}
	return s.Cells[y][x], true
}

// Set writes a cell at (x, y); a no-op if out of bounds.
func (s *Surface) Set(x, y int, c cell.Cell) {
	if !s.InBounds(x, y) {
		return
	}
	s.Cells[y][x] = c
}

// AddText writes a grapheme with optional foreground/background colors,
// advancing by the grapheme's display width so wide characters don't
// collide with their neighbour (spec §4.3 "add_text").
func (s *Surface) AddText(x, y int, text string, bg, fg *cell.ColorAttribute) {
	if !s.InBounds(x, y) {
		return
	}
	attrs := cell.CellAttributes{}
	if fg != nil {
		attrs.Foreground = *fg
	}
	if bg != nil {
		attrs.Background = *bg
	}
	s.Cells[y][x] = cell.NewCell(text, attrs)

	width := runewidth.StringWidth(text)
	for i := 1; i < width; i++ {
		if s.InBounds(x+i, y) {
			s.Cells[y][x+i] = cell.NewCell("", attrs)
		}
	}
}
