package shadowterm

import (
	"testing"

	"github.com/tattoy-go/tattoy/pkg/cell"
)

func TestHandlePrintAdvancesCursorAndWraps(t *testing.T) {
	scr := newScreen(3, 2)
	scr.handlePrint('a')
	scr.handlePrint('b')
	scr.handlePrint('c')
	if scr.cursorX != 0 || scr.cursorY != 1 {
		t.Fatalf("expected cursor to wrap to (0,1), got (%d,%d)", scr.cursorX, scr.cursorY)
	}
	got, _ := scr.active.At(2, 0)
	if got.Text != "c" {
		t.Errorf("expected 'c' at (2,0), got %q", got.Text)
	}
}

func TestHandlePrintScrollsOnOverflow(t *testing.T) {
	scr := newScreen(2, 2)
	for _, r := range "abcdef" {
		scr.handlePrint(r)
	}
	first, _ := scr.active.At(0, 0)
	if first.Text != "e" {
		t.Errorf("expected row 0 to hold scrolled content 'e', got %q", first.Text)
	}
}

func TestHandleExecuteCarriageReturnAndLineFeed(t *testing.T) {
	scr := newScreen(5, 3)
	scr.cursorX = 3
	scr.handleExecute('\r')
	if scr.cursorX != 0 {
		t.Errorf("expected carriage return to reset column, got %d", scr.cursorX)
	}
	scr.handleExecute('\n')
	if scr.cursorY != 1 {
		t.Errorf("expected line feed to advance row, got %d", scr.cursorY)
	}
}

func TestHandleCsiCursorMovement(t *testing.T) {
	scr := newScreen(10, 10)
	scr.cursorX, scr.cursorY = 5, 5
	scr.handleCsi([]int{2}, nil, 'A')
	if scr.cursorY != 3 {
		t.Errorf("expected cursor up 2 to land on row 3, got %d", scr.cursorY)
	}
	scr.handleCsi([]int{1, 1}, nil, 'H')
	if scr.cursorX != 0 || scr.cursorY != 0 {
		t.Errorf("expected CUP 1,1 to move to origin, got (%d,%d)", scr.cursorX, scr.cursorY)
	}
}

func TestHandleCsiEraseLine(t *testing.T) {
	scr := newScreen(4, 1)
	for _, r := range "abcd" {
		scr.handlePrint(r)
	}
	scr.cursorX = 0
	scr.handleCsi([]int{2}, nil, 'K')
	got, _ := scr.active.At(2, 0)
	if got.Text != " " {
		t.Errorf("expected erase-whole-line to blank cell, got %q", got.Text)
	}
}

func TestHandleSGRBasicColors(t *testing.T) {
	scr := newScreen(1, 1)
	scr.handleSGR([]int{1, 31, 44})
	if !scr.style.Has(cell.Bold) {
		t.Error("expected bold style set")
	}
	if scr.fg.Kind != cell.PaletteIndex || scr.fg.Index != 1 {
		t.Errorf("expected fg palette index 1, got %+v", scr.fg)
	}
	if scr.bg.Kind != cell.PaletteIndex || scr.bg.Index != 4 {
		t.Errorf("expected bg palette index 4, got %+v", scr.bg)
	}
}

func TestHandleSGRResetClearsState(t *testing.T) {
	scr := newScreen(1, 1)
	scr.handleSGR([]int{1, 31})
	scr.handleSGR([]int{0})
	if scr.style != 0 || !scr.fg.IsDefault() {
		t.Error("expected SGR 0 to reset style and colors")
	}
}

func TestHandleSGRExtendedTrueColor(t *testing.T) {
	scr := newScreen(1, 1)
	scr.handleSGR([]int{38, 2, 10, 20, 30})
	if scr.fg.Kind != cell.TrueColor {
		t.Fatalf("expected true color fg, got %+v", scr.fg)
	}
	r, g, b, _ := scr.fg.Color.ToSRGBU8()
	if r != 10 || g != 20 || b != 30 {
		t.Errorf("expected rgb(10,20,30), got rgb(%d,%d,%d)", r, g, b)
	}
}

func TestHandlePrivateModeAlternateScreen(t *testing.T) {
	scr := newScreen(4, 4)
	scr.handleCsi([]int{1049}, []byte{'?'}, 'h')
	if scr.active != scr.alternate {
		t.Error("expected CSI ?1049h to switch to the alternate surface")
	}
	scr.handleCsi([]int{1049}, []byte{'?'}, 'l')
	if scr.active != scr.primary {
		t.Error("expected CSI ?1049l to switch back to the primary surface")
	}
}

func TestHandlePrivateModeCursorVisibility(t *testing.T) {
	scr := newScreen(4, 4)
	scr.handleCsi([]int{25}, []byte{'?'}, 'l')
	if scr.cursorVisible {
		t.Error("expected CSI ?25l to hide the cursor")
	}
	scr.handleCsi([]int{25}, []byte{'?'}, 'h')
	if !scr.cursorVisible {
		t.Error("expected CSI ?25h to show the cursor")
	}
}

func TestResizeClampsCursor(t *testing.T) {
	scr := newScreen(10, 10)
	scr.cursorX, scr.cursorY = 9, 9
	scr.resize(4, 4)
	if scr.cursorX != 3 || scr.cursorY != 3 {
		t.Errorf("expected cursor clamped to (3,3), got (%d,%d)", scr.cursorX, scr.cursorY)
	}
}
