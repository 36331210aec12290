package palette

import (
	"image"
	"image/color"
	"testing"
)

func solidGrid(t *testing.T) *image.RGBA {
	t.Helper()
	const cols, rows = PaletteRowSize, 256 / PaletteRowSize
	const cellSize = 4

	img := image.NewRGBA(image.Rect(0, 0, cols*cellSize, rows*cellSize))
	for index := 0; index < 256; index++ {
		col := index % cols
		row := index / cols
		c := color.RGBA{R: uint8(index), G: uint8(255 - index), B: 42, A: 255}
		for y := row * cellSize; y < (row+1)*cellSize; y++ {
			for x := col * cellSize; x < (col+1)*cellSize; x++ {
				img.SetRGBA(x, y, c)
			}
		}
	}
	return img
}

func TestParseScreenshotSamplesEachCell(t *testing.T) {
	img := solidGrid(t)

	p, err := ParseScreenshot(img)
	if err != nil {
		t.Fatalf("ParseScreenshot: %v", err)
	}

	got := p.entries[indexKey(10)]
	if got != (RGB8{R: 10, G: 245, B: 42}) {
		t.Errorf("expected index 10 sampled correctly, got %+v", got)
	}

	got = p.entries[indexKey(255)]
	if got != (RGB8{R: 255, G: 0, B: 42}) {
		t.Errorf("expected index 255 sampled correctly, got %+v", got)
	}
}

func TestParseScreenshotRejectsTooSmallImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))

	if _, err := ParseScreenshot(img); err == nil {
		t.Error("expected an error for an image too small for the grid")
	}
}
