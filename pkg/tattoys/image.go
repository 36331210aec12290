package tattoys

import (
	"image"
	"image/color"

	"github.com/tattoy-go/tattoy/pkg/blender"
	"github.com/tattoy-go/tattoy/pkg/cell"
	"github.com/tattoy-go/tattoy/pkg/protocol"
)

// pixelsPerLine is how many vertical pixels one terminal row represents.
// Both pixels of a row take the same colour (see pickPixelColour); a cell's
// foreground and background are not split between the upper and lower
// pixel.
const pixelsPerLine = 2

// ConvertPTYToPixelImage rasterizes the named cached surface to an RGBA
// image, a cell's background colour for its space glyphs and (when
// convertCharacters is true) its foreground colour for non-space glyphs,
// falling back to the shared state's default background when a cell's
// colour can't be resolved.
func (t *Tattoyer) ConvertPTYToPixelImage(kind protocol.SurfaceKind, convertCharacters bool) *image.RGBA {
	surf := t.surfaceFor(kind)
	defaultBg := t.State.DefaultBackground()

	img := image.NewRGBA(image.Rect(0, 0, surf.Width, surf.Height*pixelsPerLine))
	for y := 0; y < img.Bounds().Dy(); y++ {
		line := y / pixelsPerLine
		if line >= len(surf.Cells) {
			continue
		}
		for x := 0; x < surf.Width; x++ {
			c := surf.Cells[line][x]
			img.Set(x, y, pickPixelColour(c, convertCharacters, defaultBg))
		}
	}
	return img
}

func pickPixelColour(c cell.Cell, convertCharacters bool, defaultBg cell.Srgba) color.RGBA {
	var attr cell.ColorAttribute
	if c.IsSpaceOrEmpty() || !convertCharacters {
		attr = c.Attrs.Background
	} else {
		attr = c.Attrs.Foreground
	}

	resolved, ok := blender.ExtractColor(attr)
	if !ok {
		resolved = defaultBg
	}
	r, g, b, a := resolved.ToSRGBU8()
	return color.RGBA{R: r, G: g, B: b, A: a}
}

// GetTTYImageForUpload decides what to hand the GPU as iChannel0: the
// rasterized screen, or a plain black image of the same size when the user
// has disabled uploading the TTY as pixels (some shaders still expect a
// valid texture).
func (t *Tattoyer) GetTTYImageForUpload(uploadAsPixels, uploadCharacters bool) *image.RGBA {
	if uploadAsPixels {
		return t.ConvertPTYToPixelImage(protocol.Screen, uploadCharacters)
	}
	return pureBlackImage(t.Width, t.Height)
}

func pureBlackImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height*pixelsPerLine))
	for y := 0; y < img.Bounds().Dy(); y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{A: 255})
		}
	}
	return img
}
