package blender

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/tattoy-go/tattoy/pkg/cell"
)

// relativeLuminance implements the WCAG 2.x relative luminance formula over
// linearized sRGB channels.
func relativeLuminance(c cell.Srgba) float64 {
	linearize := func(v float64) float64 {
		if v <= 0.03928 {
			return v / 12.92
		}
		return math.Pow((v+0.055)/1.055, 2.4)
	}
	r, g, b := linearize(c.R), linearize(c.G), linearize(c.B)
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// contrastRatio is the WCAG contrast ratio between two luminances: (L1 +
// 0.05) / (L2 + 0.05) with L1 the lighter of the two.
func contrastRatio(l1, l2 float64) float64 {
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

// EnsureReadableContrast nudges the target's foreground lightness, in small
// steps, until its WCAG contrast ratio against the background reaches
// target, or until it can't be pushed any further without overshooting
// black/white (spec §4.3 "ensure_readable_contrast").
//
// glyph is the cell's printable string; when readableOnly is true, cells
// whose glyph is whitespace or a half-block pixel are left untouched (they
// have no legible text to protect). When readableOnly is false, contrast is
// enforced on every cell regardless of glyph (spec §8: "after
// ensure_readable_contrast(T, false), WCAG ratio ... for every
// non-whitespace cell").
func (b *Blender) EnsureReadableContrast(target float64, readableOnly bool, glyph string) {
	if readableOnly && !cell.NewCell(glyph, cell.CellAttributes{}).IsPrintableText() {
		return
	}

	fg, ok := ExtractColor(b.target.Foreground)
	if !ok {
		return
	}
	bg, ok := ExtractColor(b.target.Background)
	if !ok {
		return
	}

	bgLum := relativeLuminance(bg)
	const step = 0.05
	const maxSteps = 20

	// Push the foreground further away from the background: lighter when it
	// already sits above the background's luminance, darker otherwise.
	lighten := relativeLuminance(fg) > bgLum

	for i := 0; i < maxSteps; i++ {
		if contrastRatio(relativeLuminance(fg), bgLum) >= target {
			break
		}
		h, s, l := toColorful(fg).Hsl()
		if lighten {
			l += step
		} else {
			l -= step
		}
		if l > 1 {
			l = 1
		}
		if l < 0 {
			l = 0
		}
		fg = fromColorful(colorful.Hsl(h, s, l), fg.A)
	}

	b.target.Foreground = cell.FromTrueColor(fg)
}
