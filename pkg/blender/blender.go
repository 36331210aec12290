// Package blender implements the per-cell color math: SRGBA alpha
// blending, contrast adjustment, and hue/saturation/brightness grading
// (spec §4.3 "Blender").
//
// None of this exists in the teacher (vibetunnel never blends colors); it's
// grounded instead on the Rust original's renderer.rs (colour_grade) and
// compositor.rs (blend_all / ensure_readable_contrast call shapes), built
// on a real color-science library rather than hand-rolled HSL math.
package blender

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/tattoy-go/tattoy/pkg/cell"
)

// Kind selects which channel of a cell a blend operation targets.
type Kind uint8

const (
	Fg Kind = iota
	Bg
)

// Blender blends colors into one target cell's attributes.
type Blender struct {
	target    *cell.CellAttributes
	defaultBg cell.Srgba
	opacity   float32
}

// New builds a Blender that writes into target.
func New(target *cell.CellAttributes, defaultBg cell.Srgba, opacity float32) *Blender {
	return &Blender{target: target, defaultBg: defaultBg, opacity: opacity}
}

// ExtractColor resolves a ColorAttribute to a concrete Srgba. TrueColor and
// TrueColorWithPaletteFallback resolve directly; Default and an unresolved
// PaletteIndex (one the palette rewrite pass hasn't reached yet) return
// false, since it is ambiguous what the caller should fall back to.
func ExtractColor(attr cell.ColorAttribute) (cell.Srgba, bool) {
	switch attr.Kind {
	case cell.TrueColor, cell.TrueColorWithPaletteFallback:
		return attr.Color, true
	default:
		return cell.Srgba{}, false
	}
}

// Blend performs a standard source-over alpha blend of src into the
// target's chosen channel, scaling src's alpha by the Blender's opacity
// first (spec §4.3 "blend").
func (b *Blender) Blend(kind Kind, src cell.Srgba) {
	src.A *= float64(b.opacity)

	dst := b.currentColor(kind)

	outA := dst.A + src.A*(1-dst.A)
	var out cell.Srgba
	if outA <= 0 {
		out = cell.Srgba{A: 0}
	} else {
		out = cell.Srgba{
			R: (src.R*src.A + dst.R*dst.A*(1-src.A)) / outA,
			G: (src.G*src.A + dst.G*dst.A*(1-src.A)) / outA,
			B: (src.B*src.A + dst.B*dst.A*(1-src.A)) / outA,
			A: outA,
		}
	}

	b.setColor(kind, cell.FromTrueColor(out))
}

func (b *Blender) currentColor(kind Kind) cell.Srgba {
	var attr cell.ColorAttribute
	if kind == Fg {
		attr = b.target.Foreground
	} else {
		attr = b.target.Background
	}
	if c, ok := ExtractColor(attr); ok {
		return c
	}
	return cell.Srgba{A: 0}
}

func (b *Blender) setColor(kind Kind, attr cell.ColorAttribute) {
	if kind == Fg {
		b.target.Foreground = attr
	} else {
		b.target.Background = attr
	}
}

// BlendAll blends both the foreground and background of cellAbove into the
// target, substituting the Blender's default background when cellAbove's
// background is Default (spec §4.3 "blend_all").
func (b *Blender) BlendAll(above cell.CellAttributes) {
	if fg, ok := ExtractColor(above.Foreground); ok {
		b.Blend(Fg, fg)
	}

	if above.Background.IsDefault() {
		b.Blend(Bg, b.defaultBg)
		return
	}
	if bg, ok := ExtractColor(above.Background); ok {
		b.Blend(Bg, bg)
	}
}

func toColorful(c cell.Srgba) colorful.Color {
	return colorful.Color{R: c.R, G: c.G, B: c.B}
}

func fromColorful(c colorful.Color, alpha float64) cell.Srgba {
	r, g, b := c.Clamped().R, c.Clamped().G, c.Clamped().B
	return cell.Srgba{R: r, G: g, B: b, A: alpha}
}

// relativeAdjust moves v a fraction of the way toward its upper or lower
// bound, the way termwiz's saturate/lighten work: factor 1.0 (the config
// default) is neutral, factor > 1 moves toward 1, factor < 1 moves toward 0
// (original: renderer.rs's colour_grade calling SrgbaTuple::saturate/lighten).
func relativeAdjust(v, factor float64) float64 {
	delta := factor - 1
	if delta >= 0 {
		return v + (1-v)*delta
	}
	return v + v*delta
}

// Grade applies saturation, brightness and hue adjustments to one color,
// run once per final frame pixel over both fg and bg (spec §4.3 "grade").
func Grade(c cell.Srgba, saturation, brightness, hueOffset float64) cell.Srgba {
	h, s, l := toColorful(c).Hsl()
	s = relativeAdjust(s, saturation)
	l = relativeAdjust(l, brightness)
	h += hueOffset
	for h < 0 {
		h += 360
	}
	for h >= 360 {
		h -= 360
	}
	if s < 0 {
		s = 0
	}
	if s > 1 {
		s = 1
	}
	if l < 0 {
		l = 0
	}
	if l > 1 {
		l = 1
	}
	graded := colorful.Hsl(h, s, l)
	return fromColorful(graded, c.A)
}
