package cell

import "testing"

func TestSrgbaToSRGBU8(t *testing.T) {
	c := Srgba{R: 1, G: 0.5, B: 0, A: 1}
	r, g, b, a := c.ToSRGBU8()
	if r != 255 {
		t.Errorf("expected r=255, got %d", r)
	}
	if g != 128 {
		t.Errorf("expected g=128, got %d", g)
	}
	if b != 0 {
		t.Errorf("expected b=0, got %d", b)
	}
	if a != 255 {
		t.Errorf("expected a=255, got %d", a)
	}
}

func TestSrgbaToSRGBU8Clamps(t *testing.T) {
	c := Srgba{R: -1, G: 2, B: 0, A: 0}
	r, g, _, _ := c.ToSRGBU8()
	if r != 0 {
		t.Errorf("expected clamp to 0, got %d", r)
	}
	if g != 255 {
		t.Errorf("expected clamp to 255, got %d", g)
	}
}

func TestSrgbaInterpolate(t *testing.T) {
	a := Srgba{R: 0, G: 0, B: 0, A: 0}
	b := Srgba{R: 1, G: 1, B: 1, A: 1}

	mid := a.Interpolate(b, 0.5)
	if mid.R != 0.5 || mid.G != 0.5 || mid.B != 0.5 || mid.A != 0.5 {
		t.Errorf("expected midpoint, got %+v", mid)
	}

	start := a.Interpolate(b, 0)
	if start != a {
		t.Errorf("expected t=0 to return a, got %+v", start)
	}
}

func TestColorAttributeIsDefault(t *testing.T) {
	if !DefaultColor().IsDefault() {
		t.Error("expected DefaultColor() to be default")
	}
	if FromPaletteIndex(3).IsDefault() {
		t.Error("expected a palette index to not be default")
	}
	if FromTrueColor(Srgba{}).IsDefault() {
		t.Error("expected a true color to not be default")
	}
}

func TestFromTrueColorWithPaletteFallback(t *testing.T) {
	c := Srgba{R: 0.1, G: 0.2, B: 0.3, A: 1}
	attr := FromTrueColorWithPaletteFallback(c, 7)
	if attr.Kind != TrueColorWithPaletteFallback {
		t.Errorf("expected TrueColorWithPaletteFallback, got %v", attr.Kind)
	}
	if attr.Index != 7 {
		t.Errorf("expected index 7, got %d", attr.Index)
	}
	if attr.Color != c {
		t.Errorf("expected color %+v, got %+v", c, attr.Color)
	}
}
