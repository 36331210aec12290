package tattoys

import (
	"image"

	"github.com/tattoy-go/tattoy/pkg/cell"
	"github.com/tattoy-go/tattoy/pkg/tattoys/gpu"
)

// Shaderer is the shared per-frame contract for the Shader and
// AnimatedCursor tattoys (spec §4.6 "Shader & Animated Cursor"): upload the
// current TTY image, ask the GPU backend to render, then translate the
// result into add_pixel calls on the tattoy's own surface.
type Shaderer struct {
	*Tattoyer

	GPU gpu.Backend

	UploadTTYAsPixels bool
	UploadCharacters  bool
	SkipUnchanged     bool

	lastUploaded *image.RGBA
}

// NewShaderer builds a Shaderer producer around an already-initialised GPU
// backend.
func NewShaderer(base *Tattoyer, backend gpu.Backend) *Shaderer {
	return &Shaderer{Tattoyer: base, GPU: backend}
}

// Render runs one shader frame: upload, render, translate to pixels.
// cursorColour/cursorScale are only meaningful for the animated-cursor
// variant; a plain background shader passes a zero colour and scale.
func (s *Shaderer) Render(cursorColour cell.Srgba, cursorScale float64) error {
	ttyImage := s.GetTTYImageForUpload(s.UploadTTYAsPixels, s.UploadCharacters)
	if err := s.GPU.Upload(ttyImage); err != nil {
		return err
	}

	r, g, b, a := cursorColour.ToSRGBU8()
	rendered, err := s.GPU.Render([4]float32{
		float32(r) / 255.0, float32(g) / 255.0, float32(b) / 255.0, float32(a) / 255.0,
	}, cursorScale)
	if err != nil {
		return err
	}

	s.lastUploaded = ttyImage
	s.InitialiseSurface()
	s.paintPixels(rendered)
	return nil
}

// paintPixels walks the GPU's half-pixel image and writes each pixel to the
// surface via add_pixel, optionally skipping pixels identical to the ones
// just uploaded — the sparse-surface optimisation the original notes
// yields a near-empty surface for the animated cursor most frames.
func (s *Shaderer) paintPixels(rendered *image.RGBA) {
	bounds := rendered.Bounds()
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			if s.SkipUnchanged && s.lastUploaded != nil && samePixel(rendered, s.lastUploaded, x, y) {
				continue
			}
			r, g, b, a := rendered.At(x, y).RGBA()
			c := cell.Srgba{
				R: float64(r) / 65535.0,
				G: float64(g) / 65535.0,
				B: float64(b) / 65535.0,
				A: float64(a) / 65535.0,
			}
			s.Surface.AddPixel(x, y, c)
		}
	}
}

func samePixel(a, b *image.RGBA, x, y int) bool {
	if x >= b.Bounds().Dx() || y >= b.Bounds().Dy() {
		return false
	}
	return a.At(x, y) == b.At(x, y)
}
