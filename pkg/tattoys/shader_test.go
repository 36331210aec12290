package tattoys

import (
	"image"
	"image/color"
	"testing"

	"github.com/tattoy-go/tattoy/pkg/cell"
	"github.com/tattoy-go/tattoy/pkg/protocol"
	"github.com/tattoy-go/tattoy/pkg/tattoys/gpu"
)

type fakeBackend struct {
	uploaded *image.RGBA
	frame    *image.RGBA
}

func (f *fakeBackend) Upload(img *image.RGBA) error { f.uploaded = img; return nil }
func (f *fakeBackend) Render([4]float32, float64) (*image.RGBA, error) {
	return f.frame, nil
}
func (f *fakeBackend) Close() error { return nil }

func TestShaderRenderPaintsPixelsFromBackend(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 2, 2))
	frame.Set(1, 1, color.RGBA{R: 255, A: 255})

	backend := &fakeBackend{frame: frame}
	tt := New("shader", 50, 1.0, newTestState(2, 1), protocol.NewFrameChannel())
	s := NewShaderer(tt, backend)

	if err := s.Render(cell.Srgba{}, 1.0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := s.Surface.At(1, 0)
	if got.Text != cell.UpperHalfBlock {
		t.Errorf("expected upper half block at (1,0) once its transparent top pixel is painted, got %q", got.Text)
	}
	if got.Attrs.Background.Color.R != 1 {
		t.Errorf("expected the red bottom pixel on the background, got %+v", got.Attrs.Background.Color)
	}
}

func TestShaderRenderSkipsUnchangedPixelsWhenConfigured(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 1, 2))
	backend := &fakeBackend{frame: frame}
	tt := New("shader", 50, 1.0, newTestState(1, 1), protocol.NewFrameChannel())
	s := NewShaderer(tt, backend)
	s.SkipUnchanged = true
	// The backend returns exactly the opaque black image uploaded this frame.
	frame.Set(0, 0, color.RGBA{A: 255})
	frame.Set(0, 1, color.RGBA{A: 255})

	if err := s.Render(cell.Srgba{}, 1.0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := s.Surface.At(0, 0)
	if got.Text != " " {
		t.Errorf("expected skipped pixel to leave surface untouched, got %q", got.Text)
	}
}

func TestNullBackendRendersTransparentImage(t *testing.T) {
	backend := &gpu.NullBackend{Width: 3, Height: 2}
	img, err := backend.Render([4]float32{}, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 3 || bounds.Dy() != 4 {
		t.Errorf("expected 3x4 image, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}
