package gpu

import "testing"

func TestNullBackendUploadAndCloseSucceed(t *testing.T) {
	n := &NullBackend{Width: 4, Height: 2}
	if err := n.Upload(nil); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if err := n.Close(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestNullBackendRenderSizesToDoubleHeight(t *testing.T) {
	n := &NullBackend{Width: 4, Height: 2}
	img, err := n.Render([4]float32{1, 1, 1, 1}, 2.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 4 || bounds.Dy() != 4 {
		t.Errorf("expected 4x4, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}
