// Package gpu defines the contract a shader backend must satisfy to serve
// the Shader and AnimatedCursor tattoys (spec §4.6 "GPU backend is a
// collaborator"). No concrete GPU backend is implemented here — Tattoy's
// shader pipeline in the original is a large wgpu/WGSL subsystem well
// outside this module's scope, so this package only fixes the boundary
// the tattoys package renders against, plus a no-op backend useful for
// tests and headless runs.
package gpu

import "image"

// Backend renders one frame of a shader given the current TTY image and
// cursor parameters, returning an RGBA image sized in half-pixels (the
// same width as the TTY, double its height) that the caller turns into
// add_pixel calls.
type Backend interface {
	// Upload pushes the current TTY image to iChannel0.
	Upload(ttyImage *image.RGBA) error
	// Render produces this frame's output image, given the current PTY
	// cursor cell's foreground colour and the configured cursor scale.
	Render(cursorColour [4]float32, cursorScale float64) (*image.RGBA, error)
	// Close releases any backend resources (pipeline, GPU handles).
	Close() error
}

// NullBackend renders nothing: every call succeeds and Render returns a
// fully transparent image. Useful where no shader directory is configured,
// or in tests that exercise the tattoy loop without a real GPU.
type NullBackend struct {
	Width, Height int
}

func (n *NullBackend) Upload(*image.RGBA) error { return nil }

func (n *NullBackend) Render([4]float32, float64) (*image.RGBA, error) {
	return image.NewRGBA(image.Rect(0, 0, n.Width, n.Height*2)), nil
}

func (n *NullBackend) Close() error { return nil }
