package tattoys

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/tattoy-go/tattoy/pkg/cell"
	"github.com/tattoy-go/tattoy/pkg/protocol"
)

// animationStep mirrors the original's AnimationStep enum (minimap.rs):
// the minimap slides in/out from the right edge of the terminal.
type animationStep uint8

const (
	stepHidden animationStep = iota
	stepShowing
	stepShown
	stepHiding
)

// Minimap renders a scaled-down image of the scrollback (and, in alternate
// screen, the live screen) along the terminal's right edge, revealed when
// the mouse approaches it (spec §4.6 "Minimap").
type Minimap struct {
	*Tattoyer

	scrollbackImage *image.RGBA
	screenImage     *image.RGBA

	step       animationStep
	transition float64 // 0 = hidden, 1 = fully shown

	outputChanged bool
}

// NewMinimap wraps base as a Minimap that starts hidden. Its layer is
// base's own; cmd/tattoy gives the minimap layer 90, just below
// notifications.
func NewMinimap(base *Tattoyer) *Minimap {
	return &Minimap{
		Tattoyer:      base,
		step:          stepHidden,
		outputChanged: true,
	}
}

func (m *Minimap) isHidden() bool { return m.step == stepHidden }
func (m *Minimap) isShown() bool  { return m.step == stepShown }

// Show starts the reveal animation if the minimap is currently hidden.
func (m *Minimap) Show() {
	if m.step == stepHidden {
		m.step = stepShowing
		m.transition = 0
	}
}

// Hide starts the dismissal animation if the minimap is currently shown.
func (m *Minimap) Hide() {
	if m.step == stepShown {
		m.step = stepHiding
		m.transition = 1
	}
}

// CheckMouseOverRightColumns shows the minimap when the mouse nears the
// right edge, and hides it once the mouse moves back outside the minimap's
// column band, matching minimap.rs's
// check_if_mouse_is_over_right_columns (x > width-2 to show; outside the
// minimap's own width once shown to hide).
func (m *Minimap) CheckMouseOverRightColumns(mouseX int) {
	if m.isHidden() && mouseX > m.Width-2 {
		m.Show()
	}

	minimapWidth := 0
	if m.scrollbackImage != nil {
		minimapWidth = m.scrollbackImage.Bounds().Dx()
	}
	outsideMinimap := mouseX-1 < m.Width-minimapWidth
	if m.isShown() && outsideMinimap {
		m.Hide()
	}
}

// HandleProtocolMessage reacts to PTY-output changes by rebuilding the
// cached minimap image(s), and to raw input by checking mouse proximity.
func (m *Minimap) HandleProtocolMessage(msg protocol.Message, maxWidth int) {
	m.HandleCommonProtocolMessages(msg)

	if IsScrollbackOutputChanged(msg) {
		m.scrollbackImage = m.buildMinimap(protocol.Scrollback, maxWidth)
		m.outputChanged = true
	}
	if IsScreenOutputChanged(msg) {
		m.screenImage = m.buildMinimap(protocol.Screen, maxWidth)
		m.outputChanged = true
	}
}

// buildMinimap rasterizes the named surface to pixels, then high-quality
// resizes it down to min(maxWidth, tty.width) columns by tty.height*2 rows,
// using golang.org/x/image/draw's Catmull-Rom kernel as this module's
// equivalent of the original's Lanczos3 resampler (both are convolution-
// based resamplers chosen over a box/nearest filter to keep scrollback text
// legible at minimap scale).
func (m *Minimap) buildMinimap(kind protocol.SurfaceKind, maxWidth int) *image.RGBA {
	source := m.ConvertPTYToPixelImage(kind, true)

	targetWidth := maxWidth
	if m.Width < targetWidth {
		targetWidth = m.Width
	}
	if targetWidth <= 0 {
		targetWidth = 1
	}
	targetHeight := m.Height * pixelsPerLine
	if targetHeight <= 0 {
		targetHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), source, source.Bounds(), draw.Over, nil)
	return dst
}

// Render advances the reveal animation and, when transitioning or shown,
// rebuilds the tattoy's surface from the cached minimap image(s) and sends
// it. Returns false when the minimap is fully hidden (nothing to send).
func (m *Minimap) Render(animationSpeed float64, defaultBg cell.Srgba) bool {
	transition, visible := m.nextTransition(animationSpeed)
	if !visible {
		return false
	}
	m.transition = transition

	if m.scrollbackImage == nil {
		return false
	}

	m.InitialiseSurface()

	minimapWidth := m.scrollbackImage.Bounds().Dx()
	minimapHeight := m.scrollbackImage.Bounds().Dy()
	xOffset := int(float64(minimapWidth) * (1.0 - m.transition))
	ttyHeightPixels := m.Height * pixelsPerLine
	emptyHeight := ttyHeightPixels - minimapHeight

	for y := 0; y < ttyHeightPixels; y++ {
		for xMinimap := 0; xMinimap < minimapWidth-xOffset; xMinimap++ {
			xSurface := m.Width - minimapWidth + xMinimap + xOffset
			if y < emptyHeight {
				// Fill the band above the not-yet-fully-revealed minimap
				// with a dim translucent space, drawn on even pixel rows
				// since two pixel rows share one text cell (minimap.rs's
				// reveal-animation filler).
				if y%2 == 0 {
					bg := cell.FromTrueColor(cell.Srgba{R: 0.2, G: 0.2, B: 0.2, A: 0.8})
					fg := cell.FromTrueColor(cell.Srgba{A: 1})
					m.Surface.AddText(xSurface, y/pixelsPerLine, " ", &bg, &fg)
				}
				continue
			}

			px := m.pixelFor(xMinimap, y, emptyHeight)
			c := cell.Srgba{
				R: float64(px.R) / 255.0,
				G: float64(px.G) / 255.0,
				B: float64(px.B) / 255.0,
				A: 0.95,
			}
			m.Surface.AddPixel(xSurface, y, c)
		}
	}

	m.SendOutput()
	m.outputChanged = false
	return true
}

func (m *Minimap) pixelFor(xMinimap, y, emptyHeight int) rgbaPixel {
	if m.screenImage != nil && m.IsAlternateScreen() {
		screenHeight := m.screenImage.Bounds().Dy()
		screenOffset := (m.Height * pixelsPerLine) - screenHeight
		if y >= screenOffset {
			return samplePixel(m.screenImage, xMinimap, y-screenOffset)
		}
	}
	return samplePixel(m.scrollbackImage, xMinimap, y-emptyHeight)
}

type rgbaPixel struct{ R, G, B, A uint8 }

func samplePixel(img *image.RGBA, x, y int) rgbaPixel {
	if x < 0 || y < 0 || x >= img.Bounds().Dx() || y >= img.Bounds().Dy() {
		return rgbaPixel{}
	}
	r, g, b, a := img.At(x, y).RGBA()
	return rgbaPixel{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}

// nextTransition steps the animation state machine by animationSpeed and
// reports the resulting transition value plus whether the minimap has
// anything to render this frame.
func (m *Minimap) nextTransition(animationSpeed float64) (float64, bool) {
	switch m.step {
	case stepHidden:
		return 0, false
	case stepShown:
		return 1, true
	case stepShowing:
		next := m.transition + animationSpeed
		if next >= 1.0 {
			m.step = stepShown
			m.transition = 1
			return 1, true
		}
		m.transition = next
		return next, true
	case stepHiding:
		next := m.transition - animationSpeed
		if next <= 0.0 {
			m.step = stepHidden
			m.transition = 0
			return 0, false
		}
		m.transition = next
		return next, true
	}
	return 0, false
}
