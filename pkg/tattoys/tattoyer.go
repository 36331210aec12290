// Package tattoys implements the Tattoyer base every producer embeds, and
// the producers themselves (spec §4.5 "Tattoyer (base)", §4.6 "Tattoys
// (producers)").
//
// Grounded on original_source/crates/tattoy/src/tattoys/tattoyer.rs, which
// has no teacher equivalent (vibetunnel has no compositing layers at all);
// its frame-pacing math, change-detection predicates and PTY-image
// conversion are reproduced here against this module's
// surface.Surface/protocol types instead of termwiz/shadow_terminal's.
package tattoys

import (
	"time"

	"github.com/tattoy-go/tattoy/pkg/protocol"
	"github.com/tattoy-go/tattoy/pkg/state"
	"github.com/tattoy-go/tattoy/pkg/surface"
)

// Tattoyer carries the behavior every producer shares: its own surface
// under construction, cached Scrollback/Screen copies of the PTY output
// (so producers never hold a read lock on shared state while rendering),
// and frame-rate pacing.
type Tattoyer struct {
	ID      string
	Layer   int
	Opacity float32

	State  *state.SharedState
	Output *protocol.FrameChannel

	Surface *surface.Surface
	Width   int
	Height  int

	Scrollback *surface.Surface
	Screen     *surface.Surface
	ScreenMode protocol.ScreenMode

	TargetFrameRate uint32
	lastFrameTick   time.Time
}

// New builds a Tattoyer sized to the shared state's current TTY dimensions
// and frame rate, with a blank surface ready for its first frame. It does
// not call MarkReady; the loop that drives the tattoy does.
func New(id string, layer int, opacity float32, st *state.SharedState, output *protocol.FrameChannel) *Tattoyer {
	width, height := st.TTYSize()
	t := &Tattoyer{
		ID:              id,
		Layer:           layer,
		Opacity:         opacity,
		State:           st,
		Output:          output,
		Width:           width,
		Height:          height,
		Scrollback:      surface.New(id+".scrollback", 0, 0, layer, opacity),
		Screen:          surface.New(id+".screen", 0, 0, layer, opacity),
		TargetFrameRate: st.Config().FrameRate,
		lastFrameTick:   time.Now(),
	}
	t.InitialiseSurface()
	return t
}

// InitialiseSurface allocates a blank surface sized to the current TTY,
// ready for a new frame to be built on top of it.
func (t *Tattoyer) InitialiseSurface() {
	t.Surface = surface.New(t.ID, t.Width, t.Height, t.Layer, t.Opacity)
}

// SetTTYSize keeps the tattoy's notion of the terminal's size current.
func (t *Tattoyer) SetTTYSize(width, height int) {
	t.Width = width
	t.Height = height
}

// HandleCommonProtocolMessages applies the subset of broadcast messages
// every tattoy needs to react to regardless of what it renders: resize,
// PTY output, and a frame-rate change via config reload.
func (t *Tattoyer) HandleCommonProtocolMessages(msg protocol.Message) {
	switch msg.Kind {
	case protocol.KindResize:
		t.SetTTYSize(msg.Resize.Width, msg.Resize.Height)
	case protocol.KindOutput:
		t.HandlePTYOutput(msg.Output)
	case protocol.KindConfig:
		t.TargetFrameRate = msg.Config.FrameRate
	}
}

// IsAlternateScreen reports whether the underlying PTY is currently in its
// alternate-screen buffer.
func (t *Tattoyer) IsAlternateScreen() bool {
	return t.ScreenMode == protocol.Alternate
}

// HandlePTYOutput folds a shadow-terminal Output event into the tattoy's
// own cached Scrollback/Screen copies.
func (t *Tattoyer) HandlePTYOutput(event protocol.OutputEvent) {
	switch event.Kind {
	case protocol.OutputEventDiff:
		t.applyDiff(event.Diff)
	case protocol.OutputEventComplete:
		t.applyComplete(event.Complete)
	}
}

func (t *Tattoyer) applyDiff(d *protocol.Diff) {
	if d == nil {
		return
	}
	target := t.surfaceFor(d.Kind)
	if target.Width != d.Width || target.Height != d.Height {
		target.Resize(d.Width, d.Height)
	}
	for _, change := range d.Changes {
		if change.IsCursorMove {
			target.Cursor.X, target.Cursor.Y = change.CursorX, change.CursorY
			continue
		}
		target.Set(change.X, change.Y, change.NewCell)
	}
	if d.Kind == protocol.Screen {
		t.SetTTYSize(d.Width, d.Height)
	}
}

func (t *Tattoyer) applyComplete(c *protocol.Complete) {
	if c == nil || c.Surface == nil {
		return
	}
	clone := c.Surface.Clone()
	switch c.Kind {
	case protocol.Scrollback:
		t.Scrollback = clone
	case protocol.Screen:
		t.Screen = clone
		t.ScreenMode = c.Mode
		t.SetTTYSize(clone.Width, clone.Height)
	}
}

func (t *Tattoyer) surfaceFor(kind protocol.SurfaceKind) *surface.Surface {
	if kind == protocol.Scrollback {
		return t.Scrollback
	}
	return t.Screen
}

// IsScrollbackOutputChanged reports whether msg represents a real change to
// the scrollback surface: a resize, a Complete event, or a Diff with more
// than the single mandatory cursor-position change.
func IsScrollbackOutputChanged(msg protocol.Message) bool {
	return isSurfaceOutputChanged(msg, protocol.Scrollback)
}

// IsScreenOutputChanged is IsScrollbackOutputChanged's Screen counterpart.
func IsScreenOutputChanged(msg protocol.Message) bool {
	return isSurfaceOutputChanged(msg, protocol.Screen)
}

func isSurfaceOutputChanged(msg protocol.Message, kind protocol.SurfaceKind) bool {
	if msg.Kind == protocol.KindResize {
		return true
	}
	if msg.Kind != protocol.KindOutput {
		return false
	}
	switch msg.Output.Kind {
	case protocol.OutputEventDiff:
		d := msg.Output.Diff
		return d != nil && d.Kind == kind && len(d.Changes) > 1
	case protocol.OutputEventComplete:
		c := msg.Output.Complete
		return c != nil && c.Kind == kind
	}
	return false
}

// SendOutput pushes the tattoy's current surface to the renderer's bounded
// frame channel.
func (t *Tattoyer) SendOutput() bool {
	return t.Output.Send(protocol.NewTattoySurfaceUpdate(t.Surface.Clone()))
}

// SendBlankOutput publishes a 0x0 surface, telling the renderer to drop
// this tattoy's ID from the composited frame.
func (t *Tattoyer) SendBlankOutput() bool {
	t.InitialiseSurface()
	t.Surface.Width = 0
	t.Surface.Height = 0
	return t.SendOutput()
}

// SleepUntilNextFrameTick blocks until the target frame period has elapsed
// since the last tick, or returns immediately if it already has. This
// guarantees at most one render per target period with no unbounded
// catch-up (spec §4.5).
func (t *Tattoyer) SleepUntilNextFrameTick() {
	if t.TargetFrameRate == 0 {
		t.TargetFrameRate = 1
	}
	target := time.Second / time.Duration(t.TargetFrameRate)
	if wait := target - time.Since(t.lastFrameTick); wait > 0 {
		time.Sleep(wait)
	}
	t.lastFrameTick = time.Now()
}
