// Package input forwards bytes from the user's real terminal to the PTY,
// intercepting a small set of Tattoy keybinds along the way (spec §4.8
// "Raw input handling (contract)").
//
// No teacher file reads raw keystrokes — vibetunnel forwards browser
// keystrokes over a websocket instead, never touching a local terminal's
// stdin — so this is built fresh, in the shape of termsocket.Manager's
// channel-dispatch style, against golang.org/x/term's raw-mode
// descriptor. Raw mode itself is set once, by the renderer's realTerminal
// (renderer/terminal.go): termios settings apply to the whole controlling
// terminal device, not to a single file descriptor, so the reader only
// needs to read from os.Stdin once the renderer has put the tty in raw
// mode.
package input

import (
	"context"
	"io"
	"os"

	"github.com/tattoy-go/tattoy/pkg/protocol"
	"github.com/tattoy-go/tattoy/pkg/shadowterm"
	"github.com/tattoy-go/tattoy/pkg/state"
)

// Keybind names broadcast as protocol.KeybindEvent (spec §4.8 "Recognized
// internal keybinds include: toggle rendering, scroll up/down/cancel,
// shader previous/next").
const (
	KeybindToggleRendering = "toggle_rendering"
	KeybindScrollUp        = "scroll_up"
	KeybindScrollDown      = "scroll_down"
	KeybindScrollCancel    = "scroll_cancel"
	KeybindShaderPrev      = "shader_prev"
	KeybindShaderNext      = "shader_next"
)

// shadowController is the slice of *shadowterm.ShadowTerminal the reader
// drives: forwarding bytes to the child's stdin, and sending scroll
// control messages. Kept as an interface so tests can swap in a fake
// instead of spinning up a real PTY.
type shadowController interface {
	Input(bytes []byte)
	SendControl(ctrl shadowterm.Control)
}

// Reader owns the user's stdin and the small amount of state needed to
// recognize a multi-byte keybind: whether scroll mode is currently active,
// and which screen buffer the PTY is currently showing (scroll keys are
// swallowed in the main screen, but let through in the alternate screen so
// full-screen apps like vim keep their own arrow-key handling, per spec
// §4.8 "alternate-screen-aware").
type Reader struct {
	in     io.Reader
	shadow shadowController
	state  *state.SharedState

	scrolling bool
	altScreen bool
}

// New builds a Reader that reads from os.Stdin.
func New(st *state.SharedState, shadow *shadowterm.ShadowTerminal) *Reader {
	return &Reader{in: os.Stdin, state: st, shadow: shadow}
}

// Run reads stdin until it errors or ctx is canceled, dispatching every
// chunk read. It blocks, so callers run it in its own goroutine, the same
// as shadowterm.ShadowTerminal.Run's read loop.
func (r *Reader) Run(ctx context.Context) error {
	msgs, unsubscribe := r.state.Broadcaster.Subscribe()
	defer unsubscribe()
	go r.watchScreenMode(ctx, msgs)

	buf := make([]byte, 4096)
	for {
		n, err := r.in.Read(buf)
		if n > 0 {
			r.handleBytes(buf[:n])
		}
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

// watchScreenMode tracks alternate-vs-main screen switches from broadcast
// Output events, the same way tattoys.Tattoyer does (tattoys/tattoyer.go
// applyComplete), so scroll-mode arrow keys know whether to intercept.
func (r *Reader) watchScreenMode(ctx context.Context, msgs <-chan protocol.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			r.applyOutputMessage(msg)
		}
	}
}

func (r *Reader) applyOutputMessage(msg protocol.Message) {
	if msg.Kind != protocol.KindOutput {
		return
	}
	if msg.Output.Kind != protocol.OutputEventComplete || msg.Output.Complete == nil {
		return
	}
	if msg.Output.Complete.Kind != protocol.Screen {
		return
	}
	r.altScreen = msg.Output.Complete.Mode == protocol.Alternate
}

// handleBytes walks a chunk of raw input, recognizing ESC-prefixed
// keybinds and forwarding everything else straight to the PTY.
func (r *Reader) handleBytes(data []byte) {
	for i := 0; i < len(data); {
		if data[i] == 0x1b {
			i += r.handleEscape(data[i:])
			continue
		}
		r.forward(data[i : i+1])
		i++
	}
}

// handleEscape consumes and interprets one ESC-led sequence, returning how
// many bytes it consumed.
func (r *Reader) handleEscape(data []byte) int {
	if len(data) == 1 {
		r.handlePlainEscape()
		return 1
	}

	switch data[1] {
	case 't':
		r.toggleRendering()
		return 2
	case 's':
		r.toggleScrollMode()
		return 2
	case '{':
		r.fireKeybind(KeybindShaderPrev)
		return 2
	case '}':
		r.fireKeybind(KeybindShaderNext)
		return 2
	case '[':
		return r.handleCSI(data)
	default:
		r.forward(data[:2])
		return 2
	}
}

// handlePlainEscape is a bare ESC with nothing following in this chunk:
// cancels scroll mode if it's active, otherwise forwarded as a literal key
// press (e.g. exiting insert mode in a full-screen editor).
func (r *Reader) handlePlainEscape() {
	if r.scrolling {
		r.cancelScroll()
		return
	}
	r.forward([]byte{0x1b})
}

// handleCSI interprets an ESC [ ... sequence. Up/Down arrows and mouse
// wheel events are intercepted as scroll keys while scroll mode is active
// and the PTY is on its main screen; everything else, including arrows and
// wheel events outside scroll mode or on the alternate screen, is
// forwarded untouched.
func (r *Reader) handleCSI(data []byte) int {
	if len(data) < 3 {
		r.forward(data)
		return len(data)
	}

	if data[2] == '<' {
		return r.handleMouse(data)
	}

	if r.scrolling && !r.altScreen {
		switch data[2] {
		case 'A':
			r.fireScroll(KeybindScrollUp, shadowterm.ControlScrollUp)
			return 3
		case 'B':
			r.fireScroll(KeybindScrollDown, shadowterm.ControlScrollDown)
			return 3
		}
	}

	r.forward(data[:3])
	return 3
}

// handleMouse interprets an SGR mouse-report sequence (ESC [ < Cb ; Cx ;
// Cy M/m). Wheel up/down (button codes 64/65) are treated as scroll keys
// while scroll mode is active and the PTY is on its main screen; every
// other mouse event is forwarded untouched.
func (r *Reader) handleMouse(data []byte) int {
	end := -1
	for i := 3; i < len(data); i++ {
		if data[i] == 'M' || data[i] == 'm' {
			end = i
			break
		}
	}
	if end == -1 {
		r.forward(data)
		return len(data)
	}

	if r.scrolling && !r.altScreen {
		switch parseMouseButton(data[3:end]) {
		case 64:
			r.fireScroll(KeybindScrollUp, shadowterm.ControlScrollUp)
			return end + 1
		case 65:
			r.fireScroll(KeybindScrollDown, shadowterm.ControlScrollDown)
			return end + 1
		}
	}

	r.forward(data[:end+1])
	return end + 1
}

// parseMouseButton reads the leading Cb field of an SGR mouse report,
// returning -1 if it isn't a plain decimal number.
func parseMouseButton(params []byte) int {
	button := 0
	for _, b := range params {
		if b == ';' {
			break
		}
		if b < '0' || b > '9' {
			return -1
		}
		button = button*10 + int(b-'0')
	}
	return button
}

func (r *Reader) toggleRendering() {
	r.state.SetRenderingEnabled(!r.state.RenderingEnabled())
	r.fireKeybind(KeybindToggleRendering)
}

func (r *Reader) toggleScrollMode() {
	if r.scrolling {
		r.cancelScroll()
		return
	}
	r.scrolling = true
	r.fireKeybind("scroll_mode_on")
}

func (r *Reader) cancelScroll() {
	r.scrolling = false
	r.shadow.SendControl(shadowterm.Control{Kind: shadowterm.ControlScrollCancel})
	r.fireKeybind(KeybindScrollCancel)
}

func (r *Reader) fireScroll(name string, kind shadowterm.ControlKind) {
	r.shadow.SendControl(shadowterm.Control{Kind: kind})
	r.fireKeybind(name)
}

func (r *Reader) fireKeybind(name string) {
	r.state.Broadcaster.Publish(protocol.NewKeybind(name))
}

// forward sends raw bytes on to the PTY's stdin, the default path for
// anything that isn't a recognized keybind (spec §4.8 "forwards bytes...
// to (a) the PTY stdin (default)"), and broadcasts them as a KindInput
// message so other subscribers (the minimap's mouse-proximity check) can
// inspect raw input without owning stdin themselves.
func (r *Reader) forward(b []byte) {
	cp := make([]byte, len(b))
	copy(cp, b)
	r.shadow.Input(cp)
	r.state.Broadcaster.Publish(protocol.NewInput(protocol.InputEvent{Bytes: cp}))
}
