package shadowterm

import (
	"github.com/tattoy-go/tattoy/pkg/protocol"
	"github.com/tattoy-go/tattoy/pkg/surface"
)

// prior tracks the last surface each kind's Output event was computed
// against, so emitOutput can diff instead of re-sending a whole grid every
// time (spec §3 "Output events... Diff/Complete"). A nil field means no
// event has been sent yet for that kind, forcing the next one to be a
// Complete.
type prior struct {
	screen     *surface.Surface
	scrollback *surface.Surface
}

// emitOutput is called after every chunk of PTY bytes has been fed through
// the parser. It emits both surfaces: Complete the first time a surface is
// seen, Diff otherwise.
func (st *ShadowTerminal) emitOutput() {
	st.emitDiffOrComplete(protocol.Screen, st.scr.active)
	st.emitDiffOrComplete(protocol.Scrollback, st.scr.scroll)
}

func (st *ShadowTerminal) emitDiffOrComplete(kind protocol.SurfaceKind, current *surface.Surface) {
	prev := st.priorFor(kind)
	if prev == nil {
		st.sendComplete(kind, current)
		return
	}
	diff := computeDiff(kind, prev, current, st.scr.cursorX, st.scr.cursorY)
	st.send(protocol.NewDiffEvent(diff))
	st.setPriorFor(kind, current)
}

func (st *ShadowTerminal) priorFor(kind protocol.SurfaceKind) *surface.Surface {
	if kind == protocol.Scrollback {
		return st.prior.scrollback
	}
	return st.prior.screen
}

func (st *ShadowTerminal) setPriorFor(kind protocol.SurfaceKind, s *surface.Surface) {
	clone := s.Clone()
	if kind == protocol.Scrollback {
		st.prior.scrollback = clone
	} else {
		st.prior.screen = clone
	}
}

// sendComplete sends a full-surface Output event and records it as the new
// diff baseline.
func (st *ShadowTerminal) sendComplete(kind protocol.SurfaceKind, current *surface.Surface) {
	st.send(protocol.NewCompleteEvent(protocol.Complete{
		Kind:    kind,
		Surface: current.Clone(),
		Mode:    st.scr.mode,
	}))
	st.setPriorFor(kind, current)
}

// emitComplete forces a Complete event for kind, used after a resize or
// alternate-screen switch where a diff against the old dimensions/contents
// wouldn't make sense.
func (st *ShadowTerminal) emitComplete(kind protocol.SurfaceKind) {
	current := st.scr.scroll
	if kind == protocol.Screen {
		current = st.scr.active
	}
	st.sendComplete(kind, current)
}

func (st *ShadowTerminal) send(event protocol.OutputEvent) {
	select {
	case st.output <- event:
	case <-st.done:
	}
}

// computeDiff walks prev and current cell-by-cell and returns every
// position that changed, plus the mandatory cursor-position Change the
// Tattoyer base uses to recognize a no-op diff (spec §4.5
// "is_scrollback_output_changed"). A dimension change falls back to a
// full-grid diff since there's no sensible cell-by-cell comparison.
func computeDiff(kind protocol.SurfaceKind, prev, current *surface.Surface, cursorX, cursorY int) protocol.Diff {
	changes := make([]protocol.Change, 0, 8)
	sameSize := prev.Width == current.Width && prev.Height == current.Height

	for y := 0; y < current.Height; y++ {
		for x := 0; x < current.Width; x++ {
			next := current.Cells[y][x]
			if sameSize && prev.Cells[y][x] == next {
				continue
			}
			changes = append(changes, protocol.Change{X: x, Y: y, NewCell: next})
		}
	}

	changes = append(changes, protocol.Change{IsCursorMove: true, CursorX: cursorX, CursorY: cursorY})

	return protocol.Diff{
		Kind:    kind,
		Changes: changes,
		Width:   current.Width,
		Height:  current.Height,
	}
}
