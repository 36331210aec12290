package main

import (
	"context"

	"github.com/tattoy-go/tattoy/pkg/protocol"
	"github.com/tattoy-go/tattoy/pkg/shadowterm"
	"github.com/tattoy-go/tattoy/pkg/state"
	"github.com/tattoy-go/tattoy/pkg/surface"
)

// pumpShadowOutput fans the shadow terminal's Output events out to every
// other task: it broadcasts each one as a Protocol message so tattoys can
// cache their own Scrollback/Screen copies (spec §4.5
// "HandlePTYOutput"), keeps shared state's authoritative PTY Screen
// surface current for the renderer, and nudges the renderer whenever the
// Screen surface actually changed. It returns when the shadow terminal's
// output channel closes, which — per spec §7 — is itself a trigger for
// global shutdown.
func pumpShadowOutput(ctx context.Context, st *state.SharedState, shadow *shadowterm.ShadowTerminal, frames *protocol.FrameChannel) {
	events := shadow.Output()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			st.Broadcaster.Publish(protocol.NewOutput(event))
			if applyToPTYScreen(st, event) {
				frames.Send(protocol.NewPTYSurfaceUpdate())
			}
		}
	}
}

// applyToPTYScreen folds one Output event into shared state's authoritative
// PTY Screen surface, reporting whether the Screen surface actually
// changed (Scrollback-only events leave it untouched).
func applyToPTYScreen(st *state.SharedState, event protocol.OutputEvent) bool {
	switch event.Kind {
	case protocol.OutputEventComplete:
		return applyCompleteToPTYScreen(st, event.Complete)
	case protocol.OutputEventDiff:
		return applyDiffToPTYScreen(st, event.Diff)
	}
	return false
}

func applyCompleteToPTYScreen(st *state.SharedState, c *protocol.Complete) bool {
	if c == nil || c.Kind != protocol.Screen || c.Surface == nil {
		return false
	}
	st.SetPTYScreen(c.Surface.Clone())
	return true
}

func applyDiffToPTYScreen(st *state.SharedState, d *protocol.Diff) bool {
	if d == nil || d.Kind != protocol.Screen {
		return false
	}

	current := st.PTYScreen()
	if current == nil {
		current = surface.New("pty", d.Width, d.Height, 0, 1.0)
	}
	if current.Width != d.Width || current.Height != d.Height {
		current.Resize(d.Width, d.Height)
	}

	for _, change := range d.Changes {
		if change.IsCursorMove {
			current.Cursor.X, current.Cursor.Y = change.CursorX, change.CursorY
			continue
		}
		current.Set(change.X, change.Y, change.NewCell)
	}

	st.SetPTYScreen(current)
	return true
}
