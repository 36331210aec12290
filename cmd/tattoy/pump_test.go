package main

import (
	"testing"

	"github.com/tattoy-go/tattoy/pkg/cell"
	"github.com/tattoy-go/tattoy/pkg/config"
	"github.com/tattoy-go/tattoy/pkg/protocol"
	"github.com/tattoy-go/tattoy/pkg/state"
	"github.com/tattoy-go/tattoy/pkg/surface"
)

func newTestState(t *testing.T) *state.SharedState {
	t.Helper()
	return state.New("", config.Default(), 10, 4, protocol.NewBroadcaster())
}

func TestApplyCompleteToPTYScreenStoresScreenOnly(t *testing.T) {
	st := newTestState(t)

	changed := applyCompleteToPTYScreen(st, &protocol.Complete{
		Kind:    protocol.Scrollback,
		Surface: surface.New("scrollback", 10, 4, 0, 1.0),
	})
	if changed {
		t.Error("expected a Scrollback Complete event to report no Screen change")
	}
	if st.PTYScreen() != nil {
		t.Error("expected a Scrollback Complete event to leave PTYScreen untouched")
	}

	changed = applyCompleteToPTYScreen(st, &protocol.Complete{
		Kind:    protocol.Screen,
		Surface: surface.New("screen", 10, 4, 0, 1.0),
	})
	if !changed {
		t.Error("expected a Screen Complete event to report a change")
	}
	if st.PTYScreen() == nil {
		t.Fatal("expected PTYScreen to be populated after a Screen Complete event")
	}
}

func TestApplyDiffToPTYScreenAppliesChangesOnTopOfExisting(t *testing.T) {
	st := newTestState(t)
	applyCompleteToPTYScreen(st, &protocol.Complete{
		Kind:    protocol.Screen,
		Surface: surface.New("screen", 10, 4, 0, 1.0),
	})

	changed := applyDiffToPTYScreen(st, &protocol.Diff{
		Kind:   protocol.Screen,
		Width:  10,
		Height: 4,
		Changes: []protocol.Change{
			{X: 2, Y: 1, NewCell: cell.NewCell("x", cell.CellAttributes{})},
			{IsCursorMove: true, CursorX: 2, CursorY: 1},
		},
	})
	if !changed {
		t.Fatal("expected a Screen Diff to report a change")
	}

	screen := st.PTYScreen()
	if screen.Cells[1][2].Text != "x" {
		t.Errorf("expected the diff's cell write applied, got %+v", screen.Cells[1][2])
	}
	if screen.Cursor.X != 2 || screen.Cursor.Y != 1 {
		t.Errorf("expected cursor moved to (2,1), got (%d,%d)", screen.Cursor.X, screen.Cursor.Y)
	}
}

func TestApplyDiffToPTYScreenIgnoresScrollbackDiffs(t *testing.T) {
	st := newTestState(t)

	changed := applyDiffToPTYScreen(st, &protocol.Diff{Kind: protocol.Scrollback, Width: 10, Height: 4})
	if changed {
		t.Error("expected a Scrollback Diff to report no Screen change")
	}
	if st.PTYScreen() != nil {
		t.Error("expected a Scrollback Diff to leave PTYScreen untouched")
	}
}
