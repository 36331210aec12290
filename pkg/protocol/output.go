package protocol

import (
	"github.com/tattoy-go/tattoy/pkg/cell"
	"github.com/tattoy-go/tattoy/pkg/surface"
)

// SurfaceKind distinguishes the shadow terminal's two independent buffers
// (spec §3 "Output event").
type SurfaceKind uint8

const (
	Scrollback SurfaceKind = iota
	Screen
)

// ScreenMode mirrors whether the PTY is in its primary or alternate screen
// buffer (spec §4.6 "Minimap" alternate-screen overlay behavior).
type ScreenMode uint8

const (
	Main ScreenMode = iota
	Alternate
)

// Change is one mutation the shadow terminal reports within a Diff: either
// a cell write or the cursor moving. A Diff always carries at least the
// cursor-position change, which the Tattoyer base treats as "no real
// change" when it's the only one (spec §4.5
// "is_scrollback_output_changed").
type Change struct {
	IsCursorMove bool
	X, Y         int
	NewCell      cell.Cell
	CursorX      int
	CursorY      int
}

// Diff is an incremental Output event: a small set of cell/cursor changes
// against the previous frame of the named surface.
type Diff struct {
	Kind    SurfaceKind
	Changes []Change
	Width   int
	Height  int
}

// Complete is a full-surface Output event, sent when there's no sensible
// diff to compute (first frame, resize, mode switch).
type Complete struct {
	Kind    SurfaceKind
	Surface *surface.Surface
	Mode    ScreenMode
}

// OutputEventKind tags which variant an OutputEvent currently holds.
type OutputEventKind uint8

const (
	OutputEventDiff OutputEventKind = iota
	OutputEventComplete
)

// OutputEvent is what the shadow terminal emits whenever the underlying
// emulator changes (spec §3 "Output event").
type OutputEvent struct {
	Kind     OutputEventKind
	Diff     *Diff
	Complete *Complete
}

func NewDiffEvent(d Diff) OutputEvent {
	return OutputEvent{Kind: OutputEventDiff, Diff: &d}
}

func NewCompleteEvent(c Complete) OutputEvent {
	return OutputEvent{Kind: OutputEventComplete, Complete: &c}
}
