// Package protocol defines the broadcast message every task subscribes to
// (spec §3 "Protocol message") and the bounded frame-update message the
// renderer consumes (spec §3 "FrameUpdate").
package protocol

import (
	"time"

	"github.com/tattoy-go/tattoy/pkg/config"
	"github.com/tattoy-go/tattoy/pkg/surface"
)

// Kind tags which variant a Message currently holds.
type Kind uint8

const (
	KindOutput Kind = iota
	KindInput
	KindResize
	KindConfig
	KindKeybindEvent
	KindNotification
	KindCursorVisibility
	KindRepaint
	KindEnd
)

// Resize carries the real terminal's new dimensions.
type Resize struct {
	Width  int
	Height int
}

// InputEvent is raw input captured from the user's real terminal, destined
// either for the PTY or for an internal keybind handler (spec §4.8).
type InputEvent struct {
	Bytes []byte
}

// KeybindEvent names a recognized internal keybind (spec §4.8): toggle
// rendering, scroll up/down/cancel, shader previous/next.
type KeybindEvent struct {
	Name string
}

// Notification is a user-visible message rendered by the notifications
// tattoy (spec §4.6, §7 "User-visible behavior").
type Notification struct {
	Level    string
	Message  string
	Duration time.Duration
}

// Message is the single broadcast type every task subscribes to. Only the
// fields relevant to Kind are meaningful; constructors below are the only
// supported way to build one.
type Message struct {
	Kind          Kind
	Output        OutputEvent
	Input         InputEvent
	Resize        Resize
	Config        config.Snapshot
	Keybind       KeybindEvent
	Notification  Notification
	CursorVisible bool
}

func NewOutput(event OutputEvent) Message { return Message{Kind: KindOutput, Output: event} }
func NewInput(event InputEvent) Message   { return Message{Kind: KindInput, Input: event} }
func NewResize(width, height int) Message {
	return Message{Kind: KindResize, Resize: Resize{Width: width, Height: height}}
}
func NewConfig(snapshot config.Snapshot) Message { return Message{Kind: KindConfig, Config: snapshot} }
func NewKeybind(name string) Message {
	return Message{Kind: KindKeybindEvent, Keybind: KeybindEvent{Name: name}}
}
func NewNotification(level, message string, duration time.Duration) Message {
	return Message{
		Kind:         KindNotification,
		Notification: Notification{Level: level, Message: message, Duration: duration},
	}
}
func NewCursorVisibility(visible bool) Message {
	return Message{Kind: KindCursorVisibility, CursorVisible: visible}
}
func NewRepaint() Message { return Message{Kind: KindRepaint} }
func NewEnd() Message     { return Message{Kind: KindEnd} }

// FrameUpdateKind tags which variant a FrameUpdate currently holds.
type FrameUpdateKind uint8

const (
	FrameUpdateTattoySurface FrameUpdateKind = iota
	FrameUpdatePTYSurface
)

// FrameUpdate is what producers send to the renderer's bounded channel
// (spec §3 "FrameUpdate", §4.7). A TattoySurface with zero width or height
// is a removal signal for its ID; PTYSurface carries no payload of its own
// — it tells the renderer to pull the latest authoritative PTY surface
// from shared state.
type FrameUpdate struct {
	Kind    FrameUpdateKind
	Surface *surface.Surface
}

func NewTattoySurfaceUpdate(s *surface.Surface) FrameUpdate {
	return FrameUpdate{Kind: FrameUpdateTattoySurface, Surface: s}
}

func NewPTYSurfaceUpdate() FrameUpdate {
	return FrameUpdate{Kind: FrameUpdatePTYSurface}
}

// IsRemoval reports whether a TattoySurface update signals removal of its
// surface's ID (spec §3 "a surface with width=0 or height=0 is a
// removal").
func (u FrameUpdate) IsRemoval() bool {
	return u.Kind == FrameUpdateTattoySurface && u.Surface != nil && u.Surface.IsRemovalMarker()
}
