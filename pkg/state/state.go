// Package state holds the single shared object every task reads from:
// TTY size, config snapshot, rendering-enabled bit, default background
// color, the protocol broadcast handle, and the last authoritative PTY
// screen surface (spec §5 "Shared state").
//
// Grounded on the teacher's field-level RWMutex discipline
// (session.Manager's mu guarding runningSessions, termsocket.Manager's
// subMu guarding subscribers), generalized here to one mutex per field
// since the spec calls for "fine-grained read-write locks" rather than one
// lock over the whole object.
package state

import (
	"context"
	"sync"

	"github.com/tattoy-go/tattoy/pkg/cell"
	"github.com/tattoy-go/tattoy/pkg/config"
	"github.com/tattoy-go/tattoy/pkg/protocol"
	"github.com/tattoy-go/tattoy/pkg/surface"
)

// SharedState is safe for concurrent use. Callers must never hold a read
// lock across a frame render — the accessor methods snapshot into local
// values and return, they don't hand back internal pointers (except
// PTYScreen, which returns a defensive clone).
type SharedState struct {
	ttyMu     sync.RWMutex
	ttyWidth  int
	ttyHeight int

	configMu sync.RWMutex
	config   config.Snapshot

	renderingMu      sync.RWMutex
	renderingEnabled bool

	defaultBgMu sync.RWMutex
	defaultBg   cell.Srgba

	// ConfigPath is set once at construction and never mutated, so it needs
	// no lock.
	ConfigPath string

	// Broadcaster is the protocol channel every task subscribes to.
	Broadcaster *protocol.Broadcaster

	ptyMu     sync.RWMutex
	ptyScreen *surface.Surface

	readyMu    sync.Mutex
	readyChans map[string]chan struct{}
}

// New builds a SharedState with the given config path and an initial
// config/TTY size, wired to broadcaster.
func New(configPath string, initial config.Snapshot, ttyWidth, ttyHeight int, broadcaster *protocol.Broadcaster) *SharedState {
	return &SharedState{
		ttyWidth:         ttyWidth,
		ttyHeight:        ttyHeight,
		config:           initial,
		renderingEnabled: true,
		ConfigPath:       configPath,
		Broadcaster:      broadcaster,
		readyChans:       make(map[string]chan struct{}),
	}
}

// TTYSize returns the current real-terminal dimensions.
func (s *SharedState) TTYSize() (width, height int) {
	s.ttyMu.RLock()
	defer s.ttyMu.RUnlock()
	return s.ttyWidth, s.ttyHeight
}

// SetTTYSize updates the current real-terminal dimensions.
func (s *SharedState) SetTTYSize(width, height int) {
	s.ttyMu.Lock()
	defer s.ttyMu.Unlock()
	s.ttyWidth = width
	s.ttyHeight = height
}

// Config returns the current config snapshot.
func (s *SharedState) Config() config.Snapshot {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.config
}

// SetConfig replaces the current config snapshot, e.g. on a reload.
func (s *SharedState) SetConfig(snapshot config.Snapshot) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.config = snapshot
}

// RenderingEnabled reports whether compositing is currently turned on
// (toggled by the "toggle rendering" keybind, spec §4.8).
func (s *SharedState) RenderingEnabled() bool {
	s.renderingMu.RLock()
	defer s.renderingMu.RUnlock()
	return s.renderingEnabled
}

// SetRenderingEnabled flips the global rendering-enabled bit.
func (s *SharedState) SetRenderingEnabled(enabled bool) {
	s.renderingMu.Lock()
	defer s.renderingMu.Unlock()
	s.renderingEnabled = enabled
}

// DefaultBackground returns the palette's resolved default background
// color, used whenever blending math needs a concrete value for an
// otherwise-Default background (spec §4.3 "blend_all").
func (s *SharedState) DefaultBackground() cell.Srgba {
	s.defaultBgMu.RLock()
	defer s.defaultBgMu.RUnlock()
	return s.defaultBg
}

// SetDefaultBackground updates the resolved default background color.
func (s *SharedState) SetDefaultBackground(c cell.Srgba) {
	s.defaultBgMu.Lock()
	defer s.defaultBgMu.Unlock()
	s.defaultBg = c
}

// PTYScreen returns a deep copy of the last authoritative PTY Screen
// surface, or nil if one hasn't arrived yet. Callers get their own copy so
// they never hold the shared state's lock while rendering (spec §5
// "Tattoys never hold a read lock across a frame render").
func (s *SharedState) PTYScreen() *surface.Surface {
	s.ptyMu.RLock()
	defer s.ptyMu.RUnlock()
	if s.ptyScreen == nil {
		return nil
	}
	return s.ptyScreen.Clone()
}

// SetPTYScreen replaces the authoritative PTY Screen surface.
func (s *SharedState) SetPTYScreen(surf *surface.Surface) {
	s.ptyMu.Lock()
	defer s.ptyMu.Unlock()
	s.ptyScreen = surf
}

// MarkReady records that the named subsystem (a tattoy, the shadow
// terminal, the renderer) has finished starting up, waking any
// WaitForSystem callers blocked on it.
func (s *SharedState) MarkReady(name string) {
	s.readyMu.Lock()
	defer s.readyMu.Unlock()

	ch, ok := s.readyChans[name]
	if !ok {
		ch = make(chan struct{})
		s.readyChans[name] = ch
	}
	select {
	case <-ch:
		// already closed; MarkReady is idempotent
	default:
		close(ch)
	}
}

// IsReady reports whether the named subsystem has called MarkReady.
func (s *SharedState) IsReady(name string) bool {
	s.readyMu.Lock()
	ch, ok := s.readyChans[name]
	s.readyMu.Unlock()
	if !ok {
		return false
	}
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

// WaitForSystem blocks until the named subsystem calls MarkReady, or ctx is
// canceled. Grounded on the original's loader.rs
// wait_for_enabled_tattoys_to_start: the PTY must not start forwarding
// output until every enabled tattoy that needs to see early frames (the
// minimap, shaders, the animated cursor) has announced it's ready.
func (s *SharedState) WaitForSystem(ctx context.Context, name string) error {
	s.readyMu.Lock()
	ch, ok := s.readyChans[name]
	if !ok {
		ch = make(chan struct{})
		s.readyChans[name] = ch
	}
	s.readyMu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
