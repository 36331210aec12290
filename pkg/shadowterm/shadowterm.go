// Package shadowterm owns the child process's PTY and the ANSI emulator
// that turns its byte stream into cell-grid Output events (spec §4.1
// "Shadow Terminal").
//
// No teacher file spawns a PTY directly (only pkg/session/manager.go was
// retrieved, and it manages *sessions* of an already-started PTY), so the
// lifecycle here is built fresh against creack/pty's standard API, in the
// teacher's error-wrapping (fmt.Errorf("...: %w", err)) and bracketed
// logging (log.Printf("[LEVEL] ...")) idiom. Shutdown semantics are
// grounded on original_source/crates/shadow_terminal/src/active_terminal.rs
// ActiveTerminal: kill() broadcasts Protocol::End, and its Drop impl
// re-sends kill() as a safety net — expressed here as an idempotent
// Close() guarded by sync.Once, since Go has no destructor to lean on.
package shadowterm

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"

	"github.com/tattoy-go/tattoy/pkg/protocol"
)

// ControlKind tags which variant a Control message currently holds.
type ControlKind uint8

const (
	ControlResize ControlKind = iota
	ControlScrollUp
	ControlScrollDown
	ControlScrollCancel
	ControlEnd
)

// Control is a message sent on the shadow terminal's control channel (spec
// §4.1 "a control channel for Resize, Scroll{Up,Down,Cancel}, End").
type Control struct {
	Kind   ControlKind
	Width  int
	Height int
}

// killGrace is how long Close waits after SIGTERM before escalating to
// SIGKILL (spec §4.1 "the child process receives SIGTERM/SIGKILL").
const killGrace = 200 * time.Millisecond

// ShadowTerminal owns one child process's PTY and its emulator state. It is
// driven by Start/Run and torn down by Close, which is idempotent.
type ShadowTerminal struct {
	cmd     *exec.Cmd
	ptyFile *os.File

	scr    *screen
	parser interface{ Advance(byte) }

	output  chan protocol.OutputEvent
	input   chan []byte
	control chan Control

	prior prior

	closeOnce sync.Once
	done      chan struct{}
}

// New builds a ShadowTerminal emulating a grid of the given size. Start
// spawns the child process into it.
func New(width, height int) *ShadowTerminal {
	scr := newScreen(width, height)
	return &ShadowTerminal{
		scr:     scr,
		parser:  newAnsiParser(scr),
		output:  make(chan protocol.OutputEvent, 64),
		input:   make(chan []byte, 64),
		control: make(chan Control, 8),
		done:    make(chan struct{}),
	}
}

// Start spawns name/args attached to a new PTY sized to the emulator's
// current width/height.
func (st *ShadowTerminal) Start(name string, args []string, env []string) error {
	cmd := exec.Command(name, args...)
	cmd.Env = env

	ws := &pty.Winsize{Rows: uint16(st.scr.height), Cols: uint16(st.scr.width)}
	f, err := pty.StartWithSize(cmd, ws)
	if err != nil {
		return fmt.Errorf("shadowterm: failed to start PTY: %w", err)
	}

	st.cmd = cmd
	st.ptyFile = f
	return nil
}

// Run starts the read, input and control loops and the child reaper in
// their own goroutines and returns at once; the loops run until the child
// exits or Close is called.
func (st *ShadowTerminal) Run() {
	go st.readLoop()
	go st.inputLoop()
	go st.controlLoop()
	go st.reap()
}

func (st *ShadowTerminal) reap() {
	err := st.cmd.Wait()
	if err != nil {
		log.Printf("[WARN] shadowterm: child process exited: %v", err)
	}
	_ = st.Close()
}

func (st *ShadowTerminal) readLoop() {
	buf := make([]byte, 4096)
	for {
		n, err := st.ptyFile.Read(buf)
		if n > 0 {
			for i := 0; i < n; i++ {
				st.parser.Advance(buf[i])
			}
			st.emitOutput()
		}
		if err != nil {
			select {
			case <-st.done:
			default:
				log.Printf("[DEBUG] shadowterm: PTY read ended: %v", err)
			}
			_ = st.Close()
			return
		}
	}
}

func (st *ShadowTerminal) inputLoop() {
	for {
		select {
		case <-st.done:
			return
		case bytes, ok := <-st.input:
			if !ok {
				return
			}
			if _, err := st.ptyFile.Write(bytes); err != nil {
				log.Printf("[WARN] shadowterm: PTY write failed: %v", err)
			}
		}
	}
}

func (st *ShadowTerminal) controlLoop() {
	for {
		select {
		case <-st.done:
			return
		case ctrl, ok := <-st.control:
			if !ok {
				return
			}
			st.handleControl(ctrl)
		}
	}
}

func (st *ShadowTerminal) handleControl(ctrl Control) {
	switch ctrl.Kind {
	case ControlResize:
		st.scr.resize(ctrl.Width, ctrl.Height)
		if err := pty.Setsize(st.ptyFile, &pty.Winsize{
			Rows: uint16(ctrl.Height),
			Cols: uint16(ctrl.Width),
		}); err != nil {
			log.Printf("[WARN] shadowterm: PTY resize failed: %v", err)
		}
		st.emitComplete(protocol.Screen)
		st.emitComplete(protocol.Scrollback)
	case ControlScrollUp, ControlScrollDown, ControlScrollCancel:
		// Scrolling only affects which region of the scrollback surface a
		// tattoy chooses to read; the shadow terminal's own surfaces are
		// unaffected, so there's nothing to mutate here.
	case ControlEnd:
		_ = st.Close()
	}
}

// Input forwards bytes to the PTY's stdin (spec §4.1 "accepts bytes on an
// input channel").
func (st *ShadowTerminal) Input(bytes []byte) {
	select {
	case st.input <- bytes:
	case <-st.done:
	}
}

// SendControl delivers a control-channel message.
func (st *ShadowTerminal) SendControl(ctrl Control) {
	select {
	case st.control <- ctrl:
	case <-st.done:
	}
}

// Output exposes the Output event channel tattoys and the shared-state
// updater read from.
func (st *ShadowTerminal) Output() <-chan protocol.OutputEvent {
	return st.output
}

// Close ends all loops, sends the child process SIGTERM escalating to
// SIGKILL after killGrace, and closes the output channel. Safe to call
// more than once or concurrently.
func (st *ShadowTerminal) Close() error {
	var err error
	st.closeOnce.Do(func() {
		close(st.done)
		if st.cmd != nil && st.cmd.Process != nil {
			_ = st.cmd.Process.Signal(syscall.SIGTERM)
			go func() {
				time.Sleep(killGrace)
				if st.cmd.ProcessState == nil {
					_ = st.cmd.Process.Kill()
				}
			}()
		}
		if st.ptyFile != nil {
			err = st.ptyFile.Close()
		}
		close(st.output)
	})
	return err
}
