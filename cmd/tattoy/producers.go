package main

import (
	"bytes"
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tattoy-go/tattoy/pkg/blender"
	"github.com/tattoy-go/tattoy/pkg/cell"
	"github.com/tattoy-go/tattoy/pkg/config"
	"github.com/tattoy-go/tattoy/pkg/input"
	"github.com/tattoy-go/tattoy/pkg/palette"
	"github.com/tattoy-go/tattoy/pkg/protocol"
	"github.com/tattoy-go/tattoy/pkg/state"
	"github.com/tattoy-go/tattoy/pkg/surface"
	"github.com/tattoy-go/tattoy/pkg/tattoys"
	"github.com/tattoy-go/tattoy/pkg/tattoys/gpu"
)

// Layers for the built-in tattoys. The ones with no original_source
// equivalent (notifications, startup_logo, scrollbar all postdate the Rust
// original — see tattoys/simple.go's own header comment) sit above the
// default shader, random-walker and plugin layers; the scrollbar sits below
// the minimap.
const (
	layerNotifications = 100
	layerStartupLogo   = 95
	layerScrollbar     = 80
	layerMinimap       = 90
	layerRandomWalker  = -10
	layerPluginDefault = -10
)

// runFrameLoop drives one tattoy's whole lifetime (spec §4.5 "Tattoyer
// (base)"): broadcast messages are applied as soon as they arrive, and the
// tattoy renders once per frame tick whenever the message queue is
// momentarily empty. Returns once ctx is canceled or a Protocol::End
// message is observed.
func runFrameLoop(ctx context.Context, st *state.SharedState, id string, tick func(), onMessage func(protocol.Message), render func() bool) {
	msgs, unsubscribe := st.Broadcaster.Subscribe()
	defer unsubscribe()
	st.MarkReady(id)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			onMessage(msg)
			if msg.Kind == protocol.KindEnd {
				return
			}
		default:
			tick()
			render()
		}
	}
}

// enabledSet tracks which named tattoys are active this run: config's own
// enabled flags, overridden (force-enabled) by --use (spec §6 "--use <name>
// ... force-enable a tattoy by name").
type enabledSet map[string]bool

func resolveEnabledTattoys(cfg config.Snapshot, forced []string) enabledSet {
	set := enabledSet{
		"startup_logo":    cfg.ShowStartupLogo,
		"notifications":   cfg.Notifications.Enabled,
		"minimap":         cfg.Minimap.Enabled,
		"shaders":         cfg.Shader.Enabled,
		"animated_cursor": cfg.AnimatedCursor.Enabled,
		"bg_command":      cfg.BGCommand.Enabled,
		"random_walker":   false,
	}
	for _, name := range forced {
		set[name] = true
	}
	return set
}

// producer is one running tattoy task, opaque to the orchestrator beyond
// its name and its run loop.
type producer struct {
	name string
	run  func(ctx context.Context)
}

// buildProducers instantiates every tattoy resolveEnabledTattoys turned on,
// each wrapped in its own run loop. Scrollbar always runs: it renders
// nothing until the input reader's scroll keybind activates it.
func buildProducers(st *state.SharedState, frames *protocol.FrameChannel, cfg config.Snapshot, enabled enabledSet, pal *palette.Palette, logger *zap.SugaredLogger) []producer {
	var producers []producer
	notify := notifyFunc(st)

	producers = append(producers, buildScrollbar(st, frames))

	if enabled["random_walker"] {
		producers = append(producers, buildRandomWalker(st, frames))
	}
	if enabled["startup_logo"] {
		producers = append(producers, buildStartupLogo(st, frames))
	}
	if enabled["notifications"] {
		producers = append(producers, buildNotifications(st, frames, cfg))
	}
	if enabled["minimap"] {
		producers = append(producers, buildMinimap(st, frames, cfg))
	}
	if enabled["shaders"] {
		producers = append(producers, buildShader(st, frames, cfg))
	}
	if enabled["animated_cursor"] {
		producers = append(producers, buildAnimatedCursor(st, frames, cfg))
	}
	if enabled["bg_command"] && len(cfg.BGCommand.Command) > 0 {
		if p, ok := buildBGCommand(st, frames, cfg, notify, logger); ok {
			producers = append(producers, p)
		}
	}
	for _, pc := range cfg.Plugins {
		if p, ok := buildPlugin(st, frames, pc, pal, notify, logger); ok {
			producers = append(producers, p)
		}
	}

	return producers
}

// notifyFunc adapts the broadcaster into the (name, level, detail) shape
// BGCommand and Plugin expect for reporting their own subprocess failures.
func notifyFunc(st *state.SharedState) func(name, level, detail string) {
	return func(name, level, detail string) {
		message := name
		if detail != "" {
			message = name + ": " + detail
		}
		st.Broadcaster.Publish(protocol.NewNotification(level, message, 0))
	}
}

func buildRandomWalker(st *state.SharedState, frames *protocol.FrameChannel) producer {
	base := tattoys.New("random_walker", layerRandomWalker, 1.0, st, frames)
	rw := tattoys.NewRandomWalker(base)
	return producer{
		name: "random_walker",
		run: func(ctx context.Context) {
			runFrameLoop(ctx, st, "random_walker", rw.SleepUntilNextFrameTick, rw.HandleProtocolMessage, rw.Render)
		},
	}
}

func buildStartupLogo(st *state.SharedState, frames *protocol.FrameChannel) producer {
	base := tattoys.New("startup_logo", layerStartupLogo, 1.0, st, frames)
	logo := tattoys.NewStartupLogo(base)
	return producer{
		name: "startup_logo",
		run: func(ctx context.Context) {
			runFrameLoop(ctx, st, "startup_logo", logo.SleepUntilNextFrameTick, logo.HandleCommonProtocolMessages, logo.Render)
		},
	}
}

func buildNotifications(st *state.SharedState, frames *protocol.FrameChannel, cfg config.Snapshot) producer {
	base := tattoys.New("notifications", layerNotifications, cfg.Notifications.Opacity, st, frames)
	n := tattoys.NewNotifications(base)
	defaultDuration := time.Duration(cfg.Notifications.Duration * float64(time.Second))
	onMessage := func(msg protocol.Message) { n.HandleProtocolMessage(msg, defaultDuration) }

	return producer{
		name: "notifications",
		run: func(ctx context.Context) {
			runFrameLoop(ctx, st, "notifications", n.SleepUntilNextFrameTick, onMessage, n.Render)
		},
	}
}

// buildScrollbar wires the scrollbar to the input reader's keybind
// broadcasts (spec §4.8): "scroll_mode_on" and scroll_cancel toggle
// activity, scroll_up/scroll_down nudge a local 0..1 position estimate.
// There's no real scrollback-view-offset state machine anywhere in this
// module (shadowterm's ControlScrollUp/Down/Cancel are no-ops — scrolling
// only ever affected which region of the scrollback a tattoy chose to
// read, and nothing reads a region yet), so this position is an
// approximation rather than the PTY's real scroll offset.
func buildScrollbar(st *state.SharedState, frames *protocol.FrameChannel) producer {
	base := tattoys.New("scrollbar", layerScrollbar, 1.0, st, frames)
	sb := tattoys.NewScrollbar(base)
	position := 0.5

	onMessage := func(msg protocol.Message) {
		sb.HandleCommonProtocolMessages(msg)
		if msg.Kind != protocol.KindKeybindEvent {
			return
		}
		switch msg.Keybind.Name {
		case "scroll_mode_on":
			sb.SetActive(true)
		case input.KeybindScrollCancel:
			sb.SetActive(false)
		case input.KeybindScrollUp:
			position -= 0.05
			sb.SetPosition(position)
		case input.KeybindScrollDown:
			position += 0.05
			sb.SetPosition(position)
		}
	}

	return producer{
		name: "scrollbar",
		run: func(ctx context.Context) {
			runFrameLoop(ctx, st, "scrollbar", sb.SleepUntilNextFrameTick, onMessage, sb.Render)
		},
	}
}

func buildMinimap(st *state.SharedState, frames *protocol.FrameChannel, cfg config.Snapshot) producer {
	base := tattoys.New("minimap", layerMinimap, 1.0, st, frames)
	m := tattoys.NewMinimap(base)
	maxWidth := cfg.Minimap.MaxWidth
	animationSpeed := cfg.Minimap.AnimationSpeed

	onMessage := func(msg protocol.Message) {
		m.HandleProtocolMessage(msg, maxWidth)
		if msg.Kind != protocol.KindInput {
			return
		}
		if x, ok := parseMouseX(msg.Input.Bytes); ok {
			m.CheckMouseOverRightColumns(x)
		}
	}
	render := func() bool { return m.Render(animationSpeed, st.DefaultBackground()) }

	return producer{
		name: "minimap",
		run: func(ctx context.Context) {
			runFrameLoop(ctx, st, "minimap", m.SleepUntilNextFrameTick, onMessage, render)
		},
	}
}

func buildShader(st *state.SharedState, frames *protocol.FrameChannel, cfg config.Snapshot) producer {
	base := tattoys.New("shader", cfg.Shader.Layer, cfg.Shader.Opacity, st, frames)
	s := tattoys.NewShaderer(base, &gpu.NullBackend{Width: base.Width, Height: base.Height})
	s.UploadTTYAsPixels = cfg.Shader.UploadTTYAsPixels

	render := func() bool {
		if err := s.Render(cell.Srgba{}, 0); err != nil {
			return false
		}
		return s.SendOutput()
	}

	return producer{
		name: "shader",
		run: func(ctx context.Context) {
			runFrameLoop(ctx, st, "shader", s.SleepUntilNextFrameTick, s.HandleCommonProtocolMessages, render)
		},
	}
}

// buildAnimatedCursor mirrors buildShader but drives the cursor-tinted
// variant: SkipUnchanged keeps its surface sparse, and Render needs the
// PTY cursor cell's own foreground colour (animated_cursor.rs: the shader
// colours its cursor pixels from the text underneath the cursor).
func buildAnimatedCursor(st *state.SharedState, frames *protocol.FrameChannel, cfg config.Snapshot) producer {
	layer := -1
	if cfg.AnimatedCursor.Layer != nil {
		layer = *cfg.AnimatedCursor.Layer
	}
	base := tattoys.New("animated_cursor", layer, cfg.AnimatedCursor.Opacity, st, frames)
	s := tattoys.NewShaderer(base, &gpu.NullBackend{Width: base.Width, Height: base.Height})
	s.UploadTTYAsPixels = true
	s.SkipUnchanged = true
	cursorScale := cfg.AnimatedCursor.CursorScale

	render := func() bool {
		if err := s.Render(cursorForegroundColour(s.Screen), cursorScale); err != nil {
			return false
		}
		return s.SendOutput()
	}

	return producer{
		name: "animated_cursor",
		run: func(ctx context.Context) {
			runFrameLoop(ctx, st, "animated_cursor", s.SleepUntilNextFrameTick, s.HandleCommonProtocolMessages, render)
		},
	}
}

// cursorForegroundColour reads the foreground colour of the cell currently
// under the PTY's cursor, defaulting to opaque black when there's nothing
// resolved there yet.
func cursorForegroundColour(screen *surface.Surface) cell.Srgba {
	if screen == nil || screen.Cursor.Y < 0 || screen.Cursor.Y >= len(screen.Cells) {
		return cell.Srgba{A: 1}
	}
	row := screen.Cells[screen.Cursor.Y]
	if screen.Cursor.X < 0 || screen.Cursor.X >= len(row) {
		return cell.Srgba{A: 1}
	}
	c, ok := blender.ExtractColor(row[screen.Cursor.X].Attrs.Foreground)
	if !ok {
		return cell.Srgba{A: 1}
	}
	return c
}

func buildBGCommand(st *state.SharedState, frames *protocol.FrameChannel, cfg config.Snapshot, notify func(name, level, detail string), logger *zap.SugaredLogger) (producer, bool) {
	base := tattoys.New("bg_command", cfg.BGCommand.Layer, cfg.BGCommand.Opacity, st, frames)
	b, err := tattoys.NewBGCommand(base, cfg.BGCommand.Command, cfg.BGCommand.ExpectExit, notify)
	if err != nil {
		logger.Warnw("bg_command failed to start", "error", err)
		return producer{}, false
	}
	return producer{
		name: "bg_command",
		run: func(ctx context.Context) {
			runFrameLoop(ctx, st, "bg_command", b.SleepUntilNextFrameTick, b.HandleCommonProtocolMessages, b.Render)
		},
	}, true
}

// buildPlugin spawns one configured plugin subprocess. Unlike every other
// producer, a Plugin drives its own surface updates from its subprocess's
// stdout (NewPlugin starts that read loop internally) — the host only
// needs to keep forwarding protocol messages down its stdin, with no
// frame-tick render call of its own.
func buildPlugin(st *state.SharedState, frames *protocol.FrameChannel, pc config.Plugin, pal *palette.Palette, notify func(name, level, detail string), logger *zap.SugaredLogger) (producer, bool) {
	if pc.Enabled != nil && !*pc.Enabled {
		return producer{}, false
	}
	layer := layerPluginDefault
	if pc.Layer != nil {
		layer = *pc.Layer
	}
	opacity := float32(1.0)
	if pc.Opacity != nil {
		opacity = *pc.Opacity
	}

	base := tattoys.New(pc.Name, layer, opacity, st, frames)
	p, err := tattoys.NewPlugin(base, tattoys.PluginConfig{
		Name:    pc.Name,
		Path:    pc.Path,
		Layer:   layer,
		Opacity: opacity,
		Enabled: true,
	}, pal, notify)
	if err != nil {
		logger.Warnw("plugin failed to start", "plugin", pc.Name, "error", err)
		return producer{}, false
	}

	return producer{
		name: pc.Name,
		run: func(ctx context.Context) {
			defer p.Close()
			msgs, unsubscribe := st.Broadcaster.Subscribe()
			defer unsubscribe()
			st.MarkReady(pc.Name)
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-msgs:
					if !ok {
						return
					}
					p.HandleProtocolMessage(msg)
					if msg.Kind == protocol.KindEnd {
						return
					}
				}
			}
		},
	}, true
}

// parseMouseX extracts the x coordinate from an SGR mouse report
// ("ESC [ < Cb ; Cx ; Cy M/m"), used to drive the minimap's
// reveal-on-proximity check (spec §4.6 "Minimap").
func parseMouseX(b []byte) (int, bool) {
	if len(b) < 6 || b[0] != 0x1b || b[1] != '[' || b[2] != '<' {
		return 0, false
	}
	rest := b[3:]
	firstSemi := bytes.IndexByte(rest, ';')
	if firstSemi < 0 {
		return 0, false
	}
	rest = rest[firstSemi+1:]
	secondSemi := bytes.IndexByte(rest, ';')
	if secondSemi < 0 {
		return 0, false
	}

	x := 0
	for _, c := range rest[:secondSemi] {
		if c < '0' || c > '9' {
			return 0, false
		}
		x = x*10 + int(c-'0')
	}
	return x - 1, true // SGR coordinates are 1-based
}
