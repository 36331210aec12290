// Package renderer composites every tattoy surface and the PTY together
// into one frame, diffs that frame against the user's real terminal, and
// flushes the minimum set of changes (spec §4.7 "Renderer").
//
// Grounded almost line-for-line on original_source/crates/tattoy/src/
// renderer.rs: the same paint/composite split, the same backlog
// backpressure policy, the same resize-watcher select branch, and the same
// colour-grade-after-all-layers ordering, translated from termwiz's
// BufferedTerminal onto this module's own surface.Surface and a small raw
// ANSI writer (see terminal.go), and from tokio::select! onto the teacher's
// select-loop shape (termsocket.Manager.monitorSession).
package renderer

import (
	"context"
	"log"
	"os"
	"sort"
	"time"

	"github.com/tattoy-go/tattoy/pkg/blender"
	"github.com/tattoy-go/tattoy/pkg/cell"
	"github.com/tattoy-go/tattoy/pkg/compositor"
	"github.com/tattoy-go/tattoy/pkg/config"
	"github.com/tattoy-go/tattoy/pkg/protocol"
	"github.com/tattoy-go/tattoy/pkg/state"
	"github.com/tattoy-go/tattoy/pkg/surface"
)

// checkForResizeRate is the minimum rate at which the renderer checks
// whether the user's real terminal has resized (spec §4.7 "Resize"). A
// frame update arriving faster than this also triggers a check, so the
// effective rate is often higher.
const checkForResizeRate = 30 * time.Millisecond

// maxFrameBacklogWarning is the backlog size above which the renderer logs
// a warning every frame update it merely absorbs (spec §4.7 "If backlog >
// 5, log a warning").
const maxFrameBacklogWarning = 5

// indicatorBlue is the original's "Tattoy is running" indicator colour,
// #0034a1 at 0.7 alpha (original_source utils.rs TATTOY_BLUE).
var indicatorBlue = cell.Srgba{R: 0x00 / 255.0, G: 0x34 / 255.0, B: 0xa1 / 255.0, A: 0.7}

// Renderer owns the user's real terminal handle, the latest tattoy frames
// keyed by ID, a cached copy of the PTY surface, and the composited frame
// built from them every paint.
type Renderer struct {
	state *state.SharedState

	width  int
	height int

	tattoys map[string]*surface.Surface
	pty     *surface.Surface
	frame   *surface.Surface

	indicatorCell cell.Cell
	cursorVisible bool

	term *realTerminal
}

// New builds a Renderer sized to the shared state's current TTY dimensions.
// When withRealTerminal is false, paint() composites but never touches the
// real terminal — used by tests and by any future headless mode.
func New(st *state.SharedState, withRealTerminal bool) (*Renderer, error) {
	width, height := st.TTYSize()

	r := &Renderer{
		state:         st,
		width:         width,
		height:        height,
		tattoys:       make(map[string]*surface.Surface),
		pty:           surface.New("pty", width, height, 0, 1.0),
		frame:         surface.New("frame", width, height, 0, 1.0),
		indicatorCell: cell.NewCell(cell.UpperHalfBlock, cell.CellAttributes{Foreground: cell.FromTrueColor(indicatorBlue)}),
		cursorVisible: true,
	}

	if withRealTerminal {
		term, err := newRealTerminal(os.Stdout)
		if err != nil {
			return nil, err
		}
		r.term = term
		if w, h, err := term.size(); err == nil && w > 0 && h > 0 {
			r.width, r.height = w, h
			r.pty.Resize(w, h)
			r.frame.Resize(w, h)
		}
	}

	return r, nil
}

// Run drives the renderer's select loop until a Protocol::End broadcast (or
// ctx cancellation) arrives, then returns the real terminal to cooked mode.
// It blocks, so callers run it in its own goroutine.
func (r *Renderer) Run(ctx context.Context, frames *protocol.FrameChannel) error {
	msgs, unsubscribe := r.state.Broadcaster.Subscribe()
	defer unsubscribe()

	r.state.MarkReady("renderer")

	ticker := time.NewTicker(checkForResizeRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return r.shutdown()

		case update, ok := <-frames.Recv():
			if !ok {
				return r.shutdown()
			}
			r.checkForUserResize()
			r.render(frames.Backlog(), update)

		case <-ticker.C:
			r.checkForUserResize()

		case msg, ok := <-msgs:
			if !ok {
				return r.shutdown()
			}
			r.handleProtocolMessage(msg)
			if msg.Kind == protocol.KindEnd {
				return r.shutdown()
			}
		}
	}
}

func (r *Renderer) shutdown() error {
	if r.term == nil {
		return nil
	}
	return r.term.restore()
}

// handleProtocolMessage reacts to the subset of broadcast messages the
// renderer cares about directly; everything else only matters via
// FrameUpdates.
func (r *Renderer) handleProtocolMessage(msg protocol.Message) {
	switch msg.Kind {
	case protocol.KindCursorVisibility:
		r.cursorVisible = msg.CursorVisible
	case protocol.KindRepaint:
		r.paint()
	}
}

// checkForUserResize polls the real terminal's size and, on a change,
// updates shared state and broadcasts Protocol::Resize (spec §4.7
// "Resize"). Cached tattoy/PTY surfaces of the old size are left alone;
// render_tattoys and render_pty both skip any surface whose dimensions
// don't match the current frame, logging a warning for that frame only.
func (r *Renderer) checkForUserResize() {
	if r.term == nil {
		return
	}
	width, height, err := r.term.size()
	if err != nil || width <= 0 || height <= 0 {
		return
	}
	if width == r.width && height == r.height {
		return
	}

	r.width, r.height = width, height
	r.state.SetTTYSize(width, height)
	r.state.Broadcaster.Publish(protocol.NewResize(width, height))
}

// render applies one FrameUpdate to the renderer's cached surfaces, then
// paints unless the channel has a backlog (spec §4.7 "maybe_paint").
func (r *Renderer) render(backlog int, update protocol.FrameUpdate) {
	switch update.Kind {
	case protocol.FrameUpdateTattoySurface:
		if update.IsRemoval() {
			delete(r.tattoys, update.Surface.ID)
		} else {
			r.tattoys[update.Surface.ID] = update.Surface
		}
	case protocol.FrameUpdatePTYSurface:
		r.refreshPTYFrame()
	}

	if backlog > 0 {
		if backlog > maxFrameBacklogWarning {
			log.Printf("[WARN] renderer: frame update backlog at %d", backlog)
		}
		return
	}

	r.paint()
}

// refreshPTYFrame pulls the latest authoritative PTY surface, cursor
// included, from shared state. paint() writes that cursor position on every
// flush, so the real terminal sees cursor moves even when no cell changed
// (spec §4.7 "re-apply cursor-position as an explicit change").
func (r *Renderer) refreshPTYFrame() {
	latest := r.state.PTYScreen()
	if latest == nil {
		return
	}
	r.pty = latest
}

// paint runs composite() then diffs+flushes the result to the real
// terminal, placing the cursor at the PTY's cursor position and shape
// (spec §4.7 "Paint algorithm").
func (r *Renderer) paint() {
	r.composite()

	if r.term == nil {
		return
	}

	visible := r.pty.Cursor.Visible
	if !r.cursorVisible {
		visible = false
	}
	r.term.diffAndFlush(r.frame, r.pty.Cursor, visible)
}

// composite builds r.frame from scratch out of the cached tattoy surfaces
// and the cached PTY surface (spec §4.7 "composite()").
func (r *Renderer) composite() {
	cfg := newTattoyConfig(r.state.Config())
	renderingEnabled := r.state.RenderingEnabled()
	defaultBg := r.state.DefaultBackground()

	r.frame = surface.New("frame", r.width, r.height, 0, 1.0)

	if renderingEnabled {
		r.renderTattoys(cfg, defaultBg, func(layer int) bool { return layer < 0 })
	}

	if renderingEnabled && r.isPluginReplacingPTYLayer() {
		r.renderTattoys(cfg, defaultBg, func(layer int) bool { return layer == 0 })
	} else {
		r.renderPTY(cfg, defaultBg, renderingEnabled)
	}

	if renderingEnabled {
		r.renderTattoys(cfg, defaultBg, func(layer int) bool { return layer > 0 })
		r.colourGrade(cfg)
		r.addIndicator(cfg, defaultBg)
		if r.pty.Cursor.Visible {
			compositor.CleanCursorCell(r.frame.Cells, r.pty.Cursor.X, r.pty.Cursor.Y)
		}
	}
}

// isPluginReplacingPTYLayer reports whether any tattoy has claimed layer 0,
// the PTY's own layer, meaning it should be rendered in the PTY's place
// entirely rather than alongside it (spec §4.6 "Plugin host").
func (r *Renderer) isPluginReplacingPTYLayer() bool {
	for _, tattoy := range r.tattoys {
		if tattoy.Layer == 0 {
			return true
		}
	}
	return false
}

// renderTattoys composites every cached tattoy surface matching keep, in
// ascending layer order, breaking ties lexicographically by ID (spec §9
// open question: "Layer-0 tie-break... sort by id lexicographically").
func (r *Renderer) renderTattoys(cfg tattoyConfig, defaultBg cell.Srgba, keep func(layer int) bool) {
	matched := make([]*surface.Surface, 0, len(r.tattoys))
	for _, tattoy := range r.tattoys {
		if !keep(tattoy.Layer) {
			continue
		}
		if r.isSkipped(tattoy, cfg) {
			continue
		}
		matched = append(matched, tattoy)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Layer != matched[j].Layer {
			return matched[i].Layer < matched[j].Layer
		}
		return matched[i].ID < matched[j].ID
	})

	for _, tattoy := range matched {
		if tattoy.Width != r.width || tattoy.Height != r.height {
			log.Printf("[WARN] renderer: not rendering %q, its size doesn't match the current frame", tattoy.ID)
			continue
		}
		for y := 0; y < r.height; y++ {
			for x := 0; x < r.width; x++ {
				above := tattoy.Cells[y][x]
				compositor.CompositeCells(&r.frame.Cells[y][x], above, tattoy.Opacity, defaultBg)
			}
		}
	}
}

// isSkipped applies the two config-driven exceptions the original carries:
// the shader tattoy is skipped entirely when config says not to render it,
// and the animated cursor is skipped as a regular layer when its config
// layer is -1 (in that case it only contributes via the cursor blend in
// renderPTY).
func (r *Renderer) isSkipped(tattoy *surface.Surface, cfg tattoyConfig) bool {
	if tattoy.ID == "shader" && !cfg.shaderRender {
		return true
	}
	if tattoy.ID == "animated_cursor" && cfg.animatedCursorLayer != nil && *cfg.animatedCursorLayer == -1 {
		return true
	}
	return false
}

// renderPTY composites the cached PTY surface onto the frame, optionally
// tinting each cell's foreground from the shader tattoy, blending in the
// animated cursor, and auto-adjusting text contrast (spec §4.7 "renderPTY",
// "each cell may be additionally tinted by the shader tattoy... and by the
// animated-cursor tattoy... and then contrast-adjusted").
func (r *Renderer) renderPTY(cfg tattoyConfig, defaultBg cell.Srgba, renderingEnabled bool) {
	if r.pty.Width != r.width || r.pty.Height != r.height {
		log.Printf("[WARN] renderer: not rendering PTY, its size doesn't match the current frame")
		return
	}

	var shaderCells *surface.Surface
	if cfg.renderShaderColoursToText {
		shaderCells = r.matchingSizedTattoy("shader")
	}

	var cursorCells *surface.Surface
	if cursorTattoy, ok := r.tattoys["animated_cursor"]; ok {
		if cfg.animatedCursorLayer != nil && *cfg.animatedCursorLayer == -1 {
			cursorCells = r.matchingSizedTattoy(cursorTattoy.ID)
		}
	}

	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			frameCell := &r.frame.Cells[y][x]
			compositor.CompositeCells(frameCell, r.pty.Cells[y][x], 1.0, defaultBg)

			if !renderingEnabled {
				continue
			}

			if shaderCells != nil {
				compositor.CompositeFgColourOnly(frameCell, shaderCells.Cells[y][x], defaultBg)
			}

			if cursorCells != nil {
				r.blendAnimatedCursor(frameCell, cursorCells.Cells[y][x], cfg.animatedCursorOpacity, defaultBg)
			}

			if cfg.textContrastEnabled {
				compositor.AutoTextContrast(frameCell, cfg.textContrastTarget, cfg.textContrastReadableOnly, defaultBg)
			}
		}
	}
}

// blendAnimatedCursor mirrors the original's cursor-pixel special case: a
// transparent-black foreground on the cursor's own cell means "nothing to
// blend here", since animated_cursor surfaces are mostly empty.
func (r *Renderer) blendAnimatedCursor(frameCell *cell.Cell, cursorCell cell.Cell, opacity float32, defaultBg cell.Srgba) {
	fg, ok := blender.ExtractColor(cursorCell.Attrs.Foreground)
	if !ok {
		return
	}
	if fg == (cell.Srgba{R: 0, G: 0, B: 0, A: 1}) {
		return
	}
	compositor.BlendCursorPixelIntoText(frameCell, cursorCell, opacity, defaultBg)
}

func (r *Renderer) matchingSizedTattoy(id string) *surface.Surface {
	tattoy, ok := r.tattoys[id]
	if !ok {
		return nil
	}
	if tattoy.Width != r.width || tattoy.Height != r.height {
		log.Printf("[DEBUG] renderer: not using %q, its size doesn't match the current frame", id)
		return nil
	}
	return tattoy
}

// colourGrade applies saturation/brightness/hue grading to every cell's
// resolved foreground and background (spec §4.7 "Color-grade every cell").
func (r *Renderer) colourGrade(cfg tattoyConfig) {
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			c := &r.frame.Cells[y][x]
			if fg, ok := blender.ExtractColor(c.Attrs.Foreground); ok {
				c.Attrs.Foreground = cell.FromTrueColor(blender.Grade(fg, cfg.saturation, cfg.brightness, cfg.hue))
			}
			if bg, ok := blender.ExtractColor(c.Attrs.Background); ok {
				c.Attrs.Background = cell.FromTrueColor(blender.Grade(bg, cfg.saturation, cfg.brightness, cfg.hue))
			}
		}
	}
}

// addIndicator draws the little "Tattoy is running" pixel in the top right
// corner, when enabled (spec §4.7 "Add indicator").
func (r *Renderer) addIndicator(cfg tattoyConfig, defaultBg cell.Srgba) {
	if !cfg.showIndicator {
		return
	}
	if err := compositor.AddIndicator(r.frame.Cells, r.indicatorCell, r.width-1, 0, defaultBg); err != nil {
		log.Printf("[DEBUG] renderer: couldn't add indicator: %v", err)
	}
}
