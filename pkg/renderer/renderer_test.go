package renderer

import (
	"testing"

	"github.com/tattoy-go/tattoy/pkg/cell"
	"github.com/tattoy-go/tattoy/pkg/config"
	"github.com/tattoy-go/tattoy/pkg/protocol"
	"github.com/tattoy-go/tattoy/pkg/state"
	"github.com/tattoy-go/tattoy/pkg/surface"
)

func newTestRenderer(t *testing.T, width, height int) *Renderer {
	t.Helper()
	st := state.New("", config.Default(), width, height, protocol.NewBroadcaster())
	r, err := New(st, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestNewSizesToSharedStateTTY(t *testing.T) {
	r := newTestRenderer(t, 10, 5)
	if r.width != 10 || r.height != 5 {
		t.Errorf("expected renderer sized to shared state, got %dx%d", r.width, r.height)
	}
}

func TestRenderInsertsAndRemovesTattoySurfaces(t *testing.T) {
	r := newTestRenderer(t, 5, 3)
	surf := surface.New("walker", 5, 3, 1, 1.0)

	r.render(0, protocol.NewTattoySurfaceUpdate(surf))
	if _, ok := r.tattoys["walker"]; !ok {
		t.Fatal("expected tattoy inserted into renderer's map")
	}

	removal := surface.New("walker", 0, 0, 1, 1.0)
	r.render(0, protocol.NewTattoySurfaceUpdate(removal))
	if _, ok := r.tattoys["walker"]; ok {
		t.Error("expected zero-size update to remove the tattoy")
	}
}

func TestRenderSkipsPaintWhenBacklogPositive(t *testing.T) {
	r := newTestRenderer(t, 5, 3)
	before := r.frame

	surf := surface.New("walker", 5, 3, 1, 1.0)
	r.render(3, protocol.NewTattoySurfaceUpdate(surf))

	if r.frame != before {
		t.Error("expected composite() not to run while backlog is positive")
	}
}

func TestCompositeRendersPTYWhenNoLayerZeroTattoy(t *testing.T) {
	r := newTestRenderer(t, 3, 1)
	r.pty.Set(1, 0, cell.NewCell("x", cell.CellAttributes{}))

	r.composite()

	got, _ := r.frame.At(1, 0)
	if got.Text != "x" {
		t.Errorf("expected PTY glyph composited onto frame, got %q", got.Text)
	}
}

func TestCompositeSkipsPTYWhenPluginReplacesLayer(t *testing.T) {
	r := newTestRenderer(t, 3, 1)
	r.pty.Set(1, 0, cell.NewCell("x", cell.CellAttributes{}))

	plugin := surface.New("plugin", 3, 1, 0, 1.0)
	plugin.Set(1, 0, cell.NewCell("p", cell.CellAttributes{}))
	r.tattoys["plugin"] = plugin

	r.composite()

	got, _ := r.frame.At(1, 0)
	if got.Text != "p" {
		t.Errorf("expected plugin's layer-0 surface to replace the PTY, got %q", got.Text)
	}
}

func TestCompositeSkipsMismatchedSizeTattoy(t *testing.T) {
	r := newTestRenderer(t, 3, 1)
	stale := surface.New("walker", 10, 10, 1, 1.0)
	r.tattoys["walker"] = stale

	r.composite()

	if r.frame.Width != 3 || r.frame.Height != 1 {
		t.Fatalf("expected frame to keep the current size, got %dx%d", r.frame.Width, r.frame.Height)
	}
}

func TestIsSkippedHonoursShaderRenderFlag(t *testing.T) {
	r := newTestRenderer(t, 3, 1)
	shader := surface.New("shader", 3, 1, 1, 1.0)

	cfgOff := newTattoyConfig(config.Default())
	if !r.isSkipped(shader, cfgOff) {
		t.Error("expected shader tattoy skipped when shader.render is false by default")
	}

	snapshot := config.Default()
	snapshot.Shader.Render = true
	cfgOn := newTattoyConfig(snapshot)
	if r.isSkipped(shader, cfgOn) {
		t.Error("expected shader tattoy not skipped once shader.render is true")
	}
}

func TestAddIndicatorWritesTopRightWhenEnabled(t *testing.T) {
	r := newTestRenderer(t, 3, 1)
	r.composite()

	got, _ := r.frame.At(2, 0)
	if got.Text != cell.UpperHalfBlock {
		t.Errorf("expected indicator glyph at top-right, got %q", got.Text)
	}
}

func TestAddIndicatorOmittedWhenDisabled(t *testing.T) {
	r := newTestRenderer(t, 3, 1)
	snapshot := config.Default()
	snapshot.ShowTattoyIndicator = false
	r.state.SetConfig(snapshot)

	r.composite()

	got, _ := r.frame.At(2, 0)
	if got.Text == cell.UpperHalfBlock {
		t.Error("expected no indicator glyph once disabled")
	}
}

func TestHandleProtocolMessageCursorVisibility(t *testing.T) {
	r := newTestRenderer(t, 3, 1)
	r.handleProtocolMessage(protocol.NewCursorVisibility(false))
	if r.cursorVisible {
		t.Error("expected cursorVisible cleared")
	}
}
