// plugin.go implements the Plugin host tattoy (spec §4.6 "Plugin host"):
// a child process rendered as a surface producer, communicating over
// line-delimited JSON on its stdin/stdout.
//
// Grounded on original_source/crates/tattoy/src/tattoys/plugins.rs (wire
// message shapes, PTYUpdate's non-space-cells-only filtering, TTYResize on
// resize) and the teacher's JSON-over-channel framing in
// pkg/api/raw_websocket.go (read loop shape, notify-then-continue on
// subprocess failure).
package tattoys

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/tattoy-go/tattoy/pkg/blender"
	"github.com/tattoy-go/tattoy/pkg/cell"
	"github.com/tattoy-go/tattoy/pkg/palette"
	"github.com/tattoy-go/tattoy/pkg/protocol"
)

// PluginConfig is one entry of the user's `plugins` config list.
type PluginConfig struct {
	Name    string
	Path    string
	Layer   int
	Opacity float32
	Enabled bool
}

// pluginCell is the non-space-cell shape sent to the plugin on every PTY
// update (plugins.rs's tattoy_protocol::Cell).
type pluginCell struct {
	Character  string     `json:"character"`
	Coordinate [2]int     `json:"coordinates"`
	Background [4]float64 `json:"bg"`
	Foreground [4]float64 `json:"fg"`
}

// pluginInputMessage is what the host sends to the plugin's stdin. Only the
// fields of the variant named by Kind are filled in: width/height for
// TTYResize, size/cells/cursor for PTYUpdate.
type pluginInputMessage struct {
	Kind string `json:"kind"`

	// TTYResize
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	// PTYUpdate
	Size   [2]int       `json:"size,omitempty"`
	Cells  []pluginCell `json:"cells,omitempty"`
	Cursor [2]int       `json:"cursor,omitempty"`
}

// pluginOutputPixel is one entry of an OutputPixels message.
type pluginOutputPixel struct {
	Coordinate [2]int      `json:"coordinates"`
	Color      *cell.Srgba `json:"color"`
}

// pluginOutputMessage is what the host receives from the plugin's stdout,
// one JSON object per line.
type pluginOutputMessage struct {
	Kind string `json:"kind"`

	// OutputText
	Text       string               `json:"text,omitempty"`
	Coordinate [2]int               `json:"coordinates,omitempty"`
	Background *cell.ColorAttribute `json:"bg,omitempty"`
	Foreground *cell.ColorAttribute `json:"fg,omitempty"`

	// OutputPixels
	Pixels []pluginOutputPixel `json:"pixels,omitempty"`

	// OutputCells
	Cells []pluginCell `json:"cells,omitempty"`
}

const (
	pluginOutputText   = "output_text"
	pluginOutputPixels = "output_pixels"
	pluginOutputCells  = "output_cells"

	pluginInputResize = "tty_resize"
	pluginInputUpdate = "pty_update"
)

// Plugin hosts one configured plugin subprocess as a tattoy.
type Plugin struct {
	*Tattoyer

	config  PluginConfig
	palette *palette.Palette

	cmd   *exec.Cmd
	stdin io.WriteCloser

	notify func(name, level, detail string)

	// mu guards the embedded Tattoyer's surface/size/screen fields, touched
	// both by render (the stdout readLoop goroutine) and by
	// HandleProtocolMessage (the producer loop's goroutine).
	mu      sync.Mutex
	writeMu sync.Mutex
}

// NewPlugin spawns the configured plugin process and returns a Plugin ready
// to be driven by the caller's protocol message loop. If spawning fails, a
// nil Plugin and an error are returned so the caller can fire a
// notification and move on — Tattoy never aborts on a broken plugin.
func NewPlugin(base *Tattoyer, config PluginConfig, pal *palette.Palette, notify func(name, level, detail string)) (*Plugin, error) {
	cmd := exec.Command(config.Path)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("plugin %s: stdin pipe: %w", config.Name, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("plugin %s: stdout pipe: %w", config.Name, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("plugin %s: stderr pipe: %w", config.Name, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("plugin %s: start: %w", config.Name, err)
	}

	p := &Plugin{
		Tattoyer: base,
		config:   config,
		palette:  pal,
		cmd:      cmd,
		stdin:    stdin,
		notify:   notify,
	}

	go p.readLoop(stdout, stderr)

	return p, nil
}

// readLoop parses newline-delimited JSON from the plugin's stdout until the
// stream ends, skipping lines that aren't valid JSON, then fires a
// notification with the plugin's stderr output and does not restart the
// plugin (spec §4.6 "Plugin failure").
func (p *Plugin) readLoop(stdout, stderr io.ReadCloser) {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var msg pluginOutputMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			continue
		}
		p.render(msg)
	}

	errBody, _ := io.ReadAll(stderr)
	exitErr := p.cmd.Wait()
	if p.notify == nil {
		return
	}
	detail := string(errBody)
	if exitErr != nil {
		detail = fmt.Sprintf("%s\nSTDERR output:\n%s", exitErr, errBody)
	}
	p.notify(fmt.Sprintf("'%s' plugin exited", p.config.Name), "error", detail)
}

// render applies one plugin output message to the tattoy's surface and
// publishes it.
func (p *Plugin) render(msg pluginOutputMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.InitialiseSurface()

	switch msg.Kind {
	case pluginOutputText:
		p.Surface.AddText(msg.Coordinate[0], msg.Coordinate[1], msg.Text, msg.Background, msg.Foreground)
	case pluginOutputPixels:
		for _, px := range msg.Pixels {
			c := cell.Srgba{R: 1, G: 1, B: 1, A: 1}
			if px.Color != nil {
				c = *px.Color
			}
			p.Surface.AddPixel(px.Coordinate[0], px.Coordinate[1], c)
		}
	case pluginOutputCells:
		for _, c := range msg.Cells {
			bg := cell.FromTrueColor(cell.Srgba{R: c.Background[0], G: c.Background[1], B: c.Background[2], A: c.Background[3]})
			fg := cell.FromTrueColor(cell.Srgba{R: c.Foreground[0], G: c.Foreground[1], B: c.Foreground[2], A: c.Foreground[3]})
			p.Surface.AddText(c.Coordinate[0], c.Coordinate[1], c.Character, &bg, &fg)
		}
	}

	p.SendOutput()
}

// HandleProtocolMessage reacts to resize/PTY-output broadcasts by pushing
// the corresponding update down the plugin's stdin.
func (p *Plugin) HandleProtocolMessage(msg protocol.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.HandleCommonProtocolMessages(msg)

	switch msg.Kind {
	case protocol.KindResize:
		p.sendTTYResize(msg.Resize.Width, msg.Resize.Height)
	case protocol.KindOutput:
		p.sendPTYUpdate()
	}
}

func (p *Plugin) sendTTYResize(width, height int) {
	p.writeJSON(pluginInputMessage{Kind: pluginInputResize, Width: width, Height: height})
}

// sendPTYUpdate sends every non-space cell of the cached screen surface,
// with its colours resolved to true-color via the palette (plugins.rs's
// send_pty_output: plugin authors never see palette indices).
func (p *Plugin) sendPTYUpdate() {
	p.writeJSON(p.buildPTYUpdate())
}

func (p *Plugin) buildPTYUpdate() pluginInputMessage {
	cells := make([]pluginCell, 0, p.Screen.Width*p.Screen.Height)
	for y, line := range p.Screen.Cells {
		for x, c := range line {
			if c.IsSpaceOrEmpty() {
				continue
			}
			bg := p.resolveColour(c.Attrs.Background, p.palette.BackgroundColour())
			fg := p.resolveColour(c.Attrs.Foreground, p.palette.ForegroundColour())
			cells = append(cells, pluginCell{
				Character:  c.Text,
				Coordinate: [2]int{x, y},
				Background: [4]float64{bg.R, bg.G, bg.B, bg.A},
				Foreground: [4]float64{fg.R, fg.G, fg.B, fg.A},
			})
		}
	}

	return pluginInputMessage{
		Kind:   pluginInputUpdate,
		Size:   [2]int{p.Width, p.Height},
		Cells:  cells,
		Cursor: [2]int{p.Screen.Cursor.X, p.Screen.Cursor.Y},
	}
}

func (p *Plugin) resolveColour(attr cell.ColorAttribute, fallback cell.Srgba) cell.Srgba {
	resolved, ok := blender.ExtractColor(attr)
	if !ok {
		return fallback
	}
	return resolved
}

func (p *Plugin) writeJSON(msg pluginInputMessage) {
	encoded, err := json.Marshal(msg)
	if err != nil {
		return
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	p.stdin.Write(encoded)
	p.stdin.Write([]byte("\n"))
}

// Close terminates the plugin process.
func (p *Plugin) Close() error {
	p.stdin.Close()
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}
