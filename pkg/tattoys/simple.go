// simple.go implements the remaining per-frame producers that share the
// Tattoyer contract with no producer-specific wrinkles worth their own file
// (spec §4.6: "Scrollbar, notifications, startup logo, random walker,
// bg_command ... are not the hard part and are specified by the Tattoyer
// contract alone").
package tattoys

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os/exec"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/tattoy-go/tattoy/pkg/cell"
	"github.com/tattoy-go/tattoy/pkg/protocol"
	"github.com/tattoy-go/tattoy/pkg/surface"
)

// writeLine writes text one grapheme at a time via Surface.AddText, since
// AddText itself only ever places a single grapheme per call (spec §4.3
// "add_text"). Producers rendering whole messages or lines go through this
// instead of handing add_text a multi-character string.
func writeLine(surf *surface.Surface, x, y int, text string, bg, fg *cell.ColorAttribute) {
	col := x
	for _, r := range text {
		surf.AddText(col, y, string(r), bg, fg)
		col += runewidth.RuneWidth(r)
	}
}

// RandomWalker nudges a single coloured pixel around the screen every
// frame, randomly walking both its position and its colour. Grounded on
// original_source/crates/tattoy/src/tattoys/random_walker.rs.
type RandomWalker struct {
	*Tattoyer

	x, y   int
	colour cell.Srgba
	rng    *rand.Rand
}

const colourChangeRate = 0.3

// NewRandomWalker builds a RandomWalker with a random starting colour.
func NewRandomWalker(base *Tattoyer) *RandomWalker {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &RandomWalker{
		Tattoyer: base,
		colour: cell.Srgba{
			R: 0.1 + rng.Float64()*0.9,
			G: 0.1 + rng.Float64()*0.9,
			B: 0.1 + rng.Float64()*0.9,
			A: 1,
		},
		rng: rng,
	}
}

// HandleProtocolMessage re-randomizes position on resize, as the original
// does, then folds in the common messages.
func (r *RandomWalker) HandleProtocolMessage(msg protocol.Message) {
	if msg.Kind == protocol.KindResize {
		r.x = r.rng.Intn(max1(msg.Resize.Width))
		r.y = r.rng.Intn(max1(msg.Resize.Height * 2))
	}
	r.HandleCommonProtocolMessages(msg)
}

// Render steps the walk and colour by one frame and publishes the surface.
func (r *RandomWalker) Render() bool {
	r.x = clampInt(r.x+r.rng.Intn(3)-1, 1, max1(r.Width-1))
	r.y = clampInt(r.y+r.rng.Intn(3)-1, 1, max1(r.Height*2-1))

	r.colour.R = clampFloat(r.colour.R+r.rng.Float64()*colourChangeRate-colourChangeRate/2, 0, 1)
	r.colour.G = clampFloat(r.colour.G+r.rng.Float64()*colourChangeRate-colourChangeRate/2, 0, 1)
	r.colour.B = clampFloat(r.colour.B+r.rng.Float64()*colourChangeRate-colourChangeRate/2, 0, 1)

	r.InitialiseSurface()
	r.Surface.AddPixel(r.x, r.y, r.colour)
	return r.SendOutput()
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Notifications renders the most recent unexpired notification as a single
// line near the top of the screen, coloured by severity, auto-dismissing
// after its configured duration (spec §7 "User-visible behavior").
type Notifications struct {
	*Tattoyer

	message string
	level   string
	expires time.Time
}

var notificationColours = map[string]cell.Srgba{
	"error": {R: 0.8, G: 0.1, B: 0.1, A: 1},
	"warn":  {R: 0.8, G: 0.6, B: 0.1, A: 1},
	"info":  {R: 0.2, G: 0.4, B: 0.8, A: 1},
}

// NewNotifications builds an empty Notifications producer.
func NewNotifications(base *Tattoyer) *Notifications {
	return &Notifications{Tattoyer: base}
}

// HandleProtocolMessage records an incoming Notification message as the
// current one to display, replacing whatever was showing before.
func (n *Notifications) HandleProtocolMessage(msg protocol.Message, defaultDuration time.Duration) {
	n.HandleCommonProtocolMessages(msg)

	if msg.Kind != protocol.KindNotification {
		return
	}
	duration := msg.Notification.Duration
	if duration <= 0 {
		duration = defaultDuration
	}
	n.message = msg.Notification.Message
	n.level = msg.Notification.Level
	n.expires = time.Now().Add(duration)
}

// Render draws the current notification, if any and not yet expired, and
// sends blank output to clear it once it has.
func (n *Notifications) Render() bool {
	n.InitialiseSurface()

	if n.message == "" || time.Now().After(n.expires) {
		n.message = ""
		return n.SendBlankOutput()
	}

	colour, ok := notificationColours[n.level]
	if !ok {
		colour = notificationColours["info"]
	}
	bg := cell.FromTrueColor(colour)
	writeLine(n.Surface, 1, 0, n.message, &bg, nil)
	return n.SendOutput()
}

// StartupLogo draws a short static banner in the center of the screen for
// its first few frames, then goes blank permanently — config's
// show_startup_logo gates whether it's started at all.
type StartupLogo struct {
	*Tattoyer

	framesRemaining int
	lines           []string
}

const startupLogoFrames = 90

var defaultStartupLogoLines = []string{"tattoy"}

// NewStartupLogo builds a StartupLogo that renders for startupLogoFrames
// frames before going permanently blank.
func NewStartupLogo(base *Tattoyer) *StartupLogo {
	return &StartupLogo{Tattoyer: base, framesRemaining: startupLogoFrames, lines: defaultStartupLogoLines}
}

// Render draws the banner while frames remain, then blanks permanently.
func (s *StartupLogo) Render() bool {
	if s.framesRemaining <= 0 {
		return s.SendBlankOutput()
	}
	s.framesRemaining--

	s.InitialiseSurface()
	top := max1(s.Height/2 - len(s.lines)/2)
	for i, line := range s.lines {
		left := max1(s.Width/2 - len(line)/2)
		writeLine(s.Surface, left, top+i, line, nil, nil)
	}
	return s.SendOutput()
}

// scrollbarColour matches the spec's exact expected test colour for the
// scrollbar cell while scroll mode is active.
var scrollbarColour = cell.Srgba{R: 0.369, G: 0.365, B: 0.388, A: 1.0}

// Scrollbar renders a single cell marking the scrollback position along the
// right edge while scroll mode is active, and goes blank once it isn't.
type Scrollbar struct {
	*Tattoyer

	active   bool
	position float64 // 0 = top of scrollback, 1 = bottom
}

// NewScrollbar builds an inactive Scrollbar.
func NewScrollbar(base *Tattoyer) *Scrollbar {
	return &Scrollbar{Tattoyer: base}
}

// SetActive toggles whether scroll mode is engaged (driven by the input
// reader's scroll keybind handling, spec §4.8).
func (s *Scrollbar) SetActive(active bool) {
	s.active = active
}

// SetPosition updates the scrollbar's 0..1 position within the scrollback.
func (s *Scrollbar) SetPosition(position float64) {
	s.position = clampFloat(position, 0, 1)
}

// Render draws the scrollbar cell when active, else blanks.
func (s *Scrollbar) Render() bool {
	if !s.active || s.Height <= 2 {
		return s.SendBlankOutput()
	}

	s.InitialiseSurface()
	trackHeight := s.Height - 2
	row := int(s.position*float64(trackHeight-1)) + 1
	bg := cell.FromTrueColor(scrollbarColour)
	s.Surface.AddText(s.Width-1, row, " ", &bg, nil)
	return s.SendOutput()
}

// BGCommand runs a configured background command once and streams its
// stdout as scrolling text onto its own layer (spec "bg_command: {enabled,
// command, layer, opacity, expect_exit}"). A non-zero or unexpected exit
// fires a notification; the lines read before the exit stay on screen.
type BGCommand struct {
	*Tattoyer

	// mu guards lines, appended by readLoop's goroutine and read by Render
	// on the producer loop's goroutine.
	mu         sync.Mutex
	lines      []string
	maxLines   int
	expectExit bool
	notify     func(name, level, detail string)
}

// NewBGCommand spawns command and starts streaming its stdout lines.
func NewBGCommand(base *Tattoyer, command []string, expectExit bool, notify func(name, level, detail string)) (*BGCommand, error) {
	b := &BGCommand{Tattoyer: base, expectExit: expectExit, notify: notify}
	if len(command) == 0 {
		return b, nil
	}
	b.maxLines = base.Height

	cmd := exec.Command(command[0], command[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	go b.readLoop(cmd, stdout)
	return b, nil
}

// readLoop streams the command's stdout line by line, firing a notification
// if it exits unexpectedly (spec's expect_exit flag marks a clean exit as
// normal rather than a failure).
func (b *BGCommand) readLoop(cmd *exec.Cmd, stdout io.ReadCloser) {
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		b.appendLine(scanner.Text())
	}

	err := cmd.Wait()
	if b.notify == nil {
		return
	}
	if err != nil || !b.expectExit {
		b.notify(fmt.Sprintf("'%s' command exited", cmd.Path), "warn", fmt.Sprintf("%v", err))
	}
}

func (b *BGCommand) appendLine(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lines = append(b.lines, line)
	if b.maxLines > 0 && len(b.lines) > b.maxLines {
		b.lines = b.lines[len(b.lines)-b.maxLines:]
	}
}

// Render draws the command's accumulated output lines, most recent at the
// bottom.
func (b *BGCommand) Render() bool {
	b.InitialiseSurface()

	b.mu.Lock()
	lines := append([]string(nil), b.lines...)
	b.mu.Unlock()

	for i, line := range lines {
		writeLine(b.Surface, 0, i, line, nil, nil)
	}
	return b.SendOutput()
}
