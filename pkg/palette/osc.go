package palette

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"
)

// QueryTimeout is how long a single read of the controlling terminal's OSC
// response is given before it counts as a failed attempt.
const QueryTimeout = 1 * time.Second

// maxQueryAttempts bounds the read loop so a terminal that never answers
// (tmux, some CI runners) doesn't hang Tattoy forever.
const maxQueryAttempts = 300

// expectedEntries is how many "ESC]4;i;...BEL" sequences a full response
// must contain before it's considered complete: indices 0-255.
const expectedEntries = 256

const (
	escape           = "\x1b"
	bell             = "\x07"
	stringTerminator = "\x1b\\"
)

// Query asks the controlling terminal, over /dev/tty, what RGB value it
// uses for each of its 256 palette slots, via OSC 4 (spec §4.4
// "query_terminal"). It puts the tty into raw mode for the duration so the
// response isn't line-buffered or echoed.
//
// Only the indexed slots are queried: the terminal's default
// foreground/background (OSC 10/11) are not asked for, so the returned
// palette has no "foreground"/"background" keys and ForegroundColour/
// BackgroundColour fall back to indices 7 and 0.
func Query(ctx context.Context) (*Palette, error) {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("opening controlling terminal: %w", err)
	}
	defer tty.Close()

	fd := int(tty.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("setting raw mode on controlling terminal: %w", err)
	}
	defer term.Restore(fd, oldState)

	var command strings.Builder
	for index := 0; index < expectedEntries; index++ {
		fmt.Fprintf(&command, "%s]4;%d;?%s", escape, index, bell)
	}
	if _, err := tty.WriteString(command.String()); err != nil {
		return nil, fmt.Errorf("writing OSC palette query: %w", err)
	}

	entries, err := readResponse(ctx, tty)
	if err != nil {
		return nil, err
	}

	p := New()
	for index, rgb := range entries {
		p.Set(indexKey(uint8(index)), rgb)
	}
	return p, nil
}

func readResponse(ctx context.Context, tty *os.File) (map[int]RGB8, error) {
	var all bytes.Buffer
	buf := make([]byte, 1024)

	for attempt := 0; attempt < maxQueryAttempts; attempt++ {
		n, err := readWithTimeout(ctx, tty, buf)
		if err != nil {
			return nil, fmt.Errorf("timed out waiting for controlling terminal's palette response: %w", err)
		}
		all.Write(buf[:n])

		// The response is rewritten to its human-readable form (ESC/BEL/ST
		// byte sequences spelled out as text) before parsing, so partial
		// reads and logged responses always look the same.
		readable := strings.NewReplacer(
			stringTerminator, "ST",
			escape, "ESC",
			bell, "BELL",
		).Replace(all.String())

		entries, parseErr := parseColours(readable)
		if parseErr == nil && len(entries) == expectedEntries {
			return entries, nil
		}
	}

	return nil, fmt.Errorf("timed out waiting for controlling terminal's palette response after %d attempts", maxQueryAttempts)
}

func readWithTimeout(ctx context.Context, tty *os.File, buf []byte) (int, error) {
	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, err := tty.Read(buf)
		done <- result{n, err}
	}()

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-time.After(QueryTimeout):
		return 0, fmt.Errorf("no response within %s", QueryTimeout)
	case r := <-done:
		return r.n, r.err
	}
}

// parseColours parses one or more "ESC]4;index;rgb:rrrr/gggg/bbbb(BELL|ST)"
// sequences out of a terminal response that has already been rewritten to
// its human-readable form (spec §4.4 "parse_colours").
func parseColours(response string) (map[int]RGB8, error) {
	entries := make(map[int]RGB8)

	for _, sequence := range strings.Split(response, "ESC]4;") {
		if sequence == "" {
			continue
		}

		parts := strings.SplitN(sequence, ";", 2)
		if len(parts) != 2 {
			continue
		}

		index, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}

		colourish := strings.TrimSuffix(strings.TrimSuffix(parts[1], "ST"), "BELL")
		channels := strings.Split(colourish, "/")
		if len(channels) != 3 {
			continue
		}

		red := lastChars(channels[0], 2)
		green := lastChars(channels[1], 2)
		blue := firstChars(channels[2], 2)

		r, errR := strconv.ParseUint(red, 16, 8)
		g, errG := strconv.ParseUint(green, 16, 8)
		b, errB := strconv.ParseUint(blue, 16, 8)
		if errR != nil || errG != nil || errB != nil {
			continue
		}

		entries[index] = RGB8{R: uint8(r), G: uint8(g), B: uint8(b)}
	}

	return entries, nil
}

func firstChars(s string, n int) string {
	r := []rune(s)
	if len(r) < n {
		return s
	}
	return string(r[:n])
}

func lastChars(s string, n int) string {
	r := []rune(s)
	if len(r) < n {
		return s
	}
	return string(r[len(r)-n:])
}
