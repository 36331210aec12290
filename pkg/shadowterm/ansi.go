package shadowterm

import (
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/ansi/parser"
)

// newAnsiParser wires a charmbracelet/x/ansi streaming parser to scr's
// plain-int CSI/SGR handling, the same outer shape (NewParser,
// SetParamsSize/SetDataSize, SetHandler, Advance/State) used by the
// ultraviolet-backed emulator in other_examples
// 40fe0838_dodorz-tuios__internal-vt-emulator.go. The handler bodies here
// unpack ansi.Cmd/ansi.Params into the []int/[]byte/byte shape scr's
// methods expect, so scr itself stays independent of this package's exact
// parameter types.
func newAnsiParser(scr *screen) *ansi.Parser {
	p := ansi.NewParser()
	p.SetParamsSize(parser.MaxParamsSize)
	p.SetDataSize(64 * 1024)

	p.SetHandler(ansi.Handler{
		Print:   scr.handlePrint,
		Execute: scr.handleExecute,
		HandleCsi: func(cmd ansi.Cmd, params ansi.Params) bool {
			scr.handleCsi(intParams(params), intermediateBytes(cmd), byte(cmd.Final()))
			return true
		},
		HandleEsc: func(cmd ansi.Cmd) bool {
			scr.handleEscape(intermediateBytes(cmd), byte(cmd.Final()))
			return true
		},
		HandleOsc: func(cmd int, data []byte) bool {
			scr.handleOsc(data)
			return true
		},
	})
	return p
}

// intParams flattens an ansi.Params into the plain []int form the screen's
// CSI handling switches on, taking each sub-parameter's own default-aware
// value and dropping sub-parameter grouping (Tattoy's shadow terminal only
// needs top-level SGR/cursor parameters, not colon-separated extensions).
func intParams(params ansi.Params) []int {
	out := make([]int, 0, params.Len())
	for i := 0; i < params.Len(); i++ {
		out = append(out, params.Param(i, 0))
	}
	return out
}

func intermediateBytes(cmd ansi.Cmd) []byte {
	if marker := cmd.Marker(); marker != 0 {
		return []byte{byte(marker)}
	}
	return nil
}
