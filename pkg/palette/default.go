package palette

// tokyoNight16 are the 16 ANSI colors of the bundled default palette, used
// whenever a terminal can't be queried over OSC and the user hasn't parsed
// one from a screenshot (spec §4.4 "default palette").
var tokyoNight16 = [16]RGB8{
	{0x1a, 0x1b, 0x26}, // black
	{0xf7, 0x76, 0x8e}, // red
	{0x9e, 0xce, 0x6a}, // green
	{0xe0, 0xaf, 0x68}, // yellow
	{0x7a, 0xa2, 0xf7}, // blue
	{0xbb, 0x9a, 0xf7}, // magenta
	{0x7d, 0xcf, 0xff}, // cyan
	{0xa9, 0xb1, 0xd6}, // white
	{0x41, 0x48, 0x68}, // bright black
	{0xf7, 0x76, 0x8e}, // bright red
	{0x9e, 0xce, 0x6a}, // bright green
	{0xe0, 0xaf, 0x68}, // bright yellow
	{0x7a, 0xa2, 0xf7}, // bright blue
	{0xbb, 0x9a, 0xf7}, // bright magenta
	{0x7d, 0xcf, 0xff}, // bright cyan
	{0xc0, 0xca, 0xf5}, // bright white
}

// cubeSteps are the 6 intensity steps xterm uses to build its 6x6x6 color
// cube (palette indices 16-231).
var cubeSteps = [6]uint8{0x00, 0x5f, 0x87, 0xaf, 0xd7, 0xff}

// NewDefault builds the bundled default palette: the 16 ANSI colors above,
// indices 16-231 as the standard xterm 6x6x6 color cube, 232-255 as a
// grayscale ramp, and foreground/background keyed off indices 7 and 0.
func NewDefault() *Palette {
	p := New()

	for i, c := range tokyoNight16 {
		p.Set(indexKey(uint8(i)), c)
	}

	index := 16
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				p.Set(indexKey(uint8(index)), RGB8{cubeSteps[r], cubeSteps[g], cubeSteps[b]})
				index++
			}
		}
	}

	for i := 0; i < 24; i++ {
		level := uint8(8 + i*10)
		p.Set(indexKey(uint8(232+i)), RGB8{level, level, level})
	}

	p.Set(foregroundKey, tokyoNight16[fallbackForegroundIndex])
	p.Set(backgroundKey, tokyoNight16[fallbackBackgroundIndex])

	return p
}
