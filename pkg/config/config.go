// Package config loads, saves and watches Tattoy's TOML configuration
// (spec §6 "Config files (TOML)").
//
// The teacher carries no config loader of its own (vibetunnel is driven by
// flags and environment variables), so this package is built fresh, but in
// the teacher's error-wrapping idiom and using the teacher's own
// (previously-unwired) dependencies: go-toml/v2 for the format, adrg/xdg
// for the directory convention, fsnotify for reload-on-change.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
)

// TextContrast controls whether and how foreground/background contrast is
// auto-corrected after compositing.
type TextContrast struct {
	Enabled             bool    `toml:"enabled"`
	TargetContrast      float64 `toml:"target_contrast"`
	ApplyToReadableOnly bool    `toml:"apply_to_readable_text_only"`
}

// Color holds the saturation/brightness/hue grading applied once per final
// frame pixel.
type Color struct {
	Saturation float64 `toml:"saturation"`
	Brightness float64 `toml:"brightness"`
	Hue        float64 `toml:"hue"`
}

// Minimap configures the scrollback minimap tattoy.
type Minimap struct {
	Enabled        bool    `toml:"enabled"`
	MaxWidth       int     `toml:"max_width"`
	AnimationSpeed float64 `toml:"animation_speed"`
}

// Shader configures the GPU shader background tattoy.
type Shader struct {
	Enabled                   bool    `toml:"enabled"`
	Path                      string  `toml:"path"`
	Opacity                   float32 `toml:"opacity"`
	Layer                     int     `toml:"layer"`
	Render                    bool    `toml:"render"`
	UploadTTYAsPixels         bool    `toml:"upload_tty_as_pixels"`
	RenderShaderColoursToText bool    `toml:"render_shader_colours_to_text"`
}

// AnimatedCursor configures the animated-cursor shader tattoy. Layer is a
// pointer so the config can distinguish "not set" (defaults to negative
// infinity, i.e. always below everything) from an explicit layer.
type AnimatedCursor struct {
	Enabled     bool    `toml:"enabled"`
	Path        string  `toml:"path"`
	Opacity     float32 `toml:"opacity"`
	Layer       *int    `toml:"layer"`
	CursorScale float64 `toml:"cursor_scale"`
}

// Notifications configures the in-TTY notification overlay.
type Notifications struct {
	Enabled  bool    `toml:"enabled"`
	Level    string  `toml:"level"`
	Duration float64 `toml:"duration"`
	Opacity  float32 `toml:"opacity"`
}

// BGCommand configures an arbitrary background command rendered as a layer.
type BGCommand struct {
	Enabled    bool     `toml:"enabled"`
	Command    []string `toml:"command"`
	Layer      int      `toml:"layer"`
	Opacity    float32  `toml:"opacity"`
	ExpectExit bool     `toml:"expect_exit"`
}

// Plugin is one external-plugin entry.
type Plugin struct {
	Name    string   `toml:"name"`
	Path    string   `toml:"path"`
	Layer   *int     `toml:"layer,omitempty"`
	Opacity *float32 `toml:"opacity,omitempty"`
	Enabled *bool    `toml:"enabled,omitempty"`
}

// Snapshot is the full parsed contents of tattoy.toml, passed around as an
// immutable value (spec §3 "Palette is populated once... cloned
// (immutable) into every consumer" applies equally here: every tattoy gets
// its own copy via Protocol::Config).
type Snapshot struct {
	FrameRate           uint32         `toml:"frame_rate"`
	ShowStartupLogo     bool           `toml:"show_startup_logo"`
	ShowTattoyIndicator bool           `toml:"show_tattoy_indicator"`
	TextContrast        TextContrast   `toml:"text_contrast"`
	Color               Color          `toml:"color"`
	Minimap             Minimap        `toml:"minimap"`
	Shader              Shader         `toml:"shader"`
	AnimatedCursor      AnimatedCursor `toml:"animated_cursor"`
	Notifications       Notifications  `toml:"notifications"`
	BGCommand           BGCommand      `toml:"bg_command"`
	Plugins             []Plugin       `toml:"plugins"`
	LogPath             string         `toml:"log_path"`
	LogLevel            string         `toml:"log_level"`
}

// Default returns the built-in configuration used when no tattoy.toml
// exists yet.
func Default() Snapshot {
	return Snapshot{
		FrameRate:           30,
		ShowStartupLogo:     true,
		ShowTattoyIndicator: true,
		TextContrast: TextContrast{
			Enabled:             true,
			TargetContrast:      4.5,
			ApplyToReadableOnly: true,
		},
		Color: Color{Saturation: 1, Brightness: 1, Hue: 0},
		Minimap: Minimap{
			Enabled:        false,
			MaxWidth:       15,
			AnimationSpeed: 0.15,
		},
		Shader: Shader{
			Enabled: false,
			Opacity: 1,
			Layer:   -10,
		},
		AnimatedCursor: AnimatedCursor{
			Enabled:     false,
			Opacity:     1,
			CursorScale: 1,
		},
		Notifications: Notifications{
			Enabled:  true,
			Level:    "info",
			Duration: 5,
			Opacity:  1,
		},
		LogLevel: "info",
	}
}

// DefaultDirectory returns the XDG config directory Tattoy uses when
// --config-dir isn't given.
func DefaultDirectory() string {
	return filepath.Join(xdg.ConfigHome, "tattoy")
}

// Load reads and parses mainConfigFile (relative to dir), falling back to
// Default() when the file doesn't exist.
func Load(dir, mainConfigFile string) (Snapshot, error) {
	path := filepath.Join(dir, mainConfigFile)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("reading config file %s: %w", path, err)
	}

	snapshot := Default()
	if err := toml.Unmarshal(data, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return snapshot, nil
}

// Save writes snapshot to dir/mainConfigFile, creating dir if needed.
func Save(dir, mainConfigFile string, snapshot Snapshot) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	data, err := toml.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	path := filepath.Join(dir, mainConfigFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	return nil
}
