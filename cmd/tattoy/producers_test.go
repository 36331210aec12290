package main

import (
	"testing"

	"github.com/tattoy-go/tattoy/pkg/config"
)

func TestParseMouseX(t *testing.T) {
	tests := []struct {
		name   string
		bytes  []byte
		wantX  int
		wantOK bool
	}{
		{"click", []byte("\x1b[<0;42;7M"), 41, true},
		{"release", []byte("\x1b[<0;1;1m"), 0, true},
		{"not mouse", []byte("\x1b[A"), 0, false},
		{"too short", []byte("\x1b[<"), 0, false},
		{"missing second field", []byte("\x1b[<0;42"), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, ok := parseMouseX(tt.bytes)
			if ok != tt.wantOK {
				t.Fatalf("parseMouseX(%q) ok = %v, want %v", tt.bytes, ok, tt.wantOK)
			}
			if ok && x != tt.wantX {
				t.Errorf("parseMouseX(%q) = %d, want %d", tt.bytes, x, tt.wantX)
			}
		})
	}
}

func TestResolveEnabledTattoysHonoursConfigDefaults(t *testing.T) {
	cfg := config.Default()
	enabled := resolveEnabledTattoys(cfg, nil)

	if !enabled["startup_logo"] {
		t.Error("expected startup_logo enabled by default")
	}
	if !enabled["notifications"] {
		t.Error("expected notifications enabled by default")
	}
	if enabled["minimap"] || enabled["shaders"] || enabled["animated_cursor"] || enabled["random_walker"] {
		t.Error("expected minimap/shaders/animated_cursor/random_walker disabled by default")
	}
}

func TestResolveEnabledTattoysForceEnablesViaUse(t *testing.T) {
	cfg := config.Default()
	enabled := resolveEnabledTattoys(cfg, []string{"random_walker", "minimap"})

	if !enabled["random_walker"] || !enabled["minimap"] {
		t.Errorf("expected --use to force-enable random_walker and minimap, got %+v", enabled)
	}
}

func TestApplyCLIOverrides(t *testing.T) {
	cfg := config.Default()
	cfg = applyCLIOverrides(cfg, cliArgs{disableIndicator: true, logLevel: "debug"})

	if cfg.ShowTattoyIndicator {
		t.Error("expected --disable-indicator to clear ShowTattoyIndicator")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected --log-level to override LogLevel, got %q", cfg.LogLevel)
	}
}

func TestResolveCommandPrefersExplicitFlag(t *testing.T) {
	name, args := resolveCommand(cliArgs{command: "/usr/bin/fish"})
	if name != "/usr/bin/fish" || args != nil {
		t.Errorf("expected explicit --command honoured verbatim, got %q %v", name, args)
	}
}

func TestResolveCommandFallsBackToShellEnv(t *testing.T) {
	t.Setenv("SHELL", "/opt/shells/zsh")
	name, args := resolveCommand(cliArgs{})
	if name != "/opt/shells/zsh" || args != nil {
		t.Errorf("expected $SHELL fallback, got %q %v", name, args)
	}
}
