package main

import "testing"

func TestNewRootCommandFlagDefaults(t *testing.T) {
	cmd := newRootCommand()

	mainConfig, err := cmd.Flags().GetString("main-config")
	if err != nil || mainConfig != defaultMainConfigFile {
		t.Errorf("expected main-config default %q, got %q (err %v)", defaultMainConfigFile, mainConfig, err)
	}

	disableIndicator, err := cmd.Flags().GetBool("disable-indicator")
	if err != nil || disableIndicator {
		t.Errorf("expected disable-indicator default false, got %v (err %v)", disableIndicator, err)
	}
}

func TestNewRootCommandParsesRepeatableUseFlag(t *testing.T) {
	cmd := newRootCommand()
	// ParseFlags rather than Execute, so RunE (which would start the whole
	// compositor) never runs.
	if err := cmd.ParseFlags([]string{"--use", "minimap", "--use", "shaders"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}

	use, err := cmd.Flags().GetStringArray("use")
	if err != nil {
		t.Fatalf("GetStringArray: %v", err)
	}
	if len(use) != 2 || use[0] != "minimap" || use[1] != "shaders" {
		t.Errorf("expected [minimap shaders], got %v", use)
	}
}
