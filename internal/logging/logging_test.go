package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesToLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tattoy.log")

	logger, closeFn, err := New(path, "debug")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Infow("startup", "frame_rate", 30)
	if err := closeFn(); err != nil {
		t.Fatalf("closeFn: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "startup") {
		t.Errorf("expected log line written to file, got %q", data)
	}
}

func TestNewDefaultsToStderrWhenPathEmpty(t *testing.T) {
	logger, closeFn, err := New("", "info")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer closeFn()
	logger.Infow("no panic expected")
}

func TestParseLevelRejectsUnknown(t *testing.T) {
	if _, _, err := New("", "not-a-level"); err == nil {
		t.Error("expected an error for an unrecognized log level")
	}
}

func TestParseLevelMapsTraceToDebug(t *testing.T) {
	level, err := parseLevel("trace")
	if err != nil {
		t.Fatalf("parseLevel: %v", err)
	}
	if level.String() != "debug" {
		t.Errorf("expected trace to map to debug, got %v", level)
	}
}
