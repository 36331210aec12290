package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tattoy.toml")
	if err := os.WriteFile(path, []byte("frame_rate = 30\n"), 0o644); err != nil {
		t.Fatalf("unexpected error writing fixture: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan Snapshot, 1)
	go func() {
		_ = Watch(ctx, dir, "tattoy.toml", func(s Snapshot) {
			select {
			case reloaded <- s:
			default:
			}
		})
	}()

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte("frame_rate = 45\n"), 0o644); err != nil {
		t.Fatalf("unexpected error rewriting fixture: %v", err)
	}

	select {
	case s := <-reloaded:
		if s.FrameRate != 45 {
			t.Errorf("expected reloaded frame rate 45, got %d", s.FrameRate)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}
