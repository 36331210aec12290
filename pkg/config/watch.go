package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the config whenever mainConfigFile changes under dir,
// calling onReload with the freshly parsed snapshot. It runs until ctx is
// canceled or the watcher errors unrecoverably.
//
// Editors often replace a file instead of writing it in place (which
// arrives as a Create event, not a Write), so both Write and Create are treated as
// reload triggers, debounced briefly to coalesce the burst of events a
// single save can produce.
func Watch(ctx context.Context, dir, mainConfigFile string, onReload func(Snapshot)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching config directory %s: %w", dir, err)
	}

	target := filepath.Join(dir, mainConfigFile)
	const debounce = 200 * time.Millisecond
	var timer *time.Timer

	reload := func() {
		snapshot, err := Load(dir, mainConfigFile)
		if err != nil {
			return
		}
		onReload(snapshot)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, reload)

		case _, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
		}
	}
}
