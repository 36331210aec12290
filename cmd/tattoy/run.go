package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/tattoy-go/tattoy/internal/logging"
	"github.com/tattoy-go/tattoy/pkg/config"
	"github.com/tattoy-go/tattoy/pkg/input"
	"github.com/tattoy-go/tattoy/pkg/protocol"
	"github.com/tattoy-go/tattoy/pkg/renderer"
	"github.com/tattoy-go/tattoy/pkg/shadowterm"
	"github.com/tattoy-go/tattoy/pkg/state"
)

// defaultTTYWidth/Height are used only when the real terminal's size can't
// be read (e.g. stdout isn't a tty); the renderer and shadow terminal both
// correct themselves on the first real resize event.
const (
	defaultTTYWidth  = 80
	defaultTTYHeight = 24
)

// run wires every subsystem together and blocks until shutdown (spec §5
// "Concurrency & Resource Model", §6 "External Interfaces").
func run(ctx context.Context, args cliArgs) error {
	configDir := args.configDir
	if configDir == "" {
		configDir = config.DefaultDirectory()
	}

	cfg, err := config.Load(configDir, args.mainConfig)
	if err != nil {
		return err
	}
	cfg = applyCLIOverrides(cfg, args)

	logPath := args.logPath
	if logPath == "" {
		logPath = cfg.LogPath
	}
	logLevel := args.logLevel
	if logLevel == "" {
		logLevel = cfg.LogLevel
	}
	logger, closeLogger, err := logging.New(logPath, logLevel)
	if err != nil {
		return err
	}
	defer closeLogger()

	if args.capturePalette {
		return runCapturePalette(ctx, configDir)
	}
	if args.parsePalette != "" {
		return runParsePalette(args.parsePalette, configDir)
	}

	width, height := defaultTTYWidth, defaultTTYHeight
	if w, h, sizeErr := term.GetSize(int(os.Stdout.Fd())); sizeErr == nil && w > 0 && h > 0 {
		width, height = w, h
	}

	broadcaster := protocol.NewBroadcaster()
	st := state.New(configDir, cfg, width, height, broadcaster)

	pal := resolvePalette(ctx, configDir, logger)
	st.SetDefaultBackground(pal.BackgroundColour())

	frames := protocol.NewFrameChannel()

	shadow := shadowterm.New(width, height)
	commandName, commandArgs := resolveCommand(args)
	if err := shadow.Start(commandName, commandArgs, os.Environ()); err != nil {
		return err
	}

	rend, err := renderer.New(st, true)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var shutdownOnce sync.Once
	triggerShutdown := func() {
		shutdownOnce.Do(func() {
			broadcaster.Publish(protocol.NewEnd())
		})
	}

	go watchForEnd(runCtx, broadcaster, cancel)
	go watchSignals(runCtx, triggerShutdown)
	go watchConfigReload(runCtx, configDir, args.mainConfig, st, broadcaster, logger)

	enabled := resolveEnabledTattoys(cfg, args.enabledTattoys)
	producers := buildProducers(st, frames, cfg, enabled, pal, logger)

	var wg sync.WaitGroup
	for _, p := range producers {
		wg.Add(1)
		go func(p producer) {
			defer wg.Done()
			p.run(runCtx)
		}(p)
	}

	for _, p := range producers {
		if waitErr := st.WaitForSystem(runCtx, p.name); waitErr != nil {
			break
		}
	}

	shadow.Run()

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer triggerShutdown()
		pumpShadowOutput(runCtx, st, shadow, frames)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer triggerShutdown()
		if renderErr := rend.Run(runCtx, frames); renderErr != nil {
			logger.Warnw("renderer exited with an error", "error", renderErr)
		}
	}()

	// The input reader is deliberately not tracked by wg: its blocking
	// os.Stdin.Read doesn't observe ctx cancellation between reads, so it
	// is left to die with the process on exit rather than held up on.
	go func() {
		if readErr := input.New(st, shadow).Run(runCtx); readErr != nil {
			logger.Debugw("input reader exited", "error", readErr)
		}
	}()

	wg.Wait()
	_ = shadow.Close()
	return nil
}

// resolveCommand picks the executable to start Tattoy with: --command if
// given, else the $SHELL environment variable, else /bin/sh
// (spec §6 "--command <command> — the command to start Tattoy with
// (default $SHELL)").
func resolveCommand(args cliArgs) (string, []string) {
	if args.command != "" {
		return args.command, nil
	}
	if shell := os.Getenv("SHELL"); shell != "" {
		return shell, nil
	}
	return "/bin/sh", nil
}

// applyCLIOverrides folds the subset of CLI flags that shadow a config
// field onto the loaded snapshot.
func applyCLIOverrides(cfg config.Snapshot, args cliArgs) config.Snapshot {
	if args.disableIndicator {
		cfg.ShowTattoyIndicator = false
	}
	if args.logPath != "" {
		cfg.LogPath = args.logPath
	}
	if args.logLevel != "" {
		cfg.LogLevel = args.logLevel
	}
	return cfg
}

// watchForEnd translates a broadcast Protocol::End into ctx cancellation,
// so every task driven off runCtx (the renderer, every producer, the
// shadow-output pump) unwinds together regardless of which one actually
// published it (spec §7 "Only the shadow terminal dying, or renderer I/O
// dying, trigger global shutdown by broadcasting Protocol::End").
func watchForEnd(ctx context.Context, broadcaster *protocol.Broadcaster, cancel context.CancelFunc) {
	msgs, unsubscribe := broadcaster.Subscribe()
	defer unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok || msg.Kind == protocol.KindEnd {
				cancel()
				return
			}
		}
	}
}

// watchSignals turns SIGINT/SIGTERM into the same shutdown path a
// Protocol::End broadcast takes.
func watchSignals(ctx context.Context, triggerShutdown func()) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	select {
	case <-ctx.Done():
	case <-sigs:
		triggerShutdown()
	}
}

// watchConfigReload re-applies tattoy.toml whenever it changes on disk,
// pushing the new snapshot into shared state and broadcasting it so every
// tattoy picks up its new frame rate, opacity and other config-derived
// settings (spec §6 "Config files... reload on change").
func watchConfigReload(ctx context.Context, configDir, mainConfig string, st *state.SharedState, broadcaster *protocol.Broadcaster, logger *zap.SugaredLogger) {
	err := config.Watch(ctx, configDir, mainConfig, func(snapshot config.Snapshot) {
		st.SetConfig(snapshot)
		broadcaster.Publish(protocol.NewConfig(snapshot))
	})
	if err != nil {
		logger.Warnw("config watcher stopped", "error", err)
	}
}
