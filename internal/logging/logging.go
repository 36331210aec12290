// Package logging builds the module-wide zap logger, translating the
// teacher's bracketed log-level convention (log.Printf("[ERROR] ..."),
// log.Printf("[DEBUG] ...")) onto zap's leveled API (SPEC_FULL.md §B
// "Logging").
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a *zap.SugaredLogger writing to logPath (stderr if empty) at
// the given level, matching --log-path/--log-level (or the config file's
// log_path/log_level, spec §6). The returned close func flushes and, for a
// file destination, closes it; callers should defer it.
func New(logPath, level string) (logger *zap.SugaredLogger, closeFn func() error, err error) {
	zapLevel, err := parseLevel(level)
	if err != nil {
		return nil, nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "time"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.LevelKey = "level"
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	writer, closeFile, err := openLogWriter(logPath)
	if err != nil {
		return nil, nil, err
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), writer, zapLevel)
	base := zap.New(core)

	closeFn = func() error {
		_ = base.Sync()
		if closeFile != nil {
			return closeFile()
		}
		return nil
	}

	return base.Sugar(), closeFn, nil
}

func openLogWriter(logPath string) (zapcore.WriteSyncer, func() error, error) {
	if logPath == "" {
		return zapcore.AddSync(os.Stderr), nil, nil
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file %s: %w", logPath, err)
	}
	return zapcore.AddSync(f), f.Close, nil
}

// parseLevel maps the config/CLI level strings (matching the original's
// tracing levels: trace, debug, info, warn, error) onto a zapcore.Level.
// zap has no "trace" level; it collapses onto Debug, the closest match.
func parseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "trace", "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return 0, fmt.Errorf("logging: unrecognized log level %q", level)
	}
}
