package main

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"go.uber.org/zap"

	"github.com/tattoy-go/tattoy/pkg/palette"
)

// paletteFileName matches the persisted state named in spec §6 ("Persisted
// state: palette.toml").
const paletteFileName = "palette.toml"

// resolvePalette loads a previously-saved palette.toml, falling back to an
// OSC query of the real terminal, falling back to the bundled default with
// a logged warning (spec §9 "OSC parser times out after 1s... falls back
// to default palette with a user warning").
func resolvePalette(ctx context.Context, configDir string, logger *zap.SugaredLogger) *palette.Palette {
	if saved, err := palette.Load(configDir, paletteFileName); err != nil {
		logger.Warnw("failed to load saved palette", "error", err)
	} else if saved != nil {
		return saved
	}

	queried, err := palette.Query(ctx)
	if err == nil {
		if saveErr := palette.Save(configDir, paletteFileName, queried); saveErr != nil {
			logger.Warnw("failed to persist queried palette", "error", saveErr)
		}
		return queried
	}

	logger.Warnw("palette query failed, falling back to the bundled default", "error", err)
	return palette.NewDefault()
}

// runCapturePalette implements --capture-palette: query the real terminal's
// palette over OSC and persist it, then exit (spec §6 "--capture-palette").
func runCapturePalette(ctx context.Context, configDir string) error {
	queried, err := palette.Query(ctx)
	if err != nil {
		return fmt.Errorf("capturing palette: %w", err)
	}
	if err := palette.Save(configDir, paletteFileName, queried); err != nil {
		return fmt.Errorf("saving captured palette: %w", err)
	}
	return nil
}

// runParsePalette implements --parse-palette: decode a screenshot of the
// terminal's palette swatches and persist the extracted colours, then exit
// (spec §6 "--parse-palette <path>").
func runParsePalette(path, configDir string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening palette screenshot %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decoding palette screenshot %s: %w", path, err)
	}

	parsed, err := palette.ParseScreenshot(img)
	if err != nil {
		return fmt.Errorf("parsing palette screenshot: %w", err)
	}

	if err := palette.Save(configDir, paletteFileName, parsed); err != nil {
		return fmt.Errorf("saving parsed palette: %w", err)
	}
	return nil
}
