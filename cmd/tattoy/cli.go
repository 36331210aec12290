package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// defaultMainConfigFile matches the original's DEFAULT_CONFIG_FILE_NAME.
const defaultMainConfigFile = "tattoy.toml"

// cliArgs mirrors cli_args.rs's CliArgs one field at a time (spec §6 "CLI
// surface").
type cliArgs struct {
	enabledTattoys   []string
	disableIndicator bool
	command          string
	capturePalette   bool
	parsePalette     string
	configDir        string
	mainConfig       string
	logPath          string
	logLevel         string
}

func newRootCommand() *cobra.Command {
	var args cliArgs

	cmd := &cobra.Command{
		Use:           "tattoy",
		Short:         "A terminal-in-a-terminal compositor",
		Long:          "Tattoy decorates a shell session with compositable overlays: a minimap, shaders, notifications and more.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(context.Background(), args)
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVar(&args.enabledTattoys, "use", nil,
		"force-enable a tattoy by name (repeatable): startup_logo, notifications, minimap, shaders, animated_cursor, bg_command, random_walker")
	flags.BoolVar(&args.disableIndicator, "disable-indicator", false, "disable the little blue indicator in the top-right of the terminal")
	flags.StringVar(&args.command, "command", "", "the command to start Tattoy with (default $SHELL)")
	flags.BoolVar(&args.capturePalette, "capture-palette", false, "capture the true colour values of the terminal's palette, then exit")
	flags.StringVar(&args.parsePalette, "parse-palette", "", "parse a screenshot of the terminal's palette into true colours, then exit")
	flags.StringVar(&args.configDir, "config-dir", "", "path to config file directory")
	flags.StringVar(&args.mainConfig, "main-config", defaultMainConfigFile, "override the default Tattoy config file")
	flags.StringVar(&args.logPath, "log-path", "", "path to log file, overrides the setting in config")
	flags.StringVar(&args.logLevel, "log-level", "", "verbosity of logs, overrides the setting in config")

	return cmd
}

// Execute runs the CLI and returns the process exit code (spec §6 "Exit
// codes: 0 on clean end; non-zero on unrecoverable error").
func Execute() int {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "tattoy:", err)
		return 1
	}
	return 0
}
