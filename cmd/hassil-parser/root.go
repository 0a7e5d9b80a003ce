package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"alice-hq/hassil-parser/pkg/cli"
	"alice-hq/hassil-parser/pkg/config"
	"alice-hq/hassil-parser/pkg/telemetry/logging"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "hassil-parser",
	Short: "hassil-parser - intent template expansion service",
	Long: `hassil-parser expands Home Assistant intent sentence templates into
concrete patterns for the Alice voice assistant.

Templates such as "schalte [das] Licht (an|ein)" are expanded by resolving
<rule> references, alternation groups and optional spans. {slot} placeholders
are kept. The results are stored per (domain, intent, language) and a
templates_updated event is published after every sync.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the code of the returned
// error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the configuration file with environment overrides. A
// missing default config file is not an error: defaults and environment
// variables are used instead.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := cfgFile
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		path = ""
	}

	if err := config.Initialize(path); err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	return cfg, nil
}

// setupLogger installs the process logger. Commands that print results to
// stdout log to stderr.
func setupLogger(cfg *config.Config, toStderr bool) (*slog.Logger, error) {
	if !toStderr {
		logger, err := logging.Setup(cfg.Telemetry.Logging)
		if err != nil {
			return nil, cli.NewConfigError("telemetry.logging", err.Error())
		}
		return logger, nil
	}

	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, os.Stderr))
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)
	return logger, nil
}
