package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"alice-hq/hassil-parser/pkg/cli"
	"alice-hq/hassil-parser/pkg/server"
	"alice-hq/hassil-parser/pkg/source"
	"alice-hq/hassil-parser/pkg/syncer"
	"alice-hq/hassil-parser/pkg/telemetry/health"
	"alice-hq/hassil-parser/pkg/telemetry/tracing"

	"github.com/spf13/cobra"
)

var serveFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the template service",
	Long: `Start the HTTP service with the specified configuration.

The service exposes on-demand syncs, the stored templates, health and metrics.
Syncs also run on the configured cron schedule, once at startup when
sync.on_start is set, and whenever the inbox changes when source.watch is set.

Examples:
  # Start with default config
  hassil-parser serve

  # Start with custom config
  hassil-parser serve --config /etc/hassil-parser/config.yaml

  # Override listen address
  hassil-parser serve --listen 0.0.0.0:8080

  # Validate config without starting the server
  hassil-parser serve --dry-run`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = serveFlags.logLevel
	}

	logger, err := setupLogger(cfg, false)
	if err != nil {
		return err
	}

	if serveFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid")
		return nil
	}

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return cli.NewConfigError("telemetry.tracing", err.Error())
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	p, err := newPipeline(cfg, logger, false)
	if err != nil {
		return cli.NewRuntimeError("serve", err)
	}
	defer p.Close()

	checker := health.New(0)
	checker.RegisterCheck("inbox", health.DirCheck(cfg.Source.InboxPath))

	deps := server.Deps{
		Syncer:    p.syncer,
		Templates: p.store,
		Health:    checker,
		Version:   versionInfo(),
		Logger:    logger,
	}
	if cfg.Telemetry.Metrics.Enabled {
		deps.Metrics = p.collector.Handler()
		deps.MetricsPath = cfg.Telemetry.Metrics.Path
	}
	if p.hub != nil {
		deps.Events = p.hub
	}

	scheduler := syncer.NewScheduler(p.syncer, cfg.Sync.Schedule, logger)
	if err := scheduler.Start(ctx); err != nil {
		return cli.NewConfigError("sync.schedule", err.Error())
	}
	defer scheduler.Stop()

	if cfg.Sync.OnStart {
		go runStartupSync(ctx, p.syncer, logger)
	}

	if cfg.Source.Watch {
		if err := startWatcher(ctx, cfg.Source.InboxPath, cfg.Source.WatchDebounce, p.syncer, logger); err != nil {
			return cli.NewRuntimeError("serve", err)
		}
	}

	srv := server.NewServer(&cfg.Server, deps)
	logger.Info("hassil-parser starting",
		"version", Version,
		"address", cfg.Server.ListenAddress,
		"source", cfg.Source.Mode,
		"storage", cfg.Storage.Backend,
		"events", cfg.Events.Enabled,
		"external_engine", cfg.Expansion.ExternalEngine,
	)

	if err := srv.Start(ctx); err != nil {
		return cli.NewRuntimeError("serve", err)
	}
	logger.Info("hassil-parser stopped")
	return nil
}

func runStartupSync(ctx context.Context, s *syncer.Syncer, logger *slog.Logger) {
	if _, err := s.Run(ctx); err != nil {
		logger.Error("startup sync failed", "error", err)
	}
}

// startWatcher re-syncs whenever documents in the inbox change. The
// watcher stops with ctx.
func startWatcher(ctx context.Context, dir string, debounce time.Duration, s *syncer.Syncer, logger *slog.Logger) error {
	w, err := source.NewInboxWatcher(dir, debounce, logger)
	if err != nil {
		return fmt.Errorf("watch inbox: %w", err)
	}

	go func() {
		err := w.Watch(ctx, func(ctx context.Context) error {
			_, err := s.Run(ctx)
			return err
		})
		if err != nil {
			logger.Error("inbox watcher stopped", "error", err)
		}
	}()
	return nil
}
