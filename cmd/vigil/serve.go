package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"vigil-hq/vigil/pkg/audit"
	"vigil-hq/vigil/pkg/cli"
	"vigil-hq/vigil/pkg/config"
	"vigil-hq/vigil/pkg/property/manager"
	"vigil-hq/vigil/pkg/telemetry/health"
	"vigil-hq/vigil/pkg/telemetry/logging"
	"vigil-hq/vigil/pkg/telemetry/metrics"
)

var serveFlags struct {
	source   string
	logLevel string
	dryRun   bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the vigil daemon",
	Long: `Start the vigil daemon with the specified configuration.

The daemon loads property documents from the configured source,
re-validates them whenever the source changes, and serves Prometheus
metrics and health probes.

Examples:
  # Start with default config
  vigil serve

  # Start with custom config
  vigil serve --config /etc/vigil/config.yaml

  # Override the property source
  vigil serve --source ./props

  # Validate config without starting
  vigil serve --dry-run`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.source, "source", "s", "", "override property source path")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without starting")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	// Apply flag overrides
	if serveFlags.source != "" {
		cfg.Properties.Source = serveFlags.source
	}
	if serveFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = serveFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(cfg.Telemetry.Logging, os.Stderr)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	if serveFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Vigil v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)

	// Audit trail
	var store audit.Store
	if cfg.Audit.Enabled {
		if cfg.Audit.Path != "" {
			store, err = audit.NewSQLiteStore(audit.SQLiteConfig{Path: cfg.Audit.Path}, logger)
			if err != nil {
				return cli.NewCommandError("serve", err)
			}
		} else {
			store = audit.NewMemoryStore()
		}
		defer store.Close()
		fmt.Println("✓ Audit store initialized")
	}

	// Metrics
	collector := metrics.NewCollector(nil, nil)

	// Property manager
	managerConfig := manager.DefaultConfig()
	managerConfig.Source = cfg.Properties.Source
	managerConfig.RescanSchedule = cfg.Properties.RescanSchedule
	managerConfig.DebounceInterval = cfg.Properties.DebounceInterval
	managerConfig.MaxFileSize = cfg.Properties.MaxFileSize
	managerConfig.Extensions = cfg.Properties.Extensions

	m, err := manager.New(managerConfig, nil, collector, logger)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}
	defer m.Close()
	if store != nil {
		m.SetAuditStore(store)
	}

	if err := m.Load(); err != nil {
		return cli.NewCommandError("serve", err)
	}
	fmt.Printf("✓ Properties loaded (%d properties, version %s)\n", len(m.Properties()), m.Version())

	ctx := cli.SetupSignalHandler()

	if store != nil && cfg.Audit.Retention > 0 {
		pruned, err := store.Prune(ctx, time.Now().Add(-cfg.Audit.Retention))
		if err != nil {
			logger.Warn("audit prune failed", "error", err)
		} else if pruned > 0 {
			logger.Info("audit records pruned", "count", pruned)
		}
	}

	// Telemetry HTTP server
	var srv *http.Server
	if cfg.Telemetry.Metrics.Enabled {
		checker := health.New(0)
		checker.Register("properties", func(ctx context.Context) error {
			if m.Version() == "" {
				return fmt.Errorf("no property set loaded")
			}
			return nil
		})
		if store != nil {
			checker.Register("audit", func(ctx context.Context) error {
				_, err := store.Recent(ctx, 1)
				return err
			})
		}

		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		health.Mount(mux, checker, Version, GitCommit, BuildDate)

		srv = &http.Server{
			Addr:    cfg.Telemetry.Metrics.ListenAddress,
			Handler: mux,
		}
		go func() {
			logger.Info("telemetry server listening", "address", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("telemetry server failed", "error", err)
			}
		}()
		fmt.Printf("✓ Metrics endpoint: http://%s/metrics\n", cfg.Telemetry.Metrics.ListenAddress)
	}

	fmt.Println("\nPress Ctrl+C to stop")

	watchErr := m.Watch(ctx)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry server shutdown failed", "error", err)
		}
	}

	if watchErr != nil && ctx.Err() == nil {
		return cli.NewCommandError("serve", watchErr)
	}
	fmt.Println("✓ Daemon stopped")
	return nil
}
