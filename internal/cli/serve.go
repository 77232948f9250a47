package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sluice-go/sluice/internal/config"
	"github.com/sluice-go/sluice/internal/metrics"
	"github.com/sluice-go/sluice/internal/recorder"
	"github.com/sluice-go/sluice/internal/server"
	"github.com/sluice-go/sluice/internal/stats"
)

func newServeCmd() *cobra.Command {
	var (
		addr       string
		configPath string
		recordFile string
		watch      bool
		initConfig bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the sluice HTTP gateway",
		Long: `Starts an HTTP server that funnels a gated work endpoint through the
configured sliding-window limits.

Endpoints:
  GET  /                 Service info and active limits
  GET  /health           Health check
  POST /api/perform      The gated work endpoint
  GET  /api/limits       Currently enforced limits
  PUT  /api/limits       Replace the enforced limit set
  GET  /api/stats        Admission counters
  GET  /metrics          Prometheus metrics
  GET  /dashboard        Live visual dashboard
  WS   /ws               WebSocket for real-time admission events`,
		Example: `  sluice serve
  sluice serve --config sluice.yaml --watch
  sluice serve --addr :9090 --record admissions.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if initConfig {
				if configPath == "" {
					configPath = "sluice.yaml"
				}
				if err := config.WriteExample(configPath); err != nil {
					return err
				}
				fmt.Printf("wrote example config to %s\n", configPath)
				return nil
			}

			logger, err := zap.NewProduction()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			cfg := config.Default()
			if configPath != "" {
				cfg, err = config.LoadFile(configPath)
				if err != nil {
					return err
				}
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			limits, err := cfg.BuildLimits()
			if err != nil {
				return err
			}

			store, closeStore, err := buildStatsStore(cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			opts := server.Options{
				Logger:  logger,
				Stats:   store,
				Hub:     server.NewHub(logger),
				Metrics: metrics.New(prometheus.DefaultRegisterer),
			}
			if recordFile != "" {
				opts.Recorder = recorder.New(nil)
			}

			srv, err := server.New(cfg.Server.Addr, limits, opts)
			if err != nil {
				return err
			}

			logger.Info("dashboard available",
				zap.String("url", fmt.Sprintf("http://localhost%s/dashboard", cfg.Server.Addr)))

			// Graceful shutdown on SIGINT/SIGTERM.
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if watch && configPath != "" {
				w := config.NewWatcher(configPath, logger)
				go func() {
					err := w.Watch(ctx, func(next config.Config) {
						limits, err := next.BuildLimits()
						if err != nil {
							logger.Error("ignoring reloaded config", zap.Error(err))
							return
						}
						srv.ApplyLimits(limits)
					})
					if err != nil {
						logger.Error("config watcher stopped", zap.Error(err))
					}
				}()
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				logger.Info("shutting down")
				if recordFile != "" && opts.Recorder != nil {
					logger.Info("exporting admission records",
						zap.Int("count", opts.Recorder.Len()),
						zap.String("path", recordFile))
					if err := opts.Recorder.ExportFile(recordFile); err != nil {
						logger.Error("export failed", zap.Error(err))
					}
				}
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "address to listen on (overrides config)")
	cmd.Flags().StringVar(&configPath, "config", "", "path to YAML config file")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload limits when the config file changes")
	cmd.Flags().StringVar(&recordFile, "record", "", "record admission events to JSON file (exported on shutdown)")
	cmd.Flags().BoolVar(&initConfig, "init", false, "write an example config file and exit")

	return cmd
}

// buildStatsStore picks the redis-backed store when the config asks for
// it, falling back to in-memory counters otherwise.
func buildStatsStore(cfg config.Config, logger *zap.Logger) (stats.Store, func(), error) {
	rc, ok := cfg.StatsRedisConfig()
	if !ok {
		return stats.NewMemoryStore(), func() {}, nil
	}

	store, err := stats.NewRedisStore(rc)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting stats store: %w", err)
	}
	logger.Info("using redis stats store", zap.String("addr", rc.Addr))
	return store, func() { _ = store.Close() }, nil
}
