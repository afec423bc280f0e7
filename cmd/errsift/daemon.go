// ABOUTME: Daemon command for running errsift as a service
// ABOUTME: Wires NATS intake, HTTP API, dedup, archive, and tracing

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sinugotshifhiwa4/errsift/internal/api"
	"github.com/sinugotshifhiwa4/errsift/internal/archive"
	"github.com/sinugotshifhiwa4/errsift/internal/config"
	"github.com/sinugotshifhiwa4/errsift/internal/dedupe"
	"github.com/sinugotshifhiwa4/errsift/internal/handler"
	"github.com/sinugotshifhiwa4/errsift/internal/observability"
	"github.com/sinugotshifhiwa4/errsift/internal/queue"
	"github.com/sinugotshifhiwa4/errsift/internal/sanitize"
)

func newDaemonCmd() *cobra.Command {
	var (
		dataDir  string
		natsURL  string
		httpAddr string
	)

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the error-processing daemon",
		Long: `Start the errsift daemon that accepts error reports via NATS and
HTTP, normalizes them through the full pipeline, and archives the
resulting records.

NATS, HTTP, and Redis are disabled unless configured. Flags override
the corresponding config file settings.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			// Flags override file settings.
			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			if natsURL != "" {
				cfg.NATS.URL = natsURL
			}
			if httpAddr != "" {
				cfg.HTTP.Addr = httpAddr
			}
			if cmd.Root().PersistentFlags().Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if cmd.Root().PersistentFlags().Changed("log-format") {
				cfg.Log.Format = logFormat
			}

			return runDaemon(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "", "data directory for the record archive")
	cmd.Flags().StringVar(&natsURL, "nats-url", "", "NATS server URL (enables NATS intake)")
	cmd.Flags().StringVar(&httpAddr, "http-addr", "", "HTTP listen address (enables the HTTP API)")

	return cmd
}

func runDaemon(ctx context.Context, cfg *config.Config) error {
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "errsift",
		Version:     version,
	}, os.Stdout)

	slog.SetDefault(logger)
	logger.Info("starting errsift daemon",
		slog.String("version", version),
		slog.String("data_dir", cfg.DataDir),
		slog.String("nats_url", cfg.NATS.URL),
		slog.String("http_addr", cfg.HTTP.Addr),
	)

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Tracing.
	tp, err := observability.NewTracerProvider(ctx, observability.TracingConfig{
		Enabled:       cfg.Tracing.Enabled,
		ServiceName:   "errsift",
		Version:       version,
		Endpoint:      cfg.Tracing.Endpoint,
		Insecure:      cfg.Tracing.Insecure,
		SamplingRatio: cfg.Tracing.SamplingRatio,
	})
	if err != nil {
		return fmt.Errorf("failed to create tracer provider: %w", err)
	}
	defer func() {
		shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutCancel()
		if err := tp.Shutdown(shutCtx); err != nil {
			logger.Warn("tracer shutdown failed", slog.Any("error", err))
		}
	}()

	// Sanitization policy.
	sanitizer := sanitize.NewDefault()
	sanitizer.Update(cfg.Sanitize.Overrides())

	// Deduplication, local cache plus optional shared Redis store.
	dedupOpts := []dedupe.Option{dedupe.WithLogger(logger)}
	if cfg.Redis.Addr != "" {
		store, err := dedupe.NewRedisStore(dedupe.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
			TTL:      cfg.Redis.TTL,
		})
		if err != nil {
			logger.Warn("redis dedup store unavailable, using local cache only",
				slog.String("addr", cfg.Redis.Addr),
				slog.Any("error", err),
			)
		} else {
			defer store.Close()
			dedupOpts = append(dedupOpts, dedupe.WithStore(store))
			logger.Info("shared dedup store connected", slog.String("addr", cfg.Redis.Addr))
		}
	}
	deduper := dedupe.New(cfg.Dedup.MaxEntries, dedupOpts...)

	metrics := observability.NewPipelineMetrics()

	// Record archive.
	handlerOpts := []handler.Option{
		handler.WithSanitizer(sanitizer),
		handler.WithDeduper(deduper),
		handler.WithMetrics(metrics),
		handler.WithSink(handler.NewSlogSink(logger)),
	}

	if len(cfg.Expectations) > 0 {
		reg := handler.NewExpectationRegistry()
		for errContext, statuses := range cfg.Expectations {
			reg.Expect(errContext, statuses...)
		}
		handlerOpts = append(handlerOpts, handler.WithTestContext(reg))
	}

	var arch *archive.Archive
	if cfg.Archive.Enabled {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
		arch, err = archive.New(archive.Config{
			Path: filepath.Join(cfg.DataDir, "archive"),
			TTL:  cfg.Archive.TTL,
		})
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer arch.Close()
		handlerOpts = append(handlerOpts, handler.WithArchive(arch))
		logger.Info("archive opened", slog.String("path", filepath.Join(cfg.DataDir, "archive")))
	}

	pipeline := handler.New(handlerOpts...)
	reports := queue.NewHandler(pipeline)

	// NATS intake.
	if cfg.NATS.URL != "" {
		natsCfg := queue.DefaultNATSConfig()
		natsCfg.URL = cfg.NATS.URL
		if cfg.NATS.Subject != "" {
			natsCfg.Subject = cfg.NATS.Subject
		}
		if cfg.NATS.Queue != "" {
			natsCfg.QueueGroup = cfg.NATS.Queue
		}

		nc, err := queue.NewClient(natsCfg, reports, logger)
		if err != nil {
			return fmt.Errorf("failed to create NATS client: %w", err)
		}
		if err := nc.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer nc.Close()

		if err := nc.Subscribe(ctx); err != nil {
			return fmt.Errorf("failed to subscribe: %w", err)
		}
		logger.Info("NATS intake ready",
			slog.String("subject", natsCfg.Subject),
			slog.String("queue_group", natsCfg.QueueGroup),
		)
	}

	// HTTP API.
	var srv *http.Server
	if cfg.HTTP.Addr != "" {
		mux := http.NewServeMux()
		api.NewHandler(api.HandlerConfig{
			Reports: reports,
			Archive: arch,
			Metrics: metrics,
		}).RegisterRoutes(mux)

		srv = &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           observability.CorrelationMiddleware(api.LoggingMiddleware(logger, mux)),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			logger.Info("HTTP API listening", slog.String("addr", cfg.HTTP.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP server failed", slog.Any("error", err))
				cancel()
			}
		}()
	}

	logger.Info("daemon ready, waiting for reports")
	<-ctx.Done()

	logger.Info("shutting down daemon")
	if srv != nil {
		shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutCancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			logger.Warn("HTTP shutdown failed", slog.Any("error", err))
		}
	}
	return nil
}
