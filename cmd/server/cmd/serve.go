package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dreamtoapp/smartcrowds-server/internal/api"
	"github.com/dreamtoapp/smartcrowds-server/internal/config"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/content"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/events"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/locale"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/lookups"
	"github.com/dreamtoapp/smartcrowds-server/internal/feeds"
	"github.com/dreamtoapp/smartcrowds-server/internal/metrics"
	"github.com/dreamtoapp/smartcrowds-server/internal/storage/postgres"
	"github.com/dreamtoapp/smartcrowds-server/internal/telemetry"
)

var (
	// Server flags (override config/env)
	serverHost string
	serverPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SmartCrowds HTTP server",
	Long: `Start the SmartCrowds HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables
- Connect to PostgreSQL and start the metrics collector
- Serve the public catalog, admin surface, sitemap and RSS feeds
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with default configuration (from env vars)
  server serve

  # Start on a specific host and port
  server serve --host 127.0.0.1 --port 9090

  # Start with debug logging
  server serve --log-level debug`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 8080)")
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Msg("starting SmartCrowds server")

	metrics.Init(Version, GitCommit, BuildDate)

	if cfg.Tracing.Enabled {
		shutdownTracing, err := telemetry.InitTracing(context.Background(), cfg.Tracing, Version)
		if err != nil {
			return fmt.Errorf("tracing init failed: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(ctx); err != nil {
				logger.Error().Err(err).Msg("tracing shutdown error")
			}
		}()
		logger.Info().Str("exporter", cfg.Tracing.Exporter).Msg("tracing initialized")
	}

	poolCtx, poolCancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := newPool(poolCtx, cfg.Database)
	poolCancel()
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	// Collect pool gauges every 15 seconds.
	dbCollector := metrics.NewDBCollector(pool)
	collectorCtx, collectorCancel := context.WithCancel(context.Background())
	go dbCollector.Start(collectorCtx, 15*time.Second)
	defer collectorCancel()
	defer dbCollector.Stop()

	deps, err := buildDependencies(cfg, pool)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(cfg, logger, deps),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	return gracefulShutdown(server, logger)
}

func buildDependencies(cfg config.Config, pool *pgxpool.Pool) (api.Dependencies, error) {
	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return api.Dependencies{}, err
	}

	eventsService := events.NewService(repo.Events())
	registrationService := events.NewRegistrationService(repo.Events())
	lookupsService := lookups.NewService(repo.Lookups())
	contentService := content.NewService(repo.Content())

	siteLocales := make([]locale.Locale, 0, len(cfg.Site.Locales))
	for _, l := range cfg.Site.Locales {
		siteLocales = append(siteLocales, locale.Parse(l, locale.Arabic))
	}
	feedsService := feeds.NewService(eventsService, contentService, feeds.Config{
		BaseURL:  cfg.Server.BaseURL,
		Locales:  siteLocales,
		RSSLimit: cfg.Site.RSSLimit,
	})

	return api.Dependencies{
		Pool:          pool,
		Events:        eventsService,
		Registrations: registrationService,
		Lookups:       lookupsService,
		Content:       contentService,
		Feeds:         feedsService,
	}, nil
}

func newPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConnections > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConnections)
	}
	if cfg.MaxIdle > 0 {
		poolConfig.MinConns = int32(cfg.MaxIdle)
	}
	return pgxpool.NewWithConfig(ctx, poolConfig)
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	if configPath != "" {
		if err := config.ApplyFile(&cfg, configPath); err != nil {
			return config.Config{}, err
		}
	}

	// Override logging from flags if provided
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	return cfg, nil
}

func gracefulShutdown(server *http.Server, logger zerolog.Logger) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info().Str("signal", sig.String()).Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}
