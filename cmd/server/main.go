package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/contesthub/internal/aggregator"
	"github.com/contesthub/internal/cache"
	"github.com/contesthub/internal/config"
	"github.com/contesthub/internal/models"
	"github.com/contesthub/internal/schedule"
	"github.com/contesthub/internal/server"
	"github.com/contesthub/internal/source"
	"github.com/contesthub/internal/source/kontests"
	"github.com/contesthub/pkg/logger"
	"github.com/contesthub/pkg/ratelimit"
)

var (
	cfgFile string
	cfg     *config.Config
	log     *logger.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "contesthub-server",
		Short: "Contest aggregation HTTP service",
		Long: `Serves an aggregated view of upcoming competitive programming
contests, fetched live from the supported platforms and merged with
projected recurring contests.`,
		RunE: runServer,
	}

	rootCmd.Flags().StringVar(&cfgFile, "config", "", "config file path")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	var err error

	// Load config
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Initialize logger
	log = logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})

	log.Info().Msg("Starting contest aggregation service")

	// Initialize rate limiter, keyed by the canonical platform names
	// the sources wait on
	limiter := ratelimit.NewPlatformLimiter(models.NormalizePlatformKeys(cfg.Fetcher.Platforms))

	// Initialize contest sources
	sourceManager := source.NewManager()
	for _, src := range kontests.NewMultiple(cfg.Fetcher, limiter, log) {
		sourceManager.Register(src)
	}
	log.Info().Int("sources", len(sourceManager.GetSources())).Msg("Contest sources registered")

	// Recurring schedule projector over the compiled-in table
	projector := schedule.NewProjector(schedule.DefaultTable())

	// Aggregator and cache
	agg := aggregator.NewService(sourceManager, projector, log)
	contestCache := cache.New(
		time.Duration(cfg.Cache.TTLSeconds)*time.Second,
		agg.Aggregate,
		log,
	)

	// HTTP server
	handler := server.NewHandler(
		contestCache,
		projector.Table(),
		time.Duration(cfg.Cache.StaleWhileRevalidateSeconds)*time.Second,
		log,
	)
	router := server.NewRouter(cfg.Server, handler, log)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Background cache warmer: a read past the TTL refreshes, so the
	// first caller after a quiet period never pays the fetch latency
	c := cron.New(cron.WithLogger(cronLogger{log}))
	_, err = c.AddFunc(cfg.Scheduler.RefreshCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		res, err := contestCache.Get(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Scheduled cache refresh failed")
			return
		}
		log.Debug().
			Int("count", len(res.Contests)).
			Bool("cached", res.Cached).
			Msg("Scheduled cache refresh completed")
	})
	if err != nil {
		return fmt.Errorf("failed to schedule cache refresh: %w", err)
	}
	c.Start()
	log.Info().Str("cron", cfg.Scheduler.RefreshCron).Msg("Cache refresh job scheduled")

	// Start HTTP server
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("Shutting down")
	c.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}

// cronLogger adapts our logger for cron
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Info().Msgf(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Msgf(msg, keysAndValues...)
}
