package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"bigsmall-bot/internal/cfg"
	"bigsmall-bot/internal/ensemble"
	"bigsmall-bot/internal/feed"
	"bigsmall-bot/internal/metrics"
	"bigsmall-bot/internal/predict"
	"bigsmall-bot/internal/server"
	"bigsmall-bot/internal/tracker"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}
}

func main() {
	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	setupLogging(c.LogLevel)

	m := metrics.New()

	client := feed.NewClient(feed.Options{
		URL:       c.FeedURL,
		Timeout:   c.FeedTimeout,
		Attempts:  c.FeedAttempts,
		Backoff:   c.FeedBackoff,
		RateLimit: c.FeedRateLimit,
		UserAgent: c.FeedUserAgent,
	})
	client.SetMetrics(m)

	agg := ensemble.New()
	agg.SetMetrics(m)

	tr := tracker.New()

	svc := predict.New(client, agg, tr)
	svc.SetMetrics(m)

	srv := server.New(c.ListenAddr(), svc)
	srv.SetMetrics(m)

	log.Info().
		Str("addr", c.ListenAddr()).
		Str("feed_url", c.FeedURL).
		Msg("predictor starting")

	startServer(srv)
	waitForShutdown(srv)
}

// setupLogging configures the global logger from the configured level.
func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)
}

// startServer runs the HTTP server in the background.
func startServer(srv *server.Server) {
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()
}

// waitForShutdown blocks until a shutdown signal arrives, then stops
// the server within a bounded grace period.
func waitForShutdown(srv *server.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Stop(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return
	}
	log.Info().Msg("server stopped")
}
