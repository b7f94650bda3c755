package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elevacare/podsite/internal/config"
	"github.com/elevacare/podsite/internal/database"
	"github.com/elevacare/podsite/internal/feed"
	"github.com/elevacare/podsite/internal/server"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

func main() {
	logger := newLogger()
	cfg := config.Load()

	db, err := database.New(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open snapshot store")
	}
	defer db.Close()

	feeds := feed.NewService(cfg.FeedURL, cfg.CacheTTL, &http.Client{Timeout: cfg.HTTPTimeout}, db, logger)

	srv, err := server.New(cfg, feeds, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("build server")
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Addr).Str("feed_url", cfg.FeedURL).Msg("server starting")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
}

func newLogger() zerolog.Logger {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
