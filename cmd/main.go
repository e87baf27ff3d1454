package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Mahaveer86619/trailstory-go/internal/config"
	"github.com/Mahaveer86619/trailstory-go/internal/devapi"
	"github.com/Mahaveer86619/trailstory-go/internal/logger"
)

// Runs the local stand-in TrailStory API so the client and frontends can be
// developed without the real backend.
func main() {
	cfg, err := config.Load()
	if err != nil {
		l := logger.New("info")
		l.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.New(cfg.LogLevel)

	api := devapi.New(devapi.Config{
		JWTSecret:  []byte(cfg.DevAPIJWTSecret),
		TokenTTL:   cfg.DevAPITokenTTL,
		RefreshTTL: cfg.DevAPIRefreshTTL,
	}, logger.Component(log, "devapi"))

	srv := &http.Server{
		Addr:         cfg.DevAPIAddr,
		Handler:      api.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", cfg.DevAPIAddr).Msg("TrailStory dev API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
