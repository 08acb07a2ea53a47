package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/riftcall/riftcall/internal/adapters/http"
	wsignal "github.com/riftcall/riftcall/internal/adapters/signal"
	"github.com/riftcall/riftcall/internal/app"
	"github.com/riftcall/riftcall/internal/config"
	"github.com/riftcall/riftcall/internal/core"
	"github.com/riftcall/riftcall/internal/provider"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	registry := core.NewPresenceRegistry()
	directory := core.NewChannelDirectory()
	tokens := provider.NewRTCTokenService(cfg.ProviderAppID, cfg.ProviderCertificate, cfg.TokenTTL)

	coord := &app.Coordinator{
		Registry:       registry,
		Directory:      directory,
		Tokens:         tokens,
		Notifier:       wsignal.NewPushNotifier(registry),
		ResolveTimeout: cfg.ResolveTimeout,
	}

	sweeper := app.NewSweeper(directory, cfg.SweepInterval, cfg.MaxChannelAge)
	if err := sweeper.Start(); err != nil {
		log.Error().Err(err).Msg("failed to start sweeper")
	}
	defer sweeper.Stop()

	r := router.SetupRouter(ctx, cfg, coord)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Riftcall coordinator started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
