package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/cryptoedu/presale-server/internal/config"
	"github.com/cryptoedu/presale-server/pkg/presaleapp"
)

func main() {
	cfgPath := flag.String("config", "", "path to YAML config file (optional, env vars apply on top)")
	flag.Parse()

	// Missing .env is fine; environment variables win either way.
	_ = godotenv.Load()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		os.Stderr.WriteString("load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := presaleapp.NewApp(ctx, cfg)
	if err != nil {
		os.Stderr.WriteString("init app: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := app.Logger()

	app.Start(ctx)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
		IdleTimeout:  cfg.Server.IdleTimeout.Duration,
		Handler:      app.Handler(),
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("address", cfg.Server.Address).
			Str("network", cfg.Solana.Network).
			Msg("presale server listening")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server exited")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}
	if err := app.Close(); err != nil {
		log.Error().Err(err).Msg("resource cleanup")
	}
	log.Info().Msg("presale server stopped")
}
