package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/tbeaudouin05/stripe-billing/api/config"
	"github.com/tbeaudouin05/stripe-billing/api/database"
	"github.com/tbeaudouin05/stripe-billing/api/logger"
	"github.com/tbeaudouin05/stripe-billing/api/router"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Init("text", slog.LevelInfo)
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	config.AppConfig = cfg
	logger.Init(cfg.LogFormat, slog.LevelInfo)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router.NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("billing api listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server stopped", "err", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "err", err)
	}
	if err := database.Close(); err != nil {
		slog.Warn("failed to close database", "err", err)
	}
}
