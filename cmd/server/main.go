package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	h "github.com/avoronov/batchdl/internal/api/http"
	cfgpkg "github.com/avoronov/batchdl/internal/config"
	"github.com/avoronov/batchdl/internal/domain"
	"github.com/avoronov/batchdl/internal/fetch"
	"github.com/avoronov/batchdl/internal/progress"
	svc "github.com/avoronov/batchdl/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, relying on environment")
	}

	cfg, err := cfgpkg.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	cfgpkg.SetupLogger(cfg)
	slog.Info("configuration loaded successfully")

	fetcher := fetch.NewYTDLPFetcher(cfg.YTDLPPath, cfg.FetchTimeout, slog.Default())

	sink := progress.NewAsync(progress.Func(func(e domain.ProgressEvent) {
		slog.Info("batch progress", "index", e.Index, "total", e.Total, "item", e.Label)
	}), cfg.ProgressBuffer)
	defer sink.Close()

	orchestrator := svc.NewOrchestrator(fetcher, cfg, sink, slog.Default())

	router := h.NewRouter(orchestrator, cfg, slog.Default())
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  cfg.HTTPTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	} else {
		slog.Info("server stopped gracefully")
	}
}
