package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avoronov/batchdl/internal/config"
)

// NewRouter creates a new HTTP router with configured routes, middleware, and handlers.
// It sets up the batch run route, store status, health check, and Prometheus metrics endpoint.
func NewRouter(runner BatchRunner, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	batchHandler := NewBatchHandler(runner, cfg, logger)

	r.Post("/batches", batchHandler.CreateBatch)
	r.Post("/store/backfill", batchHandler.BackfillStore)
	r.Get("/store/status", batchHandler.GetStoreStatus)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
