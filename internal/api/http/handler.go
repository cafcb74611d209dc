package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/avoronov/batchdl/internal/config"
	"github.com/avoronov/batchdl/internal/domain"
	apperrors "github.com/avoronov/batchdl/internal/errors"
	"github.com/avoronov/batchdl/internal/store"
)

// BatchRunner defines the interface for executing batch runs and store
// backfills. Both methods return their summary alongside a non-nil error
// whenever any part of the work completed, so callers can report what
// happened before the failure; a nil summary is only valid with an error.
type BatchRunner interface {
	Run(ctx context.Context, req domain.RunRequest) (*domain.RunSummary, error)
	Backfill(ctx context.Context, req domain.BackfillRequest) (*domain.BackfillSummary, error)
}

// BatchHandler handles HTTP requests for batch runs and store status.
type BatchHandler struct {
	runner    BatchRunner
	cfg       *config.Config
	validator *validator.Validate
	logger    *slog.Logger
}

// NewBatchHandler creates a new BatchHandler with the provided runner and logger.
func NewBatchHandler(runner BatchRunner, cfg *config.Config, logger *slog.Logger) *BatchHandler {
	return &BatchHandler{
		runner:    runner,
		cfg:       cfg,
		validator: validator.New(),
		logger:    logger,
	}
}

// CreateBatch handles POST /batches: it runs the batch synchronously and
// returns the run summary once every item has reached a terminal state.
func (h *BatchHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.CreateBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("validation failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if len(req.URLs) > h.cfg.MaxURLsPerBatch {
		writeError(w, http.StatusBadRequest, "too many URLs in one batch")
		return
	}

	export := true
	if req.Export != nil {
		export = *req.Export
	}

	summary, err := h.runner.Run(ctx, domain.RunRequest{
		URLs:     req.URLs,
		Platform: req.Platform,
		BaseName: req.BaseName,
		Export:   export,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrEmptyBatch) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("batch run failed", "error", err)
		if summary == nil {
			writeError(w, http.StatusInternalServerError, "batch run failed")
			return
		}
		// The summary still enumerates what completed before the run
		// aborted, so return it alongside the error condition.
		writeJSON(w, http.StatusInternalServerError, summary)
		return
	}

	h.logger.Info("batch run finished",
		"run_id", summary.RunID,
		"successful", summary.Successful,
		"skipped_duplicate", summary.SkippedDuplicate,
		"failed", summary.Failed,
	)
	writeJSON(w, http.StatusOK, summary)
}

// BackfillStore handles POST /store/backfill: it scans the destination for
// already downloaded artifacts and appends store records for any not yet
// recorded. The body is optional.
func (h *BatchHandler) BackfillStore(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateBackfillRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Error("failed to decode request", "error", err)
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := h.validator.Struct(req); err != nil {
			h.logger.Warn("validation failed", "error", err)
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	summary, err := h.runner.Backfill(r.Context(), domain.BackfillRequest{BaseName: req.BaseName})
	if err != nil {
		h.logger.Error("backfill failed", "error", err)
		if summary == nil {
			writeError(w, http.StatusInternalServerError, "backfill failed")
			return
		}
		writeJSON(w, http.StatusInternalServerError, summary)
		return
	}

	h.logger.Info("backfill finished",
		"scanned", summary.Scanned,
		"imported", summary.Imported,
		"skipped_duplicate", summary.SkippedDuplicate,
		"failed", summary.Failed,
	)
	writeJSON(w, http.StatusOK, summary)
}

// GetStoreStatus handles GET /store/status without side effects.
func (h *BatchHandler) GetStoreStatus(w http.ResponseWriter, r *http.Request) {
	status := store.Inspect(h.cfg.DestinationDir, h.cfg.StoreBaseName)
	writeJSON(w, http.StatusOK, domain.StoreStatusResponse{
		State:    status.State,
		Records:  status.Records,
		Location: status.Location,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}
