package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avoronov/batchdl/internal/config"
	"github.com/avoronov/batchdl/internal/domain"
	apperrors "github.com/avoronov/batchdl/internal/errors"
	"github.com/avoronov/batchdl/internal/fetch"
	"github.com/avoronov/batchdl/internal/metrics"
	"github.com/avoronov/batchdl/internal/naming"
	"github.com/avoronov/batchdl/internal/progress"
	"github.com/avoronov/batchdl/internal/store"
	"github.com/avoronov/batchdl/internal/validation"
)

// Orchestrator drives one batch at a time through the per-item pipeline:
// validate, duplicate check, fetch, describe, persist. A single item failure
// never aborts the batch; only a failed store flush does.
type Orchestrator struct {
	fetcher fetch.Fetcher
	cfg     *config.Config
	sink    progress.Sink
	logger  *slog.Logger

	// mu serializes runs. Items within a run are processed strictly
	// sequentially, so the persisted store only ever has one writer.
	mu sync.Mutex
}

// NewOrchestrator creates an orchestrator. The sink may be nil when the
// caller has no use for progress events.
func NewOrchestrator(fetcher fetch.Fetcher, cfg *config.Config, sink progress.Sink, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		fetcher: fetcher,
		cfg:     cfg,
		sink:    sink,
		logger:  logger,
	}
}

// Run executes one batch over the raw URL list and returns the run summary
// once every item has reached a terminal state. Per-item errors are captured
// in the summary; the returned error is non-nil only for run-level failures:
// a fatal store flush error, an unusable destination, or cancellation.
func (o *Orchestrator) Run(ctx context.Context, req domain.RunRequest) (*domain.RunSummary, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	summary := &domain.RunSummary{
		RunID:     uuid.New().String(),
		Total:     len(req.URLs),
		StartedAt: time.Now(),
	}
	defer func() { summary.FinishedAt = time.Now() }()

	if len(req.URLs) == 0 {
		return summary, apperrors.ErrEmptyBatch
	}

	metrics.RunsStarted.Inc()
	o.logger.Info("batch run started", "run_id", summary.RunID, "urls_count", len(req.URLs))

	dest := req.Destination
	if dest == "" {
		dest = o.cfg.DestinationDir
	}
	platform := req.Platform
	if platform == "" {
		platform = o.cfg.Platform
	}

	vr := validation.NormalizeAndValidate(req.URLs, platform)
	summary.Valid = len(vr.Valid)
	summary.SkippedDuplicate += vr.Duplicates
	for _, inv := range vr.Invalid {
		summary.Failed++
		summary.Results = append(summary.Results, domain.ItemResult{
			Index:   -1,
			URL:     inv.Raw,
			Outcome: domain.OutcomeFailed,
			Stage:   domain.StageValidate,
			Error:   inv.Reason,
		})
	}

	var st *store.Store
	if req.Export {
		var err error
		st, err = o.openStore(dest, o.storeBaseName(req.BaseName), req.PersistMode)
		if err != nil {
			summary.FatalError = err.Error()
			metrics.RunsAborted.Inc()
			return summary, err
		}
		summary.StoreLocation = st.Status().Location
	}

	// The allocator is constructed fresh for every run; its counter is
	// never shared or carried across runs.
	var allocator *naming.Allocator
	if req.BaseName != "" {
		allocator = naming.NewAllocator(dest, req.BaseName)
	}

	total := len(vr.Valid)
	for i, url := range vr.Valid {
		// Cancellation is cooperative and only takes effect between
		// items; an in-flight fetch always completes or fails first.
		if err := ctx.Err(); err != nil {
			o.logger.Warn("batch run cancelled", "run_id", summary.RunID, "processed", i, "total", total)
			return summary, err
		}

		result, err := o.processItem(ctx, st, allocator, dest, url, i+1, total)
		summary.Results = append(summary.Results, result)

		switch result.Outcome {
		case domain.OutcomeSuccess:
			summary.Successful++
			metrics.ItemsSuccessful.Inc()
		case domain.OutcomeSkipped:
			summary.SkippedDuplicate++
			metrics.ItemsSkipped.Inc()
		case domain.OutcomeFailed:
			summary.Failed++
			metrics.ItemsFailed.Inc()
		}

		label := result.Title
		if label == "" {
			label = result.URL
		}
		progress.Deliver(o.sink, domain.ProgressEvent{Index: i + 1, Total: total, Label: label})

		if err != nil {
			// Only store flush failures and destination errors reach
			// here; both are fatal for the run.
			summary.FatalError = err.Error()
			metrics.RunsAborted.Inc()
			o.logger.Error("batch run aborted", "run_id", summary.RunID, "error", err)
			return summary, err
		}
	}

	if st != nil {
		metrics.StoreRecords.Set(float64(st.Count()))
	}
	metrics.RunsCompleted.Inc()

	o.logger.Info("batch run completed",
		"run_id", summary.RunID,
		"successful", summary.Successful,
		"skipped_duplicate", summary.SkippedDuplicate,
		"failed", summary.Failed,
	)
	return summary, nil
}

// storeBaseName derives the store file's base name from a run's custom base
// name, falling back to the configured default.
func (o *Orchestrator) storeBaseName(base string) string {
	if base == "" {
		return o.cfg.StoreBaseName
	}
	return base + naming.Separator + "metadata"
}

func (o *Orchestrator) openStore(dest, baseName, mode string) (*store.Store, error) {
	if mode == "" {
		mode = o.cfg.PersistMode
	}

	st, err := store.Open(dest, baseName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata store: %w", err)
	}
	return st, nil
}

// processItem walks one URL through fetch, describe and persist. The
// returned error is non-nil only when the run must abort.
func (o *Orchestrator) processItem(ctx context.Context, st *store.Store, allocator *naming.Allocator, dest, url string, index, total int) (domain.ItemResult, error) {
	result := domain.ItemResult{Index: index, URL: url}
	start := time.Now()
	defer func() { metrics.ItemDuration.Observe(time.Since(start).Seconds()) }()

	// Pre-fetch duplicate check, possible only when the URL embeds the
	// stable ID. Short links are checked again after fetch.
	identity := domain.Identity{
		VideoID:      validation.DeriveVideoID(url),
		CanonicalURL: url,
	}
	if st != nil && st.Contains(identity) {
		o.logger.Info("item already recorded, skipping", "url", url, "video_id", identity.VideoID)
		result.Outcome = domain.OutcomeSkipped
		return result, nil
	}

	opts := fetch.Options{OutputDir: dest}
	if allocator != nil {
		n, err := allocator.Next()
		if err != nil {
			result.Outcome = domain.OutcomeFailed
			result.Stage = domain.StageFetch
			result.Error = err.Error()
			return result, fmt.Errorf("destination not usable: %w", err)
		}
		opts.FileName = allocator.FileName(n)
	}

	res, err := o.fetcher.Fetch(ctx, url, opts)
	if err != nil {
		o.logger.Error("item fetch failed", "url", url, "error", err)
		result.Outcome = domain.OutcomeFailed
		result.Stage = domain.StageFetch
		result.Error = err.Error()
		return result, nil
	}

	rec, err := describe(res, url)
	if err != nil {
		// The fetched artifact stays on disk; only the store entry is
		// withheld.
		o.logger.Error("item describe failed", "url", url, "error", err)
		result.Outcome = domain.OutcomeFailed
		result.Stage = domain.StageDescribe
		result.Error = err.Error()
		return result, nil
	}
	result.Title = rec.Title

	if st == nil {
		result.Outcome = domain.OutcomeSuccess
		return result, nil
	}

	if err := st.Append(rec); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateRecord) {
			// Textually distinct URLs can resolve to an already
			// recorded item; those count as skipped, not successful.
			o.logger.Info("duplicate discovered at persist time, skipping", "url", url, "video_id", rec.VideoID)
			result.Outcome = domain.OutcomeSkipped
			return result, nil
		}
		result.Outcome = domain.OutcomeFailed
		result.Stage = domain.StagePersist
		result.Error = err.Error()
		return result, err
	}

	o.logger.Info("item persisted", "url", url, "video_id", rec.VideoID, "title", rec.Title)
	result.Outcome = domain.OutcomeSuccess
	return result, nil
}

// describe builds the immutable metadata record from a fetch result.
func describe(res *fetch.Result, canonicalURL string) (*domain.Record, error) {
	info := res.Info
	if info.ID == "" {
		return nil, apperrors.ErrNoVideoID
	}

	rec := &domain.Record{
		Identity: domain.Identity{
			VideoID:      info.ID,
			CanonicalURL: canonicalURL,
		},
		Title:        info.Title,
		Description:  info.Description,
		Uploader:     info.Uploader,
		UploaderID:   info.UploaderID,
		UploadDate:   formatUploadDate(info.UploadDate),
		DurationSec:  int(info.Duration),
		Tags:         info.Tags,
		ViewCount:    info.ViewCount,
		LikeCount:    info.LikeCount,
		CommentCount: info.CommentCount,
		RepostCount:  info.RepostCount,
		Format:       info.Ext,
		ArtifactPath: res.ArtifactPath,
		DownloadedAt: time.Now(),
	}

	if len(rec.Tags) == 0 {
		rec.Tags = domain.ExtractTags(info.Description)
	}

	if info.Width > 0 && info.Height > 0 {
		rec.Resolution = fmt.Sprintf("%dx%d", info.Width, info.Height)
	}

	rec.FileSize = info.Filesize
	if rec.FileSize == 0 {
		rec.FileSize = info.FilesizeApx
	}
	if rec.FileSize == 0 && res.ArtifactPath != "" {
		if fi, err := os.Stat(res.ArtifactPath); err == nil {
			rec.FileSize = fi.Size()
		}
	}

	return rec, nil
}

// formatUploadDate turns yt-dlp's YYYYMMDD into YYYY-MM-DD, passing through
// anything that does not match.
func formatUploadDate(raw string) string {
	if len(raw) != 8 {
		return raw
	}
	return raw[:4] + "-" + raw[4:6] + "-" + raw[6:8]
}
