package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/avoronov/batchdl/internal/domain"
	apperrors "github.com/avoronov/batchdl/internal/errors"
	"github.com/avoronov/batchdl/internal/fetch"
	"github.com/avoronov/batchdl/internal/metrics"
	"github.com/avoronov/batchdl/internal/validation"
)

const infoSuffix = ".info.json"

// Backfill imports artifacts already present in the destination into the
// metadata store. Each artifact is described by a <name>.info.json sidecar;
// sidecars whose item is already recorded are skipped, unreadable or
// ID-less sidecars are counted as failed. Only a store flush failure aborts
// the pass.
func (o *Orchestrator) Backfill(ctx context.Context, req domain.BackfillRequest) (*domain.BackfillSummary, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	summary := &domain.BackfillSummary{}

	dest := req.Destination
	if dest == "" {
		dest = o.cfg.DestinationDir
	}

	st, err := o.openStore(dest, o.storeBaseName(req.BaseName), "")
	if err != nil {
		summary.FatalError = err.Error()
		return summary, err
	}
	summary.StoreLocation = st.Status().Location

	entries, err := os.ReadDir(dest)
	if err != nil {
		summary.FatalError = err.Error()
		return summary, err
	}

	o.logger.Info("backfill started", "destination", dest, "store", summary.StoreLocation)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), infoSuffix) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Scanned++

		data, err := os.ReadFile(filepath.Join(dest, entry.Name()))
		if err != nil {
			o.logger.Error("backfill sidecar unreadable", "file", entry.Name(), "error", err)
			summary.Failed++
			continue
		}

		info, err := fetch.ParseInfo(data)
		if err != nil {
			o.logger.Error("backfill sidecar unparsable", "file", entry.Name(), "error", err)
			summary.Failed++
			continue
		}

		rec, err := describe(&fetch.Result{
			ArtifactPath: artifactFor(dest, entry.Name(), info),
			Info:         info,
		}, validation.CanonicalString(info.WebpageURL))
		if err != nil {
			o.logger.Error("backfill sidecar not usable", "file", entry.Name(), "error", err)
			summary.Failed++
			continue
		}

		if err := st.Append(rec); err != nil {
			if errors.Is(err, apperrors.ErrDuplicateRecord) {
				summary.SkippedDuplicate++
				continue
			}
			summary.FatalError = err.Error()
			o.logger.Error("backfill aborted", "file", entry.Name(), "error", err)
			return summary, err
		}
		summary.Imported++
		metrics.BackfillImported.Inc()
	}

	metrics.StoreRecords.Set(float64(st.Count()))
	o.logger.Info("backfill completed",
		"scanned", summary.Scanned,
		"imported", summary.Imported,
		"skipped_duplicate", summary.SkippedDuplicate,
		"failed", summary.Failed,
	)
	return summary, nil
}

// artifactFor locates the media file a sidecar describes: the sidecar's stem
// plus the reported extension, falling back to the path recorded inside the
// sidecar itself.
func artifactFor(dest, sidecarName string, info fetch.Info) string {
	stem := strings.TrimSuffix(sidecarName, infoSuffix)
	ext := info.Ext
	if ext == "" {
		ext = "mp4"
	}

	candidate := filepath.Join(dest, stem+"."+ext)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return info.Filename
}
