package fetch

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/avoronov/batchdl/internal/errors"
)

// YTDLPFetcher implements the Fetcher port by shelling out to the yt-dlp
// binary. It downloads the item and captures the per-item JSON that yt-dlp
// prints, so one invocation yields both the artifact and its description.
type YTDLPFetcher struct {
	binaryPath string
	timeout    time.Duration
	logger     *slog.Logger
}

// NewYTDLPFetcher creates a fetcher around the given yt-dlp binary.
func NewYTDLPFetcher(binaryPath string, timeout time.Duration, logger *slog.Logger) *YTDLPFetcher {
	if binaryPath == "" {
		binaryPath = "yt-dlp"
	}
	return &YTDLPFetcher{
		binaryPath: binaryPath,
		timeout:    timeout,
		logger:     logger,
	}
}

// Fetch downloads one URL into opts.OutputDir and returns the artifact path
// plus the raw descriptive fields. Failures are classified into a FetchError
// cause the orchestrator can report.
func (f *YTDLPFetcher) Fetch(ctx context.Context, url string, opts Options) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	name := opts.FileName
	if name == "" {
		name = "%(id)s"
	}
	template := filepath.Join(opts.OutputDir, name+".%(ext)s")

	args := []string{
		"-f", "b",
		"--no-warnings",
		"--no-playlist",
		"--print-json",
		"-o", template,
		url,
	}

	cmd := exec.CommandContext(ctx, f.binaryPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		cause := classify(stderr.String(), ctx.Err())
		f.logger.Error("fetch failed",
			"url", url,
			"cause", cause,
			"error", err,
			"stderr", truncate(stderr.String(), 500),
		)
		return nil, &apperrors.FetchError{
			URL:   url,
			Cause: cause,
			Err:   fmt.Errorf("yt-dlp: %w", err),
		}
	}

	info, err := ParseInfo(bytes.TrimSpace(stdout.Bytes()))
	if err != nil {
		return nil, &apperrors.FetchError{URL: url, Cause: apperrors.CauseUnknown, Err: err}
	}

	artifact := info.Filename
	if artifact == "" {
		ext := info.Ext
		if ext == "" {
			ext = "mp4"
		}
		artifact = filepath.Join(opts.OutputDir, strings.ReplaceAll(name, "%(id)s", info.ID)+"."+ext)
	}

	f.logger.Info("fetch completed",
		"url", url,
		"video_id", info.ID,
		"artifact", artifact,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return &Result{ArtifactPath: artifact, Info: info}, nil
}

func classify(stderr string, ctxErr error) apperrors.FetchCause {
	if ctxErr != nil {
		return apperrors.CauseNetwork
	}

	lower := strings.ToLower(stderr)
	switch {
	case strings.Contains(lower, "unsupported url"):
		return apperrors.CauseUnsupported
	case strings.Contains(lower, "http error 404"),
		strings.Contains(lower, "not found"),
		strings.Contains(lower, "video unavailable"),
		strings.Contains(lower, "no longer available"):
		return apperrors.CauseNotFound
	case strings.Contains(lower, "http error 429"),
		strings.Contains(lower, "rate limit"),
		strings.Contains(lower, "too many requests"):
		return apperrors.CauseRateLimited
	case strings.Contains(lower, "unable to download"),
		strings.Contains(lower, "connection"),
		strings.Contains(lower, "timed out"),
		strings.Contains(lower, "temporary failure"):
		return apperrors.CauseNetwork
	}
	return apperrors.CauseUnknown
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}
