package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoronov/batchdl/internal/config"
	"github.com/avoronov/batchdl/internal/domain"
	apperrors "github.com/avoronov/batchdl/internal/errors"
)

type mockRunner struct {
	lastReq domain.RunRequest
	summary *domain.RunSummary
	err     error

	backfillReq     domain.BackfillRequest
	backfillSummary *domain.BackfillSummary
	backfillErr     error
}

func (m *mockRunner) Run(ctx context.Context, req domain.RunRequest) (*domain.RunSummary, error) {
	m.lastReq = req
	if m.summary == nil && m.err == nil {
		m.summary = &domain.RunSummary{RunID: "test-run", Total: len(req.URLs)}
	}
	return m.summary, m.err
}

func (m *mockRunner) Backfill(ctx context.Context, req domain.BackfillRequest) (*domain.BackfillSummary, error) {
	m.backfillReq = req
	if m.backfillSummary == nil && m.backfillErr == nil {
		m.backfillSummary = &domain.BackfillSummary{}
	}
	return m.backfillSummary, m.backfillErr
}

func testRouter(t *testing.T, runner *mockRunner) http.Handler {
	t.Helper()
	cfg := &config.Config{
		DestinationDir:  t.TempDir(),
		StoreBaseName:   "videos_metadata",
		MaxURLsPerBatch: 3,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(runner, cfg, logger)
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateBatch_Success(t *testing.T) {
	runner := &mockRunner{
		summary: &domain.RunSummary{
			RunID:      "run-1",
			Total:      2,
			Valid:      2,
			Successful: 2,
		},
	}
	router := testRouter(t, runner)

	rec := postJSON(t, router, "/batches", `{
		"urls": ["https://www.tiktok.com/@u/video/1", "https://www.tiktok.com/@u/video/2"],
		"platform": "tiktok",
		"base_name": "clip"
	}`)

	assert.Equal(t, http.StatusOK, rec.Code)

	var summary domain.RunSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, "run-1", summary.RunID)
	assert.Equal(t, 2, summary.Successful)

	assert.Equal(t, "clip", runner.lastReq.BaseName)
	assert.Equal(t, "tiktok", runner.lastReq.Platform)
	assert.True(t, runner.lastReq.Export, "export defaults to on")
}

func TestCreateBatch_ExportFlag(t *testing.T) {
	runner := &mockRunner{}
	router := testRouter(t, runner)

	rec := postJSON(t, router, "/batches", `{
		"urls": ["https://www.tiktok.com/@u/video/1"],
		"export": false
	}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, runner.lastReq.Export)
}

func TestCreateBatch_InvalidBody(t *testing.T) {
	router := testRouter(t, &mockRunner{})

	rec := postJSON(t, router, "/batches", `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid request body")
}

func TestCreateBatch_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing urls", `{}`},
		{"empty urls", `{"urls": []}`},
		{"unknown platform", `{"urls": ["https://x.com/u/status/1"], "platform": "vimeo"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := testRouter(t, &mockRunner{})
			rec := postJSON(t, router, "/batches", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateBatch_TooManyURLs(t *testing.T) {
	router := testRouter(t, &mockRunner{})

	rec := postJSON(t, router, "/batches", `{
		"urls": ["https://a.com/1", "https://a.com/2", "https://a.com/3", "https://a.com/4"]
	}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "too many URLs")
}

func TestCreateBatch_RunFailureReturnsSummary(t *testing.T) {
	runner := &mockRunner{
		summary: &domain.RunSummary{
			RunID:      "run-2",
			Total:      2,
			Successful: 1,
			Failed:     1,
			FatalError: "write row: disk full",
		},
		err: &apperrors.FlushError{Location: "/data/videos_metadata.csv"},
	}
	router := testRouter(t, runner)

	rec := postJSON(t, router, "/batches", `{"urls": ["https://www.tiktok.com/@u/video/1"]}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var summary domain.RunSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, "run-2", summary.RunID)
	assert.NotEmpty(t, summary.FatalError)
}

func TestCreateBatch_NilSummaryOnError(t *testing.T) {
	runner := &mockRunner{err: errors.New("store unavailable")}
	router := testRouter(t, runner)

	rec := postJSON(t, router, "/batches", `{"urls": ["https://www.tiktok.com/@u/video/1"]}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "batch run failed")
}

func TestBackfillStore(t *testing.T) {
	runner := &mockRunner{
		backfillSummary: &domain.BackfillSummary{
			Scanned:          3,
			Imported:         2,
			SkippedDuplicate: 1,
		},
	}
	router := testRouter(t, runner)

	rec := postJSON(t, router, "/store/backfill", `{"base_name": "clip"}`)

	assert.Equal(t, http.StatusOK, rec.Code)

	var summary domain.BackfillSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.Imported)
	assert.Equal(t, "clip", runner.backfillReq.BaseName)
}

func TestBackfillStore_NoBody(t *testing.T) {
	runner := &mockRunner{}
	router := testRouter(t, runner)

	req := httptest.NewRequest(http.MethodPost, "/store/backfill", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, runner.backfillReq.BaseName)
}

func TestBackfillStore_Failure(t *testing.T) {
	runner := &mockRunner{
		backfillSummary: &domain.BackfillSummary{Scanned: 1, FatalError: "flush failed"},
		backfillErr:     errors.New("flush failed"),
	}
	router := testRouter(t, runner)

	rec := postJSON(t, router, "/store/backfill", `{}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "flush failed")
}

func TestGetStoreStatus(t *testing.T) {
	router := testRouter(t, &mockRunner{})

	req := httptest.NewRequest(http.MethodGet, "/store/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var status domain.StoreStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "new", status.State)
	assert.Equal(t, 0, status.Records)
	assert.NotEmpty(t, status.Location)
}

func TestHealth(t *testing.T) {
	router := testRouter(t, &mockRunner{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
