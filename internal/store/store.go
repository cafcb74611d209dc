package store

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/avoronov/batchdl/internal/config"
	"github.com/avoronov/batchdl/internal/domain"
	apperrors "github.com/avoronov/batchdl/internal/errors"
)

// Store state names as reported by Status.
const (
	StateNew      = "new"
	StateEmpty    = "empty"
	StateExisting = "existing"
)

// Status describes the store without side effects.
type Status struct {
	State    string `json:"state"`
	Records  int    `json:"records"`
	Location string `json:"location"`
}

// Store is the append-only, deduplicating metadata store backed by a single
// CSV file. Records are indexed by video ID and by canonical URL; a match on
// either key counts as a duplicate. Every successful append is durably
// flushed before returning.
type Store struct {
	mu       sync.RWMutex
	location string
	records  []*domain.Record
	byID     map[string]struct{}
	byURL    map[string]struct{}
	existed  bool
}

// Location returns the path of the persisted representation. The filename
// carries no timestamp so that repeated runs target the same file.
func Location(dir, baseName string) string {
	return filepath.Join(dir, baseName+".csv")
}

// Open loads the persisted representation at the location derived from dir
// and baseName, or initializes an empty store when no file exists. A file
// that exists but cannot be parsed is backed up and replaced with a fresh
// empty store; Open never fails for corruption. In recreate mode any
// existing file is archived and the store starts empty.
func Open(dir, baseName, mode string) (*Store, error) {
	s := &Store{
		location: Location(dir, baseName),
		byID:     make(map[string]struct{}),
		byURL:    make(map[string]struct{}),
	}

	if mode == config.PersistRecreate {
		if _, err := os.Stat(s.location); err == nil {
			backup := s.location + ".bak"
			if err := os.Rename(s.location, backup); err != nil {
				return nil, fmt.Errorf("failed to archive existing store: %w", err)
			}
			slog.Info("existing store archived for recreate", "file_path", s.location, "backup", backup)
		}
	} else if err := s.load(); err != nil {
		var corrupt *apperrors.CorruptStoreError
		if !errors.As(err, &corrupt) {
			return nil, fmt.Errorf("failed to load store: %w", err)
		}
		slog.Warn("store is corrupt, starting with empty store", "error", corrupt)
		s.records = nil
		s.byID = make(map[string]struct{})
		s.byURL = make(map[string]struct{})
		s.existed = false
	}

	// Write the schema out immediately so a fresh store is durable before
	// the first append.
	if !s.existed {
		if err := s.flush(); err != nil {
			return nil, err
		}
	}

	slog.Info("metadata store opened", "file_path", s.location, "records", len(s.records))
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.location)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Info("store file does not exist, starting with empty store", "file_path", s.location)
			return nil
		}
		return fmt.Errorf("failed to read store file: %w", err)
	}

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return s.corrupt(fmt.Errorf("failed to parse store file: %w", err))
	}

	if len(rows) == 0 {
		return s.corrupt(fmt.Errorf("store file has no header row"))
	}
	if !equalHeader(rows[0]) {
		return s.corrupt(fmt.Errorf("store file header does not match schema"))
	}

	for i, row := range rows[1:] {
		rec, err := decodeRow(row)
		if err != nil {
			return s.corrupt(fmt.Errorf("row %d: %w", i+2, err))
		}
		if s.contains(rec.Identity) {
			slog.Warn("duplicate record in store file ignored", "video_id", rec.VideoID, "url", rec.CanonicalURL)
			continue
		}
		s.insert(rec)
	}

	s.existed = true
	slog.Info("store state loaded", "records", len(s.records), "file_path", s.location)
	return nil
}

// corrupt renames the unparsable file out of the way and wraps the cause.
// The original file is preserved, never deleted.
func (s *Store) corrupt(cause error) error {
	backup := fmt.Sprintf("%s.corrupt.%d", s.location, time.Now().Unix())
	if err := os.Rename(s.location, backup); err != nil {
		return fmt.Errorf("failed to back up corrupt store: %w", err)
	}
	return &apperrors.CorruptStoreError{Location: s.location, Backup: backup, Err: cause}
}

// Contains reports whether an item with the given identity was already
// recorded. A match on either the video ID or the canonical URL counts.
func (s *Store) Contains(id domain.Identity) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contains(id)
}

func (s *Store) contains(id domain.Identity) bool {
	if id.VideoID != "" {
		if _, ok := s.byID[id.VideoID]; ok {
			return true
		}
	}
	if id.CanonicalURL != "" {
		if _, ok := s.byURL[id.CanonicalURL]; ok {
			return true
		}
	}
	return false
}

func (s *Store) insert(rec *domain.Record) {
	s.records = append(s.records, rec)
	if rec.VideoID != "" {
		s.byID[rec.VideoID] = struct{}{}
	}
	if rec.CanonicalURL != "" {
		s.byURL[rec.CanonicalURL] = struct{}{}
	}
}

// Append inserts one record and durably flushes the whole persisted
// representation before returning. A duplicate identity yields
// ErrDuplicateRecord and no flush. A flush failure is returned as a
// *FlushError; the record stays in the in-memory index so that a retried
// flush would persist it.
func (s *Store) Append(rec *domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.contains(rec.Identity) {
		return apperrors.ErrDuplicateRecord
	}

	s.insert(rec)

	if err := s.flush(); err != nil {
		return err
	}

	slog.Debug("record appended and flushed", "video_id", rec.VideoID, "records", len(s.records))
	return nil
}

func (s *Store) flush() error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(columns); err != nil {
		return &apperrors.FlushError{Location: s.location, Err: err}
	}
	for _, rec := range s.records {
		if err := w.Write(encodeRow(rec)); err != nil {
			return &apperrors.FlushError{Location: s.location, Err: err}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return &apperrors.FlushError{Location: s.location, Err: err}
	}

	tempFile := s.location + ".tmp"
	if err := os.WriteFile(tempFile, buf.Bytes(), 0o644); err != nil {
		return &apperrors.FlushError{Location: s.location, Err: fmt.Errorf("failed to write temporary file: %w", err)}
	}
	if err := os.Rename(tempFile, s.location); err != nil {
		return &apperrors.FlushError{Location: s.location, Err: fmt.Errorf("failed to rename temporary file: %w", err)}
	}

	return nil
}

// Count returns the number of records currently in the store.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Status describes the store: new when no persisted file existed at open,
// empty when a file existed without records, existing otherwise.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{Records: len(s.records), Location: s.location}
	switch {
	case !s.existed:
		st.State = StateNew
	case len(s.records) == 0:
		st.State = StateEmpty
	default:
		st.State = StateExisting
	}
	return st
}

// Inspect describes the persisted representation at the derived location
// without opening, creating or repairing anything.
func Inspect(dir, baseName string) Status {
	location := Location(dir, baseName)
	st := Status{State: StateNew, Location: location}

	data, err := os.ReadFile(location)
	if err != nil {
		return st
	}

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil || len(rows) == 0 || !equalHeader(rows[0]) {
		st.State = "corrupt"
		return st
	}

	st.Records = len(rows) - 1
	if st.Records == 0 {
		st.State = StateEmpty
	} else {
		st.State = StateExisting
	}
	return st
}

func equalHeader(row []string) bool {
	if len(row) != len(columns) {
		return false
	}
	for i, col := range columns {
		if row[i] != col {
			return false
		}
	}
	return true
}
