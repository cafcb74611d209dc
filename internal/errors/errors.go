package errors

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateRecord = errors.New("record already exists in store")
	ErrNoVideoID       = errors.New("fetch result has no stable video id")
	ErrEmptyBatch      = errors.New("batch contains no URLs")
)

// FetchCause is a machine-readable classification of a fetch failure.
type FetchCause string

const (
	CauseNetwork     FetchCause = "network"
	CauseNotFound    FetchCause = "not_found"
	CauseUnsupported FetchCause = "unsupported"
	CauseRateLimited FetchCause = "rate_limited"
	CauseUnknown     FetchCause = "unknown"
)

// FetchError reports a failed fetch of a single URL. It is per-item and never
// aborts the batch.
type FetchError struct {
	URL   string
	Cause FetchCause
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed (%s): %v", e.URL, e.Cause, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// FlushError reports a failed durable flush of the persisted store. It is
// fatal for the run; the in-memory state is preserved for a retry path.
type FlushError struct {
	Location string
	Err      error
}

func (e *FlushError) Error() string {
	return fmt.Sprintf("flush store %s: %v", e.Location, e.Err)
}

func (e *FlushError) Unwrap() error { return e.Err }

// CorruptStoreError reports a persisted representation that exists but cannot
// be parsed. The store recovers by backing up the file and starting empty, so
// this error is informational to callers of Open.
type CorruptStoreError struct {
	Location string
	Backup   string
	Err      error
}

func (e *CorruptStoreError) Error() string {
	return fmt.Sprintf("corrupt store %s (backed up to %s): %v", e.Location, e.Backup, e.Err)
}

func (e *CorruptStoreError) Unwrap() error { return e.Err }
