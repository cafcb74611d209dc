package domain

import "time"

// ItemStage names the pipeline stage an item was in when it reached a
// terminal state.
type ItemStage string

const (
	StageValidate ItemStage = "validate"
	StageFetch    ItemStage = "fetch"
	StageDescribe ItemStage = "describe"
	StagePersist  ItemStage = "persist"
)

// ItemOutcome is the terminal result of one item in a batch.
type ItemOutcome string

const (
	OutcomeSuccess ItemOutcome = "success"
	OutcomeSkipped ItemOutcome = "skipped"
	OutcomeFailed  ItemOutcome = "failed"
)

// ItemResult records the terminal state of a single URL in a run.
type ItemResult struct {
	Index   int         `json:"index"`
	URL     string      `json:"url"`
	Outcome ItemOutcome `json:"outcome"`
	Stage   ItemStage   `json:"stage,omitempty"`
	Error   string      `json:"error,omitempty"`
	Title   string      `json:"title,omitempty"`
}

// RunRequest carries everything needed to execute one batch run.
type RunRequest struct {
	URLs        []string
	Platform    string
	BaseName    string
	Export      bool
	Destination string
	PersistMode string
}

// RunSummary is accumulated by the orchestrator and returned when every item
// has reached a terminal state.
type RunSummary struct {
	RunID            string       `json:"run_id"`
	Total            int          `json:"total"`
	Valid            int          `json:"valid"`
	Successful       int          `json:"successful"`
	SkippedDuplicate int          `json:"skipped_duplicate"`
	Failed           int          `json:"failed"`
	Results          []ItemResult `json:"results"`
	StoreLocation    string       `json:"store_location,omitempty"`
	FatalError       string       `json:"fatal_error,omitempty"`
	StartedAt        time.Time    `json:"started_at"`
	FinishedAt       time.Time    `json:"finished_at"`
}

// BackfillRequest asks for artifacts already present in the destination to
// be imported into the metadata store.
type BackfillRequest struct {
	BaseName    string
	Destination string
}

// BackfillSummary reports the outcome of one backfill pass.
type BackfillSummary struct {
	Scanned          int    `json:"scanned"`
	Imported         int    `json:"imported"`
	SkippedDuplicate int    `json:"skipped_duplicate"`
	Failed           int    `json:"failed"`
	StoreLocation    string `json:"store_location,omitempty"`
	FatalError       string `json:"fatal_error,omitempty"`
}

// ProgressEvent is emitted after every terminal item transition.
type ProgressEvent struct {
	Index int
	Total int
	Label string
}
