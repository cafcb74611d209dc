// Package fetch defines the media fetch port: given a URL, produce a local
// artifact plus the raw descriptive fields of the item. Implementations own
// their timeout and retry policy; the orchestrator only sees success or a
// classified FetchError.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
)

// Info mirrors the descriptive JSON a downloader emits per item. Counter
// fields are pointers so that an absent value is distinguishable from zero.
type Info struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Uploader     string   `json:"uploader"`
	UploaderID   string   `json:"uploader_id"`
	UploadDate   string   `json:"upload_date"`
	Duration     float64  `json:"duration"`
	ViewCount    *int64   `json:"view_count"`
	LikeCount    *int64   `json:"like_count"`
	CommentCount *int64   `json:"comment_count"`
	RepostCount  *int64   `json:"repost_count"`
	Tags         []string `json:"tags"`
	Width        int      `json:"width"`
	Height       int      `json:"height"`
	Ext          string   `json:"ext"`
	Filesize     int64    `json:"filesize"`
	FilesizeApx  int64    `json:"filesize_approx"`
	WebpageURL   string   `json:"webpage_url"`
	Filename     string   `json:"_filename"`
}

// Result holds the outcome of one successful fetch.
type Result struct {
	ArtifactPath string
	Info         Info
}

// Options control placement and naming of the fetched artifact.
type Options struct {
	OutputDir string
	// FileName is the artifact name without extension. Empty lets the
	// fetcher name the file after the item's stable ID.
	FileName string
}

// Fetcher is the media fetch port.
type Fetcher interface {
	Fetch(ctx context.Context, url string, opts Options) (*Result, error)
}

// ParseInfo decodes the descriptive JSON of a single item.
func ParseInfo(data []byte) (Info, error) {
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return Info{}, fmt.Errorf("failed to parse item info: %w", err)
	}
	return info, nil
}
