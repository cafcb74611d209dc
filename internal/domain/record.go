package domain

import (
	"fmt"
	"strings"
	"time"
)

// Identity uniquely identifies a downloadable item. Two records are the same
// item when either the video ID or the canonical URL matches.
type Identity struct {
	VideoID      string `json:"video_id"`
	CanonicalURL string `json:"canonical_url"`
}

// Record holds the metadata captured for one successfully fetched item.
// A record is immutable once appended to the store.
type Record struct {
	Identity

	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Uploader    string `json:"uploader,omitempty"`
	UploaderID  string `json:"uploader_id,omitempty"`
	UploadDate  string `json:"upload_date,omitempty"`

	DurationSec int      `json:"duration_sec"`
	Tags        []string `json:"tags,omitempty"`

	// Engagement counters are optional: nil means the platform did not report
	// the value, which is distinct from a reported zero.
	ViewCount    *int64 `json:"view_count,omitempty"`
	LikeCount    *int64 `json:"like_count,omitempty"`
	CommentCount *int64 `json:"comment_count,omitempty"`
	RepostCount  *int64 `json:"repost_count,omitempty"`

	Resolution   string `json:"resolution,omitempty"`
	Format       string `json:"format,omitempty"`
	FileSize     int64  `json:"file_size"`
	ArtifactPath string `json:"artifact_path"`

	DownloadedAt time.Time `json:"downloaded_at"`
}

// FormattedDuration returns the duration as MM:SS, or empty for zero.
func (r *Record) FormattedDuration() string {
	if r.DurationSec <= 0 {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", r.DurationSec/60, r.DurationSec%60)
}

// ExtractTags pulls #hashtag tokens out of free text, used when a fetch
// result carries no explicit tag list.
func ExtractTags(text string) []string {
	if text == "" {
		return nil
	}
	var tags []string
	for _, word := range strings.Fields(text) {
		if strings.HasPrefix(word, "#") && len(word) > 1 {
			tags = append(tags, word)
		}
	}
	return tags
}
