package store

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/avoronov/batchdl/internal/domain"
)

// columns is the fixed header row of the persisted representation. Loading a
// file whose header differs is treated as corruption.
var columns = []string{
	"video_id", "title", "description", "uploader", "uploader_id",
	"upload_date", "duration_sec", "duration", "view_count", "like_count",
	"comment_count", "repost_count", "tags", "original_url", "resolution",
	"format", "file_size_bytes", "download_path", "download_date",
}

const timeLayout = "2006-01-02 15:04:05"

func encodeRow(r *domain.Record) []string {
	return []string{
		r.VideoID,
		r.Title,
		r.Description,
		r.Uploader,
		r.UploaderID,
		r.UploadDate,
		strconv.Itoa(r.DurationSec),
		r.FormattedDuration(),
		encodeCounter(r.ViewCount),
		encodeCounter(r.LikeCount),
		encodeCounter(r.CommentCount),
		encodeCounter(r.RepostCount),
		encodeTags(r.Tags),
		r.CanonicalURL,
		r.Resolution,
		r.Format,
		strconv.FormatInt(r.FileSize, 10),
		r.ArtifactPath,
		r.DownloadedAt.Format(timeLayout),
	}
}

func decodeRow(row []string) (*domain.Record, error) {
	if len(row) != len(columns) {
		return nil, fmt.Errorf("expected %d fields, got %d", len(columns), len(row))
	}

	durationSec, err := strconv.Atoi(row[6])
	if err != nil {
		return nil, fmt.Errorf("invalid duration_sec %q: %w", row[6], err)
	}

	fileSize, err := strconv.ParseInt(row[16], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid file_size_bytes %q: %w", row[16], err)
	}

	rec := &domain.Record{
		Identity: domain.Identity{
			VideoID:      row[0],
			CanonicalURL: row[13],
		},
		Title:        row[1],
		Description:  row[2],
		Uploader:     row[3],
		UploaderID:   row[4],
		UploadDate:   row[5],
		DurationSec:  durationSec,
		Resolution:   row[14],
		Format:       row[15],
		FileSize:     fileSize,
		ArtifactPath: row[17],
	}

	rec.Tags = decodeTags(row[12])

	for i, dst := range []**int64{&rec.ViewCount, &rec.LikeCount, &rec.CommentCount, &rec.RepostCount} {
		val, err := decodeCounter(row[8+i])
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", columns[8+i], row[8+i], err)
		}
		*dst = val
	}

	if row[18] != "" {
		ts, err := time.Parse(timeLayout, row[18])
		if err != nil {
			return nil, fmt.Errorf("invalid download_date %q: %w", row[18], err)
		}
		rec.DownloadedAt = ts
	}

	return rec, nil
}

// Tags are stored as a JSON array so a tag containing the old ", " joiner
// survives a round trip intact.
func encodeTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return ""
	}
	return string(data)
}

func decodeTags(cell string) []string {
	if cell == "" {
		return nil
	}
	if strings.HasPrefix(cell, "[") {
		var tags []string
		if err := json.Unmarshal([]byte(cell), &tags); err == nil {
			return tags
		}
	}
	// Files written before tags were JSON encoded used a plain join.
	return strings.Split(cell, ", ")
}

func encodeCounter(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func decodeCounter(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
