package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/avoronov/batchdl/internal/errors"
)

const sampleInfo = `{
	"id": "7234567890123456789",
	"title": "a cat does a thing",
	"description": "look at this #cat #funny",
	"uploader": "catperson",
	"uploader_id": "catperson42",
	"upload_date": "20250310",
	"duration": 17.0,
	"view_count": 150000,
	"like_count": 9000,
	"comment_count": 120,
	"repost_count": 45,
	"width": 1080,
	"height": 1920,
	"ext": "mp4",
	"filesize": 3145728,
	"webpage_url": "https://www.tiktok.com/@catperson/video/7234567890123456789",
	"_filename": "/downloads/clip__1.mp4"
}`

func TestParseInfo(t *testing.T) {
	info, err := ParseInfo([]byte(sampleInfo))
	assert.NoError(t, err)

	assert.Equal(t, "7234567890123456789", info.ID)
	assert.Equal(t, "a cat does a thing", info.Title)
	assert.Equal(t, 17.0, info.Duration)
	assert.Equal(t, int64(150000), *info.ViewCount)
	assert.Equal(t, int64(45), *info.RepostCount)
	assert.Equal(t, 1080, info.Width)
	assert.Equal(t, "/downloads/clip__1.mp4", info.Filename)
}

func TestParseInfo_AbsentCountersStayNil(t *testing.T) {
	info, err := ParseInfo([]byte(`{"id": "x", "title": "t"}`))
	assert.NoError(t, err)

	assert.Nil(t, info.ViewCount)
	assert.Nil(t, info.LikeCount)
	assert.Nil(t, info.CommentCount)
	assert.Nil(t, info.RepostCount)
}

func TestParseInfo_Invalid(t *testing.T) {
	_, err := ParseInfo([]byte("not json"))
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   apperrors.FetchCause
	}{
		{"unsupported", "ERROR: Unsupported URL: https://example.com", apperrors.CauseUnsupported},
		{"http 404", "ERROR: unable to download video: HTTP Error 404: Not Found", apperrors.CauseNotFound},
		{"unavailable", "ERROR: Video unavailable", apperrors.CauseNotFound},
		{"rate limited", "ERROR: HTTP Error 429: Too Many Requests", apperrors.CauseRateLimited},
		{"network", "ERROR: unable to download webpage: The read operation timed out", apperrors.CauseNetwork},
		{"unknown", "ERROR: something else entirely", apperrors.CauseUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.stderr, nil))
		})
	}
}
