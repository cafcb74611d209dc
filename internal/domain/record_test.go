package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormattedDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, ""},
		{-5, ""},
		{7, "00:07"},
		{65, "01:05"},
		{600, "10:00"},
		{3661, "61:01"},
	}

	for _, tt := range tests {
		r := &Record{DurationSec: tt.seconds}
		assert.Equal(t, tt.want, r.FormattedDuration(), "seconds=%d", tt.seconds)
	}
}

func TestExtractTags(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"no tags", "just a caption", nil},
		{"tags mixed with text", "check this out #cats #funny end", []string{"#cats", "#funny"}},
		{"bare hash ignored", "lonely # sign", nil},
		{"tag only", "#one", []string{"#one"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTags(tt.text))
		})
	}
}
