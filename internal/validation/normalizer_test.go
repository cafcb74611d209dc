package validation

import (
	"testing"
)

func TestNormalizeAndValidate(t *testing.T) {
	tests := []struct {
		name       string
		input      []string
		platform   string
		wantValid  []string
		wantBad    int
		wantDupped int
	}{
		{
			name:      "valid tiktok video",
			input:     []string{"https://www.tiktok.com/@user/video/7123456789"},
			platform:  "tiktok",
			wantValid: []string{"https://tiktok.com/@user/video/7123456789"},
		},
		{
			name:      "tracking params stripped",
			input:     []string{"https://www.tiktok.com/@user/video/1?utm_source=share&utm_campaign=x"},
			platform:  "tiktok",
			wantValid: []string{"https://tiktok.com/@user/video/1"},
		},
		{
			name:       "intra-batch duplicate dropped silently",
			input:      []string{"https://tiktok.com/@u/video/1", "https://www.tiktok.com/@u/video/1/"},
			platform:   "tiktok",
			wantValid:  []string{"https://tiktok.com/@u/video/1"},
			wantDupped: 1,
		},
		{
			name:     "empty and whitespace rejected",
			input:    []string{"", "   "},
			platform: "tiktok",
			wantBad:  2,
		},
		{
			name:     "non http scheme rejected",
			input:    []string{"ftp://tiktok.com/@u/video/1"},
			platform: "tiktok",
			wantBad:  1,
		},
		{
			name:     "profile page is not a video resource",
			input:    []string{"https://www.tiktok.com/@user"},
			platform: "tiktok",
			wantBad:  1,
		},
		{
			name:     "platform mismatch rejected",
			input:    []string{"https://www.youtube.com/watch?v=abc"},
			platform: "tiktok",
			wantBad:  1,
		},
		{
			name:     "unsupported host rejected",
			input:    []string{"https://example.com/v/1"},
			platform: "",
			wantBad:  1,
		},
		{
			name:      "auto-detect mixes platforms",
			input:     []string{"https://youtu.be/abc123", "https://www.tiktok.com/@u/video/9"},
			platform:  "",
			wantValid: []string{"https://youtu.be/abc123", "https://tiktok.com/@u/video/9"},
		},
		{
			name:      "youtube shorts accepted",
			input:     []string{"https://www.youtube.com/shorts/xyz"},
			platform:  "youtube",
			wantValid: []string{"https://youtube.com/shorts/xyz"},
		},
		{
			name:     "youtube watch without id rejected",
			input:    []string{"https://www.youtube.com/watch"},
			platform: "youtube",
			wantBad:  1,
		},
		{
			name:      "twitter status accepted",
			input:     []string{"https://x.com/someone/status/12345"},
			platform:  "twitter",
			wantValid: []string{"https://x.com/someone/status/12345"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NormalizeAndValidate(tt.input, tt.platform)

			if len(res.Valid) != len(tt.wantValid) {
				t.Fatalf("expected %d valid, got %d: %v", len(tt.wantValid), len(res.Valid), res.Valid)
			}
			for i, want := range tt.wantValid {
				if res.Valid[i] != want {
					t.Errorf("valid[%d]: expected %q, got %q", i, want, res.Valid[i])
				}
			}
			if len(res.Invalid) != tt.wantBad {
				t.Errorf("expected %d invalid, got %d: %v", tt.wantBad, len(res.Invalid), res.Invalid)
			}
			if res.Duplicates != tt.wantDupped {
				t.Errorf("expected %d duplicates, got %d", tt.wantDupped, res.Duplicates)
			}
		})
	}
}

func TestNormalizeAndValidate_PreservesOrder(t *testing.T) {
	input := []string{
		"https://tiktok.com/@a/video/3",
		"https://tiktok.com/@a/video/1",
		"https://tiktok.com/@a/video/3",
		"https://tiktok.com/@a/video/2",
	}

	res := NormalizeAndValidate(input, "tiktok")

	want := []string{
		"https://tiktok.com/@a/video/3",
		"https://tiktok.com/@a/video/1",
		"https://tiktok.com/@a/video/2",
	}
	if len(res.Valid) != len(want) {
		t.Fatalf("expected %d valid, got %d", len(want), len(res.Valid))
	}
	for i := range want {
		if res.Valid[i] != want[i] {
			t.Errorf("valid[%d]: expected %q, got %q", i, want[i], res.Valid[i])
		}
	}
}

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"www.tiktok.com", "tiktok"},
		{"vm.tiktok.com", "tiktok"},
		{"youtu.be", "youtube"},
		{"m.youtube.com", "youtube"},
		{"instagr.am", "instagram"},
		{"x.com", "twitter"},
		{"example.com", ""},
	}

	for _, tt := range tests {
		if got := DetectPlatform(tt.host); got != tt.want {
			t.Errorf("DetectPlatform(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}
