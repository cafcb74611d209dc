package validation

import (
	"net/url"
	"strings"
)

// DeriveVideoID extracts the platform's stable video identifier from a
// canonical URL when the URL embeds one. Short links (vm.tiktok.com and
// friends) resolve to an ID only after fetch, so this returns "" for them.
func DeriveVideoID(canonical string) string {
	u, err := url.Parse(canonical)
	if err != nil {
		return ""
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")

	switch DetectPlatform(host) {
	case "tiktok":
		if host == "vm.tiktok.com" || host == "vt.tiktok.com" {
			return ""
		}
		return segmentAfter(segments, "video")
	case "youtube":
		if host == "youtu.be" && len(segments) > 0 {
			return segments[0]
		}
		if id := u.Query().Get("v"); id != "" {
			return id
		}
		return segmentAfter(segments, "shorts")
	case "instagram":
		for _, kind := range []string{"p", "reel", "tv"} {
			if id := segmentAfter(segments, kind); id != "" {
				return id
			}
		}
	case "twitter":
		return segmentAfter(segments, "status")
	}
	return ""
}

func segmentAfter(segments []string, marker string) string {
	for i, seg := range segments {
		if seg == marker && i+1 < len(segments) {
			return segments[i+1]
		}
	}
	return ""
}
