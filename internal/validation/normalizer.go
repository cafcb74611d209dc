package validation

import (
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("media_url", validateMediaURL)
}

// InvalidURL pairs a rejected raw input with the reason it was rejected.
type InvalidURL struct {
	Raw    string `json:"raw"`
	Reason string `json:"reason"`
}

// Result is the outcome of normalizing one batch of raw URL strings.
// Valid preserves first-seen input order. Duplicates counts inputs dropped
// because an earlier input canonicalized to the same URL; they are not
// reported as invalid.
type Result struct {
	Valid      []string
	Invalid    []InvalidURL
	Duplicates int
}

var platformDomains = map[string][]string{
	"tiktok":    {"tiktok.com", "vm.tiktok.com", "vt.tiktok.com"},
	"youtube":   {"youtube.com", "youtu.be", "m.youtube.com"},
	"instagram": {"instagram.com", "instagr.am"},
	"twitter":   {"twitter.com", "x.com"},
}

var trackingParams = []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content"}

// NormalizeAndValidate canonicalizes, validates and deduplicates a batch of
// raw URL strings. When platform is empty the platform is auto-detected per
// URL; otherwise every URL must belong to the given platform. Pure function,
// no side effects.
func NormalizeAndValidate(raws []string, platform string) Result {
	var res Result
	seen := make(map[string]struct{}, len(raws))

	for _, raw := range raws {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			res.Invalid = append(res.Invalid, InvalidURL{Raw: raw, Reason: "empty URL"})
			continue
		}

		if err := validate.Var(trimmed, "media_url"); err != nil {
			res.Invalid = append(res.Invalid, InvalidURL{Raw: raw, Reason: "not an http(s) URL"})
			continue
		}

		u, err := url.Parse(trimmed)
		if err != nil {
			res.Invalid = append(res.Invalid, InvalidURL{Raw: raw, Reason: "unparsable URL"})
			continue
		}

		detected := DetectPlatform(u.Hostname())
		if detected == "" {
			res.Invalid = append(res.Invalid, InvalidURL{Raw: raw, Reason: "unsupported host"})
			continue
		}
		if platform != "" && detected != platform {
			res.Invalid = append(res.Invalid, InvalidURL{Raw: raw, Reason: "URL does not match platform " + platform})
			continue
		}

		if !isVideoResource(detected, u) {
			res.Invalid = append(res.Invalid, InvalidURL{Raw: raw, Reason: "not a video resource"})
			continue
		}

		canonical := Canonicalize(u)
		if _, dup := seen[canonical]; dup {
			res.Duplicates++
			continue
		}
		seen[canonical] = struct{}{}
		res.Valid = append(res.Valid, canonical)
	}

	return res
}

func validateMediaURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// DetectPlatform maps a hostname to a supported platform name, or "".
func DetectPlatform(host string) string {
	host = strings.ToLower(host)
	host = strings.TrimPrefix(host, "www.")
	for platform, domains := range platformDomains {
		for _, domain := range domains {
			if host == domain || strings.HasSuffix(host, "."+domain) {
				return platform
			}
		}
	}
	return ""
}

// isVideoResource rejects URLs that point at profiles, feeds or other
// non-video resource classes of a supported platform.
func isVideoResource(platform string, u *url.URL) bool {
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	path := u.Path

	switch platform {
	case "tiktok":
		// Short links redirect to a single video.
		if host == "vm.tiktok.com" || host == "vt.tiktok.com" {
			return len(strings.Trim(path, "/")) > 0
		}
		return strings.Contains(path, "/video/")
	case "youtube":
		if host == "youtu.be" {
			return len(strings.Trim(path, "/")) > 0
		}
		if strings.HasPrefix(path, "/shorts/") {
			return true
		}
		return path == "/watch" && u.Query().Get("v") != ""
	case "instagram":
		return strings.HasPrefix(path, "/p/") || strings.HasPrefix(path, "/reel/") || strings.HasPrefix(path, "/tv/")
	case "twitter":
		return strings.Contains(path, "/status/")
	}
	return false
}

// Canonicalize produces the canonical form of an already parsed URL:
// lowercase scheme and host, no www prefix, no tracking query parameters,
// no trailing slash.
func Canonicalize(u *url.URL) string {
	c := *u
	c.Scheme = strings.ToLower(c.Scheme)
	c.Host = strings.TrimPrefix(strings.ToLower(c.Host), "www.")
	c.Fragment = ""

	q := c.Query()
	for _, param := range trackingParams {
		q.Del(param)
	}
	c.RawQuery = q.Encode()

	c.Path = strings.TrimRight(c.Path, "/")
	return c.String()
}

// CanonicalString parses and canonicalizes a raw URL, returning the input
// unchanged when it does not parse.
func CanonicalString(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	return Canonicalize(u)
}
