// Package videoid resolves YouTube references in their many URL forms to the
// canonical 11-character video identifier.
package videoid

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var ErrInvalidReference = errors.New("no recognizable video identifier")

var (
	watchPattern = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/|youtube\.com/shorts/)([A-Za-z0-9_-]{11})`)
	idPattern    = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
)

// Extract pulls the video ID out of a watch, short-link, embed or shorts URL.
// Strings without a recognizable identifier are rejected rather than guessed at.
func Extract(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidReference
	}

	normalized := Normalize(raw)

	if m := watchPattern.FindStringSubmatch(normalized); m != nil {
		return m[1], nil
	}

	// Fallback for less common forms (m.youtube.com, trailing path junk)
	u, err := url.Parse(normalized)
	if err != nil || !isYouTubeHost(u.Hostname()) {
		return "", fmt.Errorf("%w: %s", ErrInvalidReference, raw)
	}

	if v := u.Query().Get("v"); idPattern.MatchString(v) {
		return v, nil
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) > 0 {
		candidate := parts[len(parts)-1]
		if idPattern.MatchString(candidate) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrInvalidReference, raw)
}

// WatchURL maps a video ID back to its single canonical watch-page URL.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

// Normalize strips tracking parameters and timestamps, keeping only the
// parts of the URL that identify the video.
func Normalize(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}

	query := u.Query()
	clean := url.Values{}
	if v := query.Get("v"); v != "" {
		clean.Set("v", v)
	}
	if list := query.Get("list"); list != "" {
		clean.Set("list", list)
	}

	normalized := u.Scheme + "://" + u.Host + u.Path
	if encoded := clean.Encode(); encoded != "" {
		normalized += "?" + encoded
	}
	return normalized
}

func isYouTubeHost(host string) bool {
	host = strings.ToLower(host)
	return host == "youtu.be" || host == "youtube.com" || strings.HasSuffix(host, ".youtube.com")
}
