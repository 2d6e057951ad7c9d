// Package transcript recovers timed caption text for a video, falling back
// across caption sources and languages in priority order.
package transcript

import (
	"context"
	"errors"
	"strings"
	"time"
)

const (
	SourceManual = "manual"
	SourceAuto   = "auto"
)

var (
	ErrCaptionsDisabled = errors.New("captions are disabled for this video")
	ErrNoTranscript     = errors.New("no transcript available")
	ErrVideoUnavailable = errors.New("video is unavailable")
	ErrRateLimited      = errors.New("transcript source rate limit exceeded")
)

// Segment is one timed caption line. Segments are ordered by Start.
type Segment struct {
	Start    time.Duration `json:"start"`
	Duration time.Duration `json:"duration"`
	Text     string        `json:"text"`
}

// Track describes one caption track advertised by the source.
type Track struct {
	Language  string
	Generated bool
}

// Provider is the caption-source capability boundary. Implementations map
// their own failure signals onto the sentinel errors above.
type Provider interface {
	ListTracks(ctx context.Context, videoID string) ([]Track, error)
	FetchTrack(ctx context.Context, videoID string, track Track) ([]Segment, error)
}

type Transcript struct {
	Segments []Segment
	Language string
	Source   string
}

// Text joins segment text into a single cleaned string.
func (t *Transcript) Text() string {
	parts := make([]string, 0, len(t.Segments))
	for _, s := range t.Segments {
		if trimmed := strings.TrimSpace(s.Text); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	joined := strings.Join(parts, " ")
	return strings.Join(strings.Fields(joined), " ")
}

type Stats struct {
	CharacterCount int    `json:"character_count"`
	Language       string `json:"language"`
	Source         string `json:"source"`
	SegmentCount   int    `json:"segment_count"`
}

func (t *Transcript) Stats() Stats {
	return Stats{
		CharacterCount: len(t.Text()),
		Language:       t.Language,
		Source:         t.Source,
		SegmentCount:   len(t.Segments),
	}
}
