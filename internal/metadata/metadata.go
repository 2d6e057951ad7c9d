// Package metadata derives structured video metadata from transcript text via
// a language-model capability, validating and merging the model's output.
package metadata

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

type Chapter struct {
	Title     string `json:"title"`
	Timestamp string `json:"timestamp,omitempty"`
	Summary   string `json:"summary"`
}

// Metadata is the structured knowledge extracted from one video.
type Metadata struct {
	Title         string    `json:"title"`
	SourceURL     string    `json:"source_url"`
	SourceType    string    `json:"source_type"`
	DatePublished string    `json:"date_published,omitempty"`
	Host          string    `json:"host,omitempty"`
	Guests        []string  `json:"guests"`
	Topics        []string  `json:"topics"`
	Tags          []string  `json:"tags"`
	Summary       string    `json:"summary"`
	KeyPoints     []string  `json:"key_points"`
	Chapters      []Chapter `json:"chapters,omitempty"`
	Transcript    string    `json:"transcript"`
}

// Normalize cleans fields the model tends to get sloppy about: empty or
// duplicate list entries, unparseable dates, unordered chapters.
func (m *Metadata) Normalize() {
	m.Title = strings.TrimSpace(m.Title)
	m.Summary = strings.TrimSpace(m.Summary)
	m.Host = strings.TrimSpace(m.Host)
	m.Guests = dedupe(m.Guests)
	m.Topics = dedupe(m.Topics)
	m.Tags = dedupe(m.Tags)
	m.KeyPoints = dedupe(m.KeyPoints)

	if m.DatePublished != "" && parseDate(m.DatePublished) == nil {
		m.DatePublished = ""
	}

	if m.SourceType == "" {
		m.SourceType = "youtube"
	}

	sortChapters(m.Chapters)
}

// Validate reports whether the structure satisfies the metadata schema.
// Callers should Normalize first.
func (m *Metadata) Validate() error {
	if m.Title == "" {
		return errors.New("title must not be empty")
	}
	if m.Summary == "" {
		return errors.New("summary must not be empty")
	}
	for _, c := range m.Chapters {
		if strings.TrimSpace(c.Title) == "" {
			return errors.New("chapter title must not be empty")
		}
	}
	return nil
}

// dedupe removes empty entries and case-insensitive duplicates, preserving
// first-seen order and casing.
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, v)
	}
	return result
}

func parseDate(value string) *time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

// sortChapters orders chapters by timestamp, keeping untimed chapters in
// their relative position at the end.
func sortChapters(chapters []Chapter) {
	sort.SliceStable(chapters, func(i, j int) bool {
		ti, iok := parseTimestamp(chapters[i].Timestamp)
		tj, jok := parseTimestamp(chapters[j].Timestamp)
		if iok && jok {
			return ti < tj
		}
		return iok && !jok
	})
}

// parseTimestamp reads "HH:MM:SS" or "MM:SS" into seconds.
func parseTimestamp(ts string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(ts), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	total := 0
	for _, p := range parts {
		var n int
		if _, err := fmt.Sscanf(p, "%d", &n); err != nil || n < 0 {
			return 0, false
		}
		total = total*60 + n
	}
	return total, true
}
