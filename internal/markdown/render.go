// Package markdown renders extracted metadata into the canonical knowledge
// artifact document.
package markdown

import (
	"strings"
	"time"

	"brainweave/backend/internal/metadata"
)

// Render produces the artifact document: a machine-parseable header block
// followed by Summary, Key Points, optional Chapters, and the transcript.
// Output is deterministic for identical input and uses \n line endings only.
func Render(m *metadata.Metadata) string {
	var b strings.Builder

	writeHeader := func(key, value string) {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(headerValue(value))
		b.WriteString("\n")
	}

	writeHeader("Title", orUnknown(m.Title))
	writeHeader("Source", orUnknown(m.SourceURL))
	writeHeader("Type", typeLabel(m.SourceType))
	writeHeader("Date", formatDate(m.DatePublished))
	writeHeader("Host", orUnknown(m.Host))
	writeHeader("Guest(s)", orNone(strings.Join(m.Guests, ", ")))
	writeHeader("Topics", orNone(strings.Join(m.Topics, ", ")))
	writeHeader("Tags", orNone(strings.Join(m.Tags, ", ")))

	b.WriteString("\n# Summary\n\n")
	b.WriteString(normalizeNewlines(m.Summary))
	b.WriteString("\n")

	if len(m.KeyPoints) > 0 {
		b.WriteString("\n## Key Points\n\n")
		for _, p := range m.KeyPoints {
			b.WriteString("- ")
			b.WriteString(headerValue(p))
			b.WriteString("\n")
		}
	}

	if len(m.Chapters) > 0 {
		b.WriteString("\n## Chapters\n\n")
		for _, c := range m.Chapters {
			b.WriteString("- ")
			if c.Timestamp != "" {
				b.WriteString(c.Timestamp)
				b.WriteString(" ")
			}
			b.WriteString(headerValue(c.Title))
			if c.Summary != "" {
				b.WriteString(": ")
				b.WriteString(headerValue(c.Summary))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n## Transcript\n\n")
	b.WriteString(normalizeNewlines(m.Transcript))
	b.WriteString("\n")

	return b.String()
}

// headerValue collapses newlines and runs of whitespace so a value can never
// break the line-oriented header block on read-back.
func headerValue(v string) string {
	return strings.Join(strings.Fields(v), " ")
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimSpace(strings.ReplaceAll(s, "\r", "\n"))
}

// formatDate renders an ISO8601 publish date as DD-MM-YYYY, or Unknown.
func formatDate(value string) string {
	if value == "" {
		return "Unknown"
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("02-01-2006")
		}
	}
	return "Unknown"
}

func typeLabel(sourceType string) string {
	if sourceType == "" {
		return "Unknown"
	}
	return strings.ToUpper(sourceType[:1]) + sourceType[1:]
}

func orUnknown(v string) string {
	if strings.TrimSpace(v) == "" {
		return "Unknown"
	}
	return v
}

func orNone(v string) string {
	if strings.TrimSpace(v) == "" {
		return "None"
	}
	return v
}
