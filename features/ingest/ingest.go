// Package ingest orchestrates the pipeline that turns a YouTube video into
// a markdown artifact in the knowledge vault: transcript retrieval,
// LLM metadata extraction, rendering and two-phase persistence.
package ingest

import (
	"brainweave/backend/internal/metadata"
	"brainweave/backend/internal/transcript"
	"brainweave/backend/internal/vault"
)

// Request describes one ingestion. Only URL is required. SaveMarkdown
// defaults to true when omitted; when explicitly false the extracted
// metadata is returned without persisting an artifact.
type Request struct {
	URL          string `json:"url"`
	Language     string `json:"language,omitempty"`
	Provider     string `json:"provider,omitempty"`
	SaveMarkdown *bool  `json:"save_markdown,omitempty"`
	Overwrite    bool   `json:"overwrite,omitempty"`
}

func (r Request) saveMarkdown() bool {
	return r.SaveMarkdown == nil || *r.SaveMarkdown
}

// Result reports a completed ingestion, including one that was skipped
// because the artifact already existed. File is nil when persistence was
// not requested.
type Result struct {
	Success         bool               `json:"success"`
	VideoID         string             `json:"video_id"`
	Title           string             `json:"title,omitempty"`
	Language        string             `json:"language,omitempty"`
	Source          string             `json:"source,omitempty"`
	TranscriptStats *transcript.Stats  `json:"transcript_stats,omitempty"`
	Metadata        *metadata.Metadata `json:"metadata,omitempty"`
	File            *vault.Outcome     `json:"file,omitempty"`
}
