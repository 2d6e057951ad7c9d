package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"brainweave/backend/internal/text"
)

var (
	// ErrExtraction covers transport-level failures: the call itself failed
	// or the model returned nothing usable.
	ErrExtraction = errors.New("language model call failed")
	// ErrValidation means the model responded but the output still violated
	// the schema after one corrective retry.
	ErrValidation = errors.New("language model returned invalid metadata")
)

// Generator is the language-model capability boundary: one structured
// extraction call over a prompt, returning raw model output.
type Generator interface {
	ExtractStructured(ctx context.Context, prompt string) (string, error)
}

type Extractor struct {
	gen Generator
}

func NewExtractor(gen Generator) *Extractor {
	return &Extractor{gen: gen}
}

// Extract derives document-level metadata from the chunked transcript. A
// single chunk is one extraction call; multiple chunks get one partial call
// each, merged deterministically by chunk index, plus a final call condensing
// the per-chunk summaries. Any call failure aborts the whole extraction;
// partial results are discarded, never persisted.
func (e *Extractor) Extract(ctx context.Context, chunks []text.Chunk, transcriptText, videoURL string) (*Metadata, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no chunks to extract from", ErrExtraction)
	}

	if len(chunks) == 1 {
		m, err := e.extractOne(ctx, extractionPrompt(chunks[0].Content, videoURL))
		if err != nil {
			return nil, err
		}
		return e.finalize(m, transcriptText, videoURL)
	}

	slog.InfoContext(ctx, "extracting metadata from chunked transcript", "chunks", len(chunks))

	partials := make([]*Metadata, 0, len(chunks))
	for _, c := range chunks {
		m, err := e.extractOne(ctx, partialPrompt(c.Content, videoURL, c.Index, len(chunks)))
		if err != nil {
			return nil, err
		}
		partials = append(partials, m)
	}

	merged := mergePartials(partials)

	summary, err := e.condenseSummaries(ctx, partials)
	if err != nil {
		return nil, err
	}
	merged.Summary = summary

	return e.finalize(merged, transcriptText, videoURL)
}

// extractOne issues one structured call and validates the decoded result,
// retrying once with a corrective instruction on a schema violation.
func (e *Extractor) extractOne(ctx context.Context, prompt string) (*Metadata, error) {
	raw, err := e.call(ctx, prompt)
	if err != nil {
		return nil, err
	}

	m, verr := decodeMetadata(raw)
	if verr == nil {
		return m, nil
	}

	slog.WarnContext(ctx, "model output violated metadata schema, retrying with correction", "error", verr)
	raw, err = e.call(ctx, correctivePrompt(prompt, verr))
	if err != nil {
		return nil, err
	}
	m, verr = decodeMetadata(raw)
	if verr != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, verr)
	}
	return m, nil
}

func (e *Extractor) condenseSummaries(ctx context.Context, partials []*Metadata) (string, error) {
	sections := make([]string, 0, len(partials))
	for _, p := range partials {
		if p.Summary != "" {
			sections = append(sections, p.Summary)
		}
	}
	combined := strings.Join(sections, "\n\n")

	prompt := summaryPrompt(combined)
	raw, err := e.call(ctx, prompt)
	if err != nil {
		return "", err
	}

	summary, verr := decodeSummary(raw)
	if verr == nil {
		return summary, nil
	}

	raw, err = e.call(ctx, correctivePrompt(prompt, verr))
	if err != nil {
		return "", err
	}
	summary, verr = decodeSummary(raw)
	if verr != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, verr)
	}
	return summary, nil
}

func (e *Extractor) call(ctx context.Context, prompt string) (string, error) {
	raw, err := e.gen.ExtractStructured(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	raw = stripCodeFence(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty response", ErrExtraction)
	}
	return raw, nil
}

func (e *Extractor) finalize(m *Metadata, transcriptText, videoURL string) (*Metadata, error) {
	m.SourceURL = videoURL
	m.SourceType = "youtube"
	m.Transcript = transcriptText
	m.Normalize()
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return m, nil
}

// mergePartials combines per-chunk results in chunk index order: list fields
// are concatenated and deduplicated preserving first-seen order, scalar
// fields take the first non-empty value, chapters merge in time order.
func mergePartials(partials []*Metadata) *Metadata {
	merged := &Metadata{}
	for _, p := range partials {
		if merged.Title == "" {
			merged.Title = strings.TrimSpace(p.Title)
		}
		if merged.Host == "" {
			merged.Host = strings.TrimSpace(p.Host)
		}
		if merged.DatePublished == "" {
			merged.DatePublished = p.DatePublished
		}
		merged.Guests = append(merged.Guests, p.Guests...)
		merged.Topics = append(merged.Topics, p.Topics...)
		merged.Tags = append(merged.Tags, p.Tags...)
		merged.KeyPoints = append(merged.KeyPoints, p.KeyPoints...)
		merged.Chapters = append(merged.Chapters, p.Chapters...)
	}
	merged.Guests = dedupe(merged.Guests)
	merged.Topics = dedupe(merged.Topics)
	merged.Tags = dedupe(merged.Tags)
	merged.KeyPoints = dedupe(merged.KeyPoints)
	sortChapters(merged.Chapters)
	return merged
}

func decodeMetadata(raw string) (*Metadata, error) {
	var m Metadata
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %v", err)
	}
	m.Normalize()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func decodeSummary(raw string) (string, error) {
	var out struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return "", fmt.Errorf("response is not valid JSON: %v", err)
	}
	if strings.TrimSpace(out.Summary) == "" {
		return "", errors.New("summary must not be empty")
	}
	return strings.TrimSpace(out.Summary), nil
}

// stripCodeFence unwraps ```json fenced blocks some models insist on.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
