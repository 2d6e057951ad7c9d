package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"brainweave/backend/internal/config"
	"brainweave/backend/internal/markdown"
	"brainweave/backend/internal/metadata"
	"brainweave/backend/internal/text"
	"brainweave/backend/internal/transcript"
	"brainweave/backend/internal/vault"
	"brainweave/backend/internal/videoid"
)

type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID, language string) (*transcript.Transcript, error)
}

type MetadataExtractor interface {
	Extract(ctx context.Context, chunks []text.Chunk, transcriptText, videoURL string) (*metadata.Metadata, error)
}

type ArtifactStore interface {
	FindExisting(videoID string) (string, bool)
	Filename(title, videoID, datePublished string) string
	Save(videoID, filename, content string, overwrite bool) (*vault.Outcome, error)
}

type EventPublisher interface {
	Publish(topic string, body []byte) error
}

// Options are pipeline knobs lifted from configuration.
type Options struct {
	DefaultProvider string
	DefaultLanguage string
	ChunkMaxChars   int
	ChunkOverlap    int
	LLMTimeout      time.Duration

	RateLimitAttempts int
	RateLimitDelay    time.Duration
}

type Service struct {
	transcripts TranscriptFetcher
	extractors  map[string]MetadataExtractor
	store       ArtifactStore
	pub         EventPublisher
	opts        Options

	sleep func(time.Duration)
}

func NewService(transcripts TranscriptFetcher, extractors map[string]MetadataExtractor, store ArtifactStore, pub EventPublisher, opts Options) *Service {
	return &Service{
		transcripts: transcripts,
		extractors:  extractors,
		store:       store,
		pub:         pub,
		opts:        opts,
		sleep:       time.Sleep,
	}
}

// Ingest runs the full pipeline for one video. Every failure is returned as
// an *Error carrying a stable code; the pipeline never panics outward.
func (s *Service) Ingest(ctx context.Context, req Request) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "ingestion panicked", "panic", r)
			result = nil
			err = newError(CodeInternalError, "unexpected internal failure", fmt.Errorf("panic: %v", r))
		}
	}()

	language := req.Language
	if language == "" {
		language = s.opts.DefaultLanguage
	}
	provider := req.Provider
	if provider == "" {
		provider = s.opts.DefaultProvider
	}

	videoID, err := videoid.Extract(req.URL)
	if err != nil {
		return nil, newError(CodeInvalidURL, "not a recognizable YouTube video reference", err)
	}
	watchURL := videoid.WatchURL(videoID)

	extractor, ok := s.extractors[provider]
	if !ok {
		return nil, newError(CodeInvalidConfiguration,
			fmt.Sprintf("LLM provider %q is not configured", provider), nil)
	}

	// Existence is checked before any network call so repeat requests stay
	// cheap and never burn provider quota.
	if !req.Overwrite {
		if existing, found := s.store.FindExisting(videoID); found {
			slog.InfoContext(ctx, "artifact already exists", "video_id", videoID, "path", existing)
			res := &Result{
				Success: true,
				VideoID: videoID,
				File:    &vault.Outcome{Path: existing, Filename: filepath.Base(existing), Skipped: true},
			}
			s.publishResult(ctx, res, nil)
			return res, nil
		}
	}

	tr, err := s.fetchTranscript(ctx, videoID, language)
	if err != nil {
		s.publishResult(ctx, &Result{VideoID: videoID}, err)
		return nil, err
	}
	transcriptText := tr.Text()
	slog.InfoContext(ctx, "transcript retrieved",
		"video_id", videoID, "language", tr.Language, "source", tr.Source, "chars", len(transcriptText))

	chunks, err := text.Split(transcriptText, s.opts.ChunkMaxChars, s.opts.ChunkOverlap)
	if err != nil {
		return nil, newError(CodeInvalidConfiguration, "invalid chunking configuration", err)
	}

	llmCtx := ctx
	if s.opts.LLMTimeout > 0 {
		var cancel context.CancelFunc
		llmCtx, cancel = context.WithTimeout(ctx, s.opts.LLMTimeout)
		defer cancel()
	}

	meta, err := extractor.Extract(llmCtx, chunks, transcriptText, watchURL)
	if err != nil {
		ingErr := mapExtractionError(err)
		s.publishResult(ctx, &Result{VideoID: videoID}, ingErr)
		return nil, ingErr
	}
	slog.InfoContext(ctx, "metadata extracted", "video_id", videoID, "title", meta.Title, "chunks", len(chunks))

	stats := tr.Stats()
	res := &Result{
		Success:         true,
		VideoID:         videoID,
		Title:           meta.Title,
		Language:        tr.Language,
		Source:          tr.Source,
		TranscriptStats: &stats,
		Metadata:        meta,
	}

	if !req.saveMarkdown() {
		slog.InfoContext(ctx, "persistence not requested, returning metadata only", "video_id", videoID)
		s.publishResult(ctx, res, nil)
		return res, nil
	}

	document := markdown.Render(meta)
	filename := s.store.Filename(meta.Title, videoID, meta.DatePublished)

	outcome, err := s.store.Save(videoID, filename, document, req.Overwrite)
	if err != nil {
		ingErr := newError(CodeStagingWriteError, "could not write artifact to staging area", err)
		s.publishResult(ctx, &Result{VideoID: videoID, Title: meta.Title}, ingErr)
		return nil, ingErr
	}

	res.File = outcome
	s.publishResult(ctx, res, nil)
	return res, nil
}

// fetchTranscript retries transient rate limits with linear backoff; all
// other transcript errors are terminal.
func (s *Service) fetchTranscript(ctx context.Context, videoID, language string) (*transcript.Transcript, error) {
	attempts := s.opts.RateLimitAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			s.sleep(s.opts.RateLimitDelay * time.Duration(i))
		}
		tr, err := s.transcripts.Fetch(ctx, videoID, language)
		if err == nil {
			return tr, nil
		}
		lastErr = err
		if errors.Is(err, transcript.ErrRateLimited) {
			slog.WarnContext(ctx, "transcript fetch rate limited, retrying",
				"video_id", videoID, "attempt", i+1, "max_attempts", attempts)
			continue
		}
		break
	}
	return nil, mapTranscriptError(lastErr)
}

func mapTranscriptError(err error) *Error {
	switch {
	case errors.Is(err, transcript.ErrCaptionsDisabled):
		return newError(CodeTranscriptsDisabled, "captions are disabled for this video", err)
	case errors.Is(err, transcript.ErrNoTranscript):
		return newError(CodeNoTranscriptFound, "no usable transcript found for this video", err)
	case errors.Is(err, transcript.ErrVideoUnavailable):
		return newError(CodeVideoUnavailable, "the video is unavailable or private", err)
	case errors.Is(err, transcript.ErrRateLimited):
		return newError(CodeRateLimited, "transcript provider rate limit exceeded", err)
	default:
		return newError(CodeInternalError, "transcript retrieval failed", err)
	}
}

func mapExtractionError(err error) *Error {
	switch {
	case errors.Is(err, metadata.ErrValidation):
		return newError(CodeLLMValidationError, "model output failed schema validation", err)
	default:
		return newError(CodeLLMExtractionError, "metadata extraction failed", err)
	}
}

// publishResult emits the outcome on the results topic. Best effort; a
// publish failure never fails the ingestion.
func (s *Service) publishResult(ctx context.Context, res *Result, ingErr error) {
	if s.pub == nil {
		return
	}
	event := map[string]interface{}{
		"video_id": res.VideoID,
		"status":   "completed",
	}
	if res.File != nil {
		event["file"] = res.File
	}
	var iErr *Error
	if errors.As(ingErr, &iErr) {
		event["status"] = "failed"
		event["error_code"] = iErr.Code
		event["error"] = iErr.Message
	}

	body, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := s.pub.Publish(config.TopicIngestResult, body); err != nil {
		slog.WarnContext(ctx, "failed to publish ingestion result", "video_id", res.VideoID, "error", err)
	}
}

