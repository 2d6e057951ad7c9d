// Package worker consumes queued ingestion tasks from NSQ so batches of
// videos can be processed without holding an HTTP connection open.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nsqio/go-nsq"

	"brainweave/backend/features/ingest"
	"brainweave/backend/features/job"
	"brainweave/backend/internal/middleware"
	"brainweave/backend/internal/videoid"
)

type Ingestor interface {
	Ingest(ctx context.Context, req ingest.Request) (*ingest.Result, error)
}

type JobRecorder interface {
	Record(ctx context.Context, j *job.Job) error
}

type TaskConsumer struct {
	ingestor Ingestor
	jobs     JobRecorder
}

func NewTaskConsumer(i Ingestor, jobs JobRecorder) *TaskConsumer {
	return &TaskConsumer{ingestor: i, jobs: jobs}
}

// HandleMessage runs one queued ingestion. Terminal failures are recorded
// as failed jobs and the message is acked; only a failure to record the
// job requeues the message.
func (h *TaskConsumer) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	var payload IngestTaskPayload
	if err := json.Unmarshal(m.Body, &payload); err != nil {
		// Poison Pill: Invalid JSON, don't retry
		slog.Error("poison pill: invalid json", "error", err)
		return nil
	}

	correlationID := payload.CorrelationID
	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	ctx := middleware.WithCorrelationID(context.Background(), correlationID)

	slog.InfoContext(ctx, "processing queued ingestion", "url", payload.URL)

	result, err := h.ingestor.Ingest(ctx, ingest.Request{
		URL:       payload.URL,
		Language:  payload.Language,
		Provider:  payload.Provider,
		Overwrite: payload.Overwrite,
	})
	if err != nil {
		return h.recordFailure(ctx, m.Body, payload, err)
	}

	slog.InfoContext(ctx, "queued ingestion completed",
		"video_id", result.VideoID, "title", result.Title, "skipped", result.File != nil && result.File.Skipped)
	return nil
}

func (h *TaskConsumer) recordFailure(ctx context.Context, body []byte, payload IngestTaskPayload, ingErr error) error {
	code := ingest.CodeInternalError
	message := ingErr.Error()
	var iErr *ingest.Error
	if errors.As(ingErr, &iErr) {
		code = iErr.Code
		message = iErr.Message
	}

	slog.ErrorContext(ctx, "queued ingestion failed", "url", payload.URL, "error_code", code, "error", ingErr)

	videoID, idErr := videoid.Extract(payload.URL)
	if idErr != nil {
		videoID = payload.URL
	}

	j := &job.Job{
		VideoID:   videoID,
		Handler:   "ingest.task",
		Payload:   json.RawMessage(body),
		ErrorCode: code,
		Error:     message,
	}
	if err := h.jobs.Record(ctx, j); err != nil {
		slog.ErrorContext(ctx, "failed to record failed job, requeueing", "error", err)
		return err
	}
	return nil
}
