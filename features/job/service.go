package job

import (
	"context"
	"log/slog"

	"brainweave/backend/internal/config"
)

type EventPublisher interface {
	Publish(topic string, body []byte) error
}

type Service struct {
	repo   Repository
	pub    EventPublisher
	logger *slog.Logger
}

func NewService(repo Repository, pub EventPublisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, pub: pub, logger: logger}
}

// Record persists a terminal ingestion failure for later inspection or retry.
func (s *Service) Record(ctx context.Context, job *Job) error {
	if err := s.repo.Save(ctx, job); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "recorded failed job",
		"video_id", job.VideoID, "handler", job.Handler, "error_code", job.ErrorCode)
	return nil
}

func (s *Service) List(ctx context.Context) ([]Job, error) {
	return s.repo.List(ctx)
}

// Retry requeues the original ingestion request and drops the failure
// record. The record is only deleted once the publish succeeded.
func (s *Service) Retry(ctx context.Context, id string) error {
	job, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.pub.Publish(config.TopicIngestTask, job.Payload); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "requeued failed job", "id", id, "video_id", job.VideoID)
	return s.repo.Delete(ctx, id)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
