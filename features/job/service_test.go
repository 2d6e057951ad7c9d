package job_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"brainweave/backend/features/job"
)

type MockRepo struct {
	mock.Mock
}

func (m *MockRepo) Save(ctx context.Context, j *job.Job) error {
	return m.Called(ctx, j).Error(0)
}

func (m *MockRepo) List(ctx context.Context) ([]job.Job, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]job.Job), args.Error(1)
}

func (m *MockRepo) Get(ctx context.Context, id string) (*job.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*job.Job), args.Error(1)
}

func (m *MockRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(topic string, body []byte) error {
	return m.Called(topic, body).Error(0)
}

func TestService_Retry(t *testing.T) {
	repo := new(MockRepo)
	pub := new(MockPublisher)
	svc := job.NewService(repo, pub, nil)

	payload := json.RawMessage(`{"url": "https://youtu.be/dQw4w9WgXcQ"}`)
	repo.On("Get", mock.Anything, "1").Return(&job.Job{ID: "1", Payload: payload}, nil)
	pub.On("Publish", "ingest.task", []byte(payload)).Return(nil)
	repo.On("Delete", mock.Anything, "1").Return(nil)

	err := svc.Retry(context.Background(), "1")
	require.NoError(t, err)

	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestService_Retry_PublishFailureKeepsRecord(t *testing.T) {
	repo := new(MockRepo)
	pub := new(MockPublisher)
	svc := job.NewService(repo, pub, nil)

	repo.On("Get", mock.Anything, "1").Return(&job.Job{ID: "1", Payload: json.RawMessage(`{}`)}, nil)
	pub.On("Publish", mock.Anything, mock.Anything).Return(assert.AnError)

	err := svc.Retry(context.Background(), "1")
	assert.Error(t, err)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestService_Record(t *testing.T) {
	repo := new(MockRepo)
	svc := job.NewService(repo, nil, nil)

	j := &job.Job{VideoID: "dQw4w9WgXcQ", ErrorCode: "RATE_LIMITED"}
	repo.On("Save", mock.Anything, j).Return(nil)

	assert.NoError(t, svc.Record(context.Background(), j))
	repo.AssertExpectations(t)
}
