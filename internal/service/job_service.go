package service

import (
	"context"
	"log/slog"

	"github.com/coprra/coprra/internal/metrics"
	"github.com/coprra/coprra/internal/model"
	"github.com/coprra/coprra/internal/repository"
	"github.com/coprra/coprra/internal/sqs"
	"github.com/google/uuid"
)

// JobPublisher publishes accepted jobs to the work queue.
type JobPublisher interface {
	PublishJobMessage(ctx context.Context, msg sqs.JobMessage) error
}

// JobStatusStore keeps per-job status records and the per-user job index.
type JobStatusStore interface {
	Write(ctx context.Context, rec *model.JobRecord) error
	Find(ctx context.Context, jobID string) (*model.JobRecord, error)
	AddUserJob(ctx context.Context, userID, jobID string) error
	UserJobs(ctx context.Context, userID string) ([]model.JobRecord, error)
}

// JobService accepts heavy operations, records their status and hands them to
// the worker via SQS.
type JobService struct {
	statuses  JobStatusStore
	publisher JobPublisher
}

func NewJobService(statuses JobStatusStore, publisher JobPublisher) *JobService {
	return &JobService{
		statuses:  statuses,
		publisher: publisher,
	}
}

// Enqueue validates the operation name, writes a queued status record,
// indexes the job under its owner and publishes the job message.
func (s *JobService) Enqueue(ctx context.Context, userID, operation string, params map[string]string) (*model.JobRecord, error) {
	op, err := model.ParseOperation(operation)
	if err != nil {
		return nil, repository.NewValidationError("operation", err.Error())
	}

	rec := &model.JobRecord{
		JobID:     uuid.NewString(),
		Operation: op,
		Status:    model.JobQueued,
		UserID:    userID,
	}
	if err := s.statuses.Write(ctx, rec); err != nil {
		return nil, err
	}
	if userID != "" {
		if err := s.statuses.AddUserJob(ctx, userID, rec.JobID); err != nil {
			return nil, err
		}
	}

	msg := sqs.JobMessage{
		JobID:     rec.JobID,
		Operation: string(op),
		UserID:    userID,
		Params:    params,
	}
	if err := s.publisher.PublishJobMessage(ctx, msg); err != nil {
		rec.Status = model.JobFailed
		rec.Error = "failed to publish job message"
		if writeErr := s.statuses.Write(ctx, rec); writeErr != nil {
			slog.Error("Failed to record publish failure", slog.Any("err", writeErr), slog.String("job_id", rec.JobID))
		}
		return nil, err
	}

	metrics.JobsEnqueued.Inc()
	slog.Info("Job enqueued", slog.String("job_id", rec.JobID), slog.String("operation", string(op)), slog.String("user_id", userID))
	return rec, nil
}

// Status returns the status record for a job, or nil when unknown or expired.
func (s *JobService) Status(ctx context.Context, jobID string) (*model.JobRecord, error) {
	return s.statuses.Find(ctx, jobID)
}

// UserStatuses returns the surviving status records for a user's jobs.
func (s *JobService) UserStatuses(ctx context.Context, userID string) ([]model.JobRecord, error) {
	return s.statuses.UserJobs(ctx, userID)
}

// Cancel marks a queued job cancelled. The worker drops cancelled jobs before
// dispatch; a job already in a terminal state is returned unchanged. A nil
// record means the job is unknown or expired.
func (s *JobService) Cancel(ctx context.Context, jobID string) (*model.JobRecord, error) {
	rec, err := s.statuses.Find(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	if rec.Status.Terminal() {
		return rec, nil
	}

	rec.Status = model.JobCancelled
	if err := s.statuses.Write(ctx, rec); err != nil {
		return nil, err
	}

	metrics.JobsCancelled.Inc()
	slog.Info("Job cancelled", slog.String("job_id", jobID))
	return rec, nil
}
