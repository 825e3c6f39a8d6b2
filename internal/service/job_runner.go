package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/coprra/coprra/internal/metrics"
	"github.com/coprra/coprra/internal/model"
	"github.com/coprra/coprra/internal/sqs"
)

// RetryPolicy bounds how a job message is retried: redelivery stops after
// MaxAttempts, and each attempt runs under Timeout.
type RetryPolicy struct {
	MaxAttempts int
	Timeout     time.Duration
}

// DefaultRetryPolicy matches the queue's redelivery configuration.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 3,
	Timeout:     300 * time.Second,
}

// Runner executes job messages on the worker side and keeps the status
// record current through the job's lifecycle.
type Runner struct {
	statuses JobStatusStore
	policy   RetryPolicy
	runOp    func(ctx context.Context, op model.Operation, params map[string]string) (map[string]any, error)
}

func NewRunner(statuses JobStatusStore, policy RetryPolicy) *Runner {
	return &Runner{
		statuses: statuses,
		policy:   policy,
		runOp:    runOperation,
	}
}

// Handle runs one job message. Returning nil deletes the message; returning
// an error leaves it queued for redelivery. Unknown operations and exhausted
// attempts are terminal: the record is marked failed and the message deleted.
func (r *Runner) Handle(ctx context.Context, msg sqs.JobMessage, receiveCount int) error {
	rec, err := r.statuses.Find(ctx, msg.JobID)
	if err != nil {
		return err
	}
	if rec != nil && rec.Status == model.JobCancelled {
		slog.Info("Dropping cancelled job", slog.String("job_id", msg.JobID))
		return nil
	}
	if rec == nil {
		rec = &model.JobRecord{JobID: msg.JobID, UserID: msg.UserID}
	}

	op, err := model.ParseOperation(msg.Operation)
	if err != nil {
		rec.Operation = model.Operation(msg.Operation)
		rec.Status = model.JobFailed
		rec.Error = err.Error()
		metrics.JobsFailed.Inc()
		if writeErr := r.statuses.Write(ctx, rec); writeErr != nil {
			return writeErr
		}
		slog.Error("Unknown job operation", slog.String("job_id", msg.JobID), slog.String("operation", msg.Operation))
		return nil
	}
	rec.Operation = op

	rec.Status = model.JobProcessing
	rec.Error = ""
	if err := r.statuses.Write(ctx, rec); err != nil {
		return err
	}

	opCtx, cancel := context.WithTimeout(ctx, r.policy.Timeout)
	defer cancel()

	result, err := r.runOp(opCtx, op, msg.Params)
	if err != nil {
		rec.Status = model.JobFailed
		rec.Error = err.Error()
		if writeErr := r.statuses.Write(ctx, rec); writeErr != nil {
			return writeErr
		}

		if receiveCount >= r.policy.MaxAttempts {
			metrics.JobsFailed.Inc()
			slog.Error("Job failed, attempts exhausted",
				slog.Any("err", err),
				slog.String("job_id", msg.JobID),
				slog.String("operation", string(op)),
				slog.Int("attempts", receiveCount),
			)
			return nil
		}

		slog.Error("Job attempt failed, leaving message for redelivery",
			slog.Any("err", err),
			slog.String("job_id", msg.JobID),
			slog.String("operation", string(op)),
			slog.Int("attempt", receiveCount),
		)
		return err
	}

	rec.Status = model.JobCompleted
	rec.Result = result
	if err := r.statuses.Write(ctx, rec); err != nil {
		return err
	}

	metrics.JobsCompleted.Inc()
	slog.Info("Job completed", slog.String("job_id", msg.JobID), slog.String("operation", string(op)))
	return nil
}
