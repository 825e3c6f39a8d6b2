// Package redis provides Redis-backed repositories for short-lived records:
// background job status and session preferences.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coprra/coprra/internal/model"
	goredis "github.com/redis/go-redis/v9"
)

const (
	jobStatusKeyPrefix = "job:status:"
	userJobsKeyPrefix  = "job:user:"

	// JobStatusTTL bounds how long a job status record survives. There is no
	// durable audit trail: an evicted record reads as unknown.
	JobStatusTTL = time.Hour
)

// JobStatusRepository keeps per-job status records keyed by job ID, plus a
// per-user index of job IDs.
type JobStatusRepository struct {
	client *goredis.Client
}

// NewJobStatusRepository creates a new JobStatusRepository instance.
func NewJobStatusRepository(client *goredis.Client) *JobStatusRepository {
	return &JobStatusRepository{client: client}
}

// Write stores the record under its job ID, stamping UpdatedAt.
func (r *JobStatusRepository) Write(ctx context.Context, rec *model.JobRecord) error {
	rec.UpdatedAt = time.Now()
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal job record: %w", err)
	}
	if err := r.client.Set(ctx, jobStatusKeyPrefix+rec.JobID, data, JobStatusTTL).Err(); err != nil {
		return fmt.Errorf("failed to write job status: %w", err)
	}
	return nil
}

// Find returns the record for a job ID, or nil when unknown or expired.
func (r *JobStatusRepository) Find(ctx context.Context, jobID string) (*model.JobRecord, error) {
	data, err := r.client.Get(ctx, jobStatusKeyPrefix+jobID).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read job status: %w", err)
	}
	var rec model.JobRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job record: %w", err)
	}
	return &rec, nil
}

// AddUserJob indexes a job under its owner so per-user listings are possible.
func (r *JobStatusRepository) AddUserJob(ctx context.Context, userID, jobID string) error {
	key := userJobsKeyPrefix + userID
	if err := r.client.SAdd(ctx, key, jobID).Err(); err != nil {
		return fmt.Errorf("failed to index user job: %w", err)
	}
	if err := r.client.Expire(ctx, key, JobStatusTTL).Err(); err != nil {
		return fmt.Errorf("failed to expire user job index: %w", err)
	}
	return nil
}

// UserJobs returns the surviving status records for a user. Index entries
// whose status record has expired are pruned along the way.
func (r *JobStatusRepository) UserJobs(ctx context.Context, userID string) ([]model.JobRecord, error) {
	key := userJobsKeyPrefix + userID
	jobIDs, err := r.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list user jobs: %w", err)
	}

	var records []model.JobRecord
	for _, jobID := range jobIDs {
		rec, err := r.Find(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			if err := r.client.SRem(ctx, key, jobID).Err(); err != nil {
				return nil, fmt.Errorf("failed to prune expired job: %w", err)
			}
			continue
		}
		records = append(records, *rec)
	}
	return records, nil
}
