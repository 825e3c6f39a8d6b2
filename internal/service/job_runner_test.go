package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coprra/coprra/internal/model"
	"github.com/coprra/coprra/internal/service"
	"github.com/coprra/coprra/internal/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func instantOp(result map[string]any, err error) func(context.Context, model.Operation, map[string]string) (map[string]any, error) {
	return func(context.Context, model.Operation, map[string]string) (map[string]any, error) {
		return result, err
	}
}

func TestRunnerHandle(t *testing.T) {
	ctx := context.Background()
	policy := service.RetryPolicy{MaxAttempts: 3, Timeout: time.Second}

	t.Run("successful job ends completed with result", func(t *testing.T) {
		store := newMemoryJobStore()
		require.NoError(t, store.Write(ctx, &model.JobRecord{JobID: "job-1", Operation: model.OpGenerateReport, Status: model.JobQueued, UserID: "u1"}))

		runner := service.NewRunner(store, policy)
		runner.SetRunOp(instantOp(map[string]any{"rows": 42}, nil))

		err := runner.Handle(ctx, sqs.JobMessage{JobID: "job-1", Operation: "generate_report", UserID: "u1"}, 1)
		require.NoError(t, err)

		rec, err := store.Find(ctx, "job-1")
		require.NoError(t, err)
		assert.Equal(t, model.JobCompleted, rec.Status)
		assert.Equal(t, map[string]any{"rows": 42}, rec.Result)

		assert.Equal(t, []model.JobState{model.JobQueued, model.JobProcessing, model.JobCompleted}, store.writes)
	})

	t.Run("cancelled job is dropped before dispatch", func(t *testing.T) {
		store := newMemoryJobStore()
		require.NoError(t, store.Write(ctx, &model.JobRecord{JobID: "job-1", Operation: model.OpSyncData, Status: model.JobCancelled}))

		runner := service.NewRunner(store, policy)
		runner.SetRunOp(func(context.Context, model.Operation, map[string]string) (map[string]any, error) {
			t.Fatal("cancelled job must not run")
			return nil, nil
		})

		err := runner.Handle(ctx, sqs.JobMessage{JobID: "job-1", Operation: "sync_data"}, 1)
		require.NoError(t, err)

		rec, err := store.Find(ctx, "job-1")
		require.NoError(t, err)
		assert.Equal(t, model.JobCancelled, rec.Status)
	})

	t.Run("unknown operation fails terminally", func(t *testing.T) {
		store := newMemoryJobStore()
		runner := service.NewRunner(store, policy)
		runner.SetRunOp(func(context.Context, model.Operation, map[string]string) (map[string]any, error) {
			t.Fatal("unknown operation must not run")
			return nil, nil
		})

		err := runner.Handle(ctx, sqs.JobMessage{JobID: "job-x", Operation: "mine_bitcoin"}, 1)
		require.NoError(t, err, "message is deleted, retrying has no value")

		rec, err := store.Find(ctx, "job-x")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, model.JobFailed, rec.Status)
		assert.Contains(t, rec.Error, "unknown operation")
		assert.NotContains(t, store.writes, model.JobCompleted)
	})

	t.Run("failed attempt leaves the message for redelivery", func(t *testing.T) {
		store := newMemoryJobStore()
		runner := service.NewRunner(store, policy)
		runner.SetRunOp(instantOp(nil, errors.New("upstream timeout")))

		err := runner.Handle(ctx, sqs.JobMessage{JobID: "job-1", Operation: "import_data"}, 1)
		require.Error(t, err)

		rec, findErr := store.Find(ctx, "job-1")
		require.NoError(t, findErr)
		assert.Equal(t, model.JobFailed, rec.Status)
		assert.Equal(t, "upstream timeout", rec.Error)
	})

	t.Run("exhausted attempts delete the message", func(t *testing.T) {
		store := newMemoryJobStore()
		runner := service.NewRunner(store, policy)
		runner.SetRunOp(instantOp(nil, errors.New("upstream timeout")))

		err := runner.Handle(ctx, sqs.JobMessage{JobID: "job-1", Operation: "import_data"}, policy.MaxAttempts)
		require.NoError(t, err, "message is deleted after the last attempt")

		rec, findErr := store.Find(ctx, "job-1")
		require.NoError(t, findErr)
		assert.Equal(t, model.JobFailed, rec.Status)
	})

	t.Run("retried job runs again after a recorded failure", func(t *testing.T) {
		store := newMemoryJobStore()
		require.NoError(t, store.Write(ctx, &model.JobRecord{JobID: "job-1", Operation: model.OpImportData, Status: model.JobFailed, Error: "upstream timeout"}))

		runner := service.NewRunner(store, policy)
		runner.SetRunOp(instantOp(map[string]any{"imported": 10}, nil))

		err := runner.Handle(ctx, sqs.JobMessage{JobID: "job-1", Operation: "import_data"}, 2)
		require.NoError(t, err)

		rec, findErr := store.Find(ctx, "job-1")
		require.NoError(t, findErr)
		assert.Equal(t, model.JobCompleted, rec.Status)
		assert.Empty(t, rec.Error)
	})
}

func TestRunnerAttemptTimeout(t *testing.T) {
	ctx := context.Background()
	store := newMemoryJobStore()
	runner := service.NewRunner(store, service.RetryPolicy{MaxAttempts: 3, Timeout: 10 * time.Millisecond})
	runner.SetRunOp(func(opCtx context.Context, _ model.Operation, _ map[string]string) (map[string]any, error) {
		<-opCtx.Done()
		return nil, opCtx.Err()
	})

	err := runner.Handle(ctx, sqs.JobMessage{JobID: "job-slow", Operation: "cleanup_old_data"}, 1)
	require.Error(t, err)

	rec, findErr := store.Find(ctx, "job-slow")
	require.NoError(t, findErr)
	assert.Equal(t, model.JobFailed, rec.Status)
	assert.Contains(t, rec.Error, "context deadline exceeded")
}

func TestRunOperationRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, op := range model.Operations {
		_, err := service.RunOperation(ctx, op, nil)
		require.Error(t, err, string(op))
		assert.ErrorIs(t, err, context.Canceled, string(op))
	}
}
