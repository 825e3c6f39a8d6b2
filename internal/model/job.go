package model

import (
	"fmt"
	"time"
)

// Operation names a heavy background operation the worker knows how to run.
type Operation string

const (
	OpGenerateReport        Operation = "generate_report"
	OpProcessImages         Operation = "process_images"
	OpSyncData              Operation = "sync_data"
	OpSendBulkNotifications Operation = "send_bulk_notifications"
	OpUpdateStatistics      Operation = "update_statistics"
	OpCleanupOldData        Operation = "cleanup_old_data"
	OpExportData            Operation = "export_data"
	OpImportData            Operation = "import_data"
)

// Operations lists every operation the worker dispatches on.
var Operations = []Operation{
	OpGenerateReport,
	OpProcessImages,
	OpSyncData,
	OpSendBulkNotifications,
	OpUpdateStatistics,
	OpCleanupOldData,
	OpExportData,
	OpImportData,
}

// ParseOperation validates an operation name against the dispatch table.
func ParseOperation(s string) (Operation, error) {
	for _, op := range Operations {
		if Operation(s) == op {
			return op, nil
		}
	}
	return "", fmt.Errorf("unknown operation: %q", s)
}

// JobState represents the lifecycle state of a background job.
type JobState string

const (
	// JobQueued indicates the job has been accepted and published but not picked up.
	JobQueued JobState = "queued"
	// JobProcessing indicates a worker is executing the job.
	JobProcessing JobState = "processing"
	// JobCompleted indicates the job finished and its result payload is available.
	JobCompleted JobState = "completed"
	// JobFailed indicates the last attempt failed.
	JobFailed JobState = "failed"
	// JobCancelled indicates the job was cancelled before execution.
	JobCancelled JobState = "cancelled"
)

// Terminal reports whether no further state transition is possible.
func (s JobState) Terminal() bool {
	return s == JobCompleted || s == JobFailed || s == JobCancelled
}

// JobRecord is the status record kept per job ID. It lives in the cache store
// with a TTL and carries no durable audit trail: an evicted record reads as
// unknown.
type JobRecord struct {
	JobID     string         `json:"job_id"`
	Operation Operation      `json:"operation"`
	Status    JobState       `json:"status"`
	UserID    string         `json:"user_id,omitempty"`
	Result    map[string]any `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}
