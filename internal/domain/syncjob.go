package domain

import "time"

// SyncJobStatus represents the lifecycle state of a sync job
type SyncJobStatus string

const (
	SyncJobStatusPending    SyncJobStatus = "pending"
	SyncJobStatusProcessing SyncJobStatus = "processing"
	SyncJobStatusCompleted  SyncJobStatus = "completed"
	SyncJobStatusFailed     SyncJobStatus = "failed"
)

// IsValid checks whether the status is one of the known states
func (s SyncJobStatus) IsValid() bool {
	switch s {
	case SyncJobStatusPending, SyncJobStatusProcessing, SyncJobStatusCompleted, SyncJobStatusFailed:
		return true
	}
	return false
}

// SyncJob queues a single document for vector re-synchronization. Jobs are
// enqueued on create/update and drained by the background worker.
type SyncJob struct {
	ID               string
	JobDescriptionID string
	Status           SyncJobStatus
	Retries          int
	Error            string
	CreatedAt        time.Time
	ProcessedAt      *time.Time
}
