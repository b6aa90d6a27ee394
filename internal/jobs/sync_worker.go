package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/talentsift/jobdex/internal/domain"
)

const (
	// MaxRetries is the maximum number of attempts for a failed sync job
	MaxRetries = 3
	// claimBatchSize bounds how many jobs one poll claims
	claimBatchSize = 20
)

// SyncJobRepository defines the interface for sync job persistence
type SyncJobRepository interface {
	ClaimPending(ctx context.Context, limit int) ([]*domain.SyncJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status domain.SyncJobStatus, errMsg string) error
	IncrementRetries(ctx context.Context, jobID string, errMsg string) error
}

// Synchronizer pushes one document into the vector collection
type Synchronizer interface {
	SyncOne(ctx context.Context, jobDescriptionID string) error
}

// SyncWorker drains queued sync jobs, replacing each document's vectors.
type SyncWorker struct {
	repo   SyncJobRepository
	syncer Synchronizer
}

// NewSyncWorker creates a new SyncWorker instance
func NewSyncWorker(repo SyncJobRepository, syncer Synchronizer) *SyncWorker {
	return &SyncWorker{
		repo:   repo,
		syncer: syncer,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *SyncWorker) ProcessJobs(ctx context.Context) error {
	jobs, err := w.repo.ClaimPending(ctx, claimBatchSize)
	if err != nil {
		return fmt.Errorf("failed to claim pending jobs: %w", err)
	}

	if len(jobs) == 0 {
		return nil
	}

	log.Printf("Processing %d pending sync jobs", len(jobs))

	for _, job := range jobs {
		if err := w.processJob(ctx, job); err != nil {
			log.Printf("Error processing job %s: %v", job.ID, err)
		}
	}

	return nil
}

// processJob runs one claimed job. The claim already flipped it to
// processing, so only the terminal status transitions happen here.
func (w *SyncWorker) processJob(ctx context.Context, job *domain.SyncJob) error {
	if err := w.syncer.SyncOne(ctx, job.JobDescriptionID); err != nil {
		// A document deleted after enqueue is a stale job, not a failure.
		if domain.HasCode(err, domain.ErrCodeNotFound) {
			log.Printf("Job %s references deleted job description %s, completing", job.ID, job.JobDescriptionID)
			return w.repo.UpdateJobStatus(ctx, job.ID, domain.SyncJobStatusCompleted, "job description no longer exists")
		}
		return w.handleJobFailure(ctx, job, err)
	}

	if err := w.repo.UpdateJobStatus(ctx, job.ID, domain.SyncJobStatusCompleted, ""); err != nil {
		return fmt.Errorf("failed to update job status to completed: %w", err)
	}

	log.Printf("Job %s completed successfully", job.ID)
	return nil
}

// handleJobFailure handles a failed job with retry logic
func (w *SyncWorker) handleJobFailure(ctx context.Context, job *domain.SyncJob, jobErr error) error {
	log.Printf("Job %s failed: %v", job.ID, jobErr)

	if job.Retries+1 >= MaxRetries {
		log.Printf("Job %s exceeded max retries (%d), marking as failed", job.ID, MaxRetries)
		errMsg := fmt.Sprintf("max retries exceeded: %v", jobErr)
		if err := w.repo.UpdateJobStatus(ctx, job.ID, domain.SyncJobStatusFailed, errMsg); err != nil {
			return fmt.Errorf("failed to update job status to failed: %w", err)
		}
		return nil
	}

	log.Printf("Job %s will be retried (attempt %d/%d)", job.ID, job.Retries+1, MaxRetries)
	errMsg := fmt.Sprintf("retry %d: %v", job.Retries+1, jobErr)
	if err := w.repo.IncrementRetries(ctx, job.ID, errMsg); err != nil {
		return fmt.Errorf("failed to increment retries: %w", err)
	}

	return nil
}
