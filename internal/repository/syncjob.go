package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentsift/jobdex/internal/domain"
)

// ErrSyncJobNotFound is returned when a sync job does not exist.
var ErrSyncJobNotFound = errors.New("sync job not found")

// SyncJobRepository handles persistence of background vector-sync jobs.
type SyncJobRepository struct {
	db dbtx
}

func NewSyncJobRepository(pool *pgxpool.Pool) *SyncJobRepository {
	return &SyncJobRepository{db: pool}
}

func NewSyncJobRepositoryWithTx(tx pgx.Tx) *SyncJobRepository {
	return &SyncJobRepository{db: tx}
}

func (r *SyncJobRepository) Create(ctx context.Context, job *domain.SyncJob) error {
	if !job.Status.IsValid() {
		return domain.ErrInvalidSyncJobStatus
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO sync_jobs (id, job_description_id, status, retries, error, created_at, processed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		job.ID, job.JobDescriptionID, job.Status, job.Retries, nullableString(job.Error), job.CreatedAt, job.ProcessedAt,
	)
	return err
}

func (r *SyncJobRepository) GetByID(ctx context.Context, id string) (*domain.SyncJob, error) {
	var job domain.SyncJob
	var errMsg *string
	err := r.db.QueryRow(ctx,
		`SELECT id, job_description_id, status, retries, error, created_at, processed_at
		 FROM sync_jobs WHERE id = $1`,
		id,
	).Scan(&job.ID, &job.JobDescriptionID, &job.Status, &job.Retries, &errMsg, &job.CreatedAt, &job.ProcessedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSyncJobNotFound
		}
		return nil, err
	}
	if errMsg != nil {
		job.Error = *errMsg
	}
	return &job, nil
}

// ClaimPending atomically flips up to limit pending jobs to processing and
// returns them, oldest first. The SKIP LOCKED select and the status update
// run as one statement, so a job is visible to exactly one worker.
func (r *SyncJobRepository) ClaimPending(ctx context.Context, limit int) ([]*domain.SyncJob, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(ctx,
		`WITH cte AS (
			 SELECT id
			 FROM sync_jobs
			 WHERE status = $1
			 ORDER BY created_at ASC
			 FOR UPDATE SKIP LOCKED
			 LIMIT $2
		 )
		 UPDATE sync_jobs
		 SET status = $3,
		     error = NULL,
		     processed_at = NULL
		 FROM cte
		 WHERE sync_jobs.id = cte.id
		 RETURNING sync_jobs.id, sync_jobs.job_description_id, sync_jobs.status,
		           sync_jobs.retries, sync_jobs.error, sync_jobs.created_at, sync_jobs.processed_at`,
		domain.SyncJobStatusPending, limit, domain.SyncJobStatusProcessing,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*domain.SyncJob
	for rows.Next() {
		var job domain.SyncJob
		var errMsg *string
		if err := rows.Scan(&job.ID, &job.JobDescriptionID, &job.Status, &job.Retries, &errMsg, &job.CreatedAt, &job.ProcessedAt); err != nil {
			return nil, err
		}
		if errMsg != nil {
			job.Error = *errMsg
		}
		jobs = append(jobs, &job)
	}
	return jobs, rows.Err()
}

func (r *SyncJobRepository) UpdateJobStatus(ctx context.Context, id string, status domain.SyncJobStatus, errMsg string) error {
	if !status.IsValid() {
		return domain.ErrInvalidSyncJobStatus
	}

	var processedAt *time.Time
	if status == domain.SyncJobStatusCompleted || status == domain.SyncJobStatusFailed {
		now := time.Now().UTC()
		processedAt = &now
	}

	cmdTag, err := r.db.Exec(ctx,
		`UPDATE sync_jobs SET status = $1, error = $2, processed_at = $3 WHERE id = $4`,
		status, nullableString(errMsg), processedAt, id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrSyncJobNotFound
	}
	return nil
}

// IncrementRetries bumps the retry counter and re-queues the job.
func (r *SyncJobRepository) IncrementRetries(ctx context.Context, id string, errMsg string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE sync_jobs SET retries = retries + 1, status = $1, error = $2 WHERE id = $3`,
		domain.SyncJobStatusPending, nullableString(errMsg), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrSyncJobNotFound
	}
	return nil
}

// DeleteCompletedBefore prunes completed jobs older than the cutoff.
func (r *SyncJobRepository) DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM sync_jobs WHERE status = $1 AND processed_at < $2`,
		domain.SyncJobStatusCompleted, cutoff,
	)
	if err != nil {
		return 0, err
	}
	return cmdTag.RowsAffected(), nil
}
