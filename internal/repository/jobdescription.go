package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentsift/jobdex/internal/domain"
)

// JobDescriptionRepository handles persistence of job-description documents,
// the relational source of truth for the vector pipeline.
type JobDescriptionRepository struct {
	db dbtx
}

func NewJobDescriptionRepository(pool *pgxpool.Pool) *JobDescriptionRepository {
	return &JobDescriptionRepository{db: pool}
}

func NewJobDescriptionRepositoryWithTx(tx pgx.Tx) *JobDescriptionRepository {
	return &JobDescriptionRepository{db: tx}
}

func (r *JobDescriptionRepository) Create(ctx context.Context, jd *domain.JobDescription) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO job_descriptions (id, title, label, content, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		jd.ID, jd.Title, nullableString(jd.Label), jd.Content, jd.CreatedAt, jd.UpdatedAt,
	)
	return err
}

func (r *JobDescriptionRepository) GetByID(ctx context.Context, id string) (*domain.JobDescription, error) {
	var jd domain.JobDescription
	var label *string
	err := r.db.QueryRow(ctx,
		`SELECT id, title, label, content, created_at, updated_at
		 FROM job_descriptions WHERE id = $1`,
		id,
	).Scan(&jd.ID, &jd.Title, &label, &jd.Content, &jd.CreatedAt, &jd.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrJobDescriptionNotFound
		}
		return nil, err
	}
	if label != nil {
		jd.Label = *label
	}
	return &jd, nil
}

// List returns every document, most recently updated first.
func (r *JobDescriptionRepository) List(ctx context.Context) ([]*domain.JobDescription, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, label, content, created_at, updated_at
		 FROM job_descriptions ORDER BY updated_at DESC, id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobDescriptionRows(rows)
}

func (r *JobDescriptionRepository) Update(ctx context.Context, jd *domain.JobDescription) error {
	jd.UpdatedAt = time.Now().UTC()
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE job_descriptions SET title = $1, label = $2, content = $3, updated_at = $4
		 WHERE id = $5`,
		jd.Title, nullableString(jd.Label), jd.Content, jd.UpdatedAt, jd.ID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrJobDescriptionNotFound
	}
	return nil
}

func (r *JobDescriptionRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM job_descriptions WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrJobDescriptionNotFound
	}
	return nil
}

// ListLabels returns the distinct non-empty labels across the corpus.
func (r *JobDescriptionRepository) ListLabels(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT label FROM job_descriptions
		 WHERE label IS NOT NULL AND label <> ''
		 ORDER BY label`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	labels := make([]string, 0)
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

func scanJobDescriptionRows(rows pgx.Rows) ([]*domain.JobDescription, error) {
	var results []*domain.JobDescription
	for rows.Next() {
		var jd domain.JobDescription
		var label *string
		if err := rows.Scan(&jd.ID, &jd.Title, &label, &jd.Content, &jd.CreatedAt, &jd.UpdatedAt); err != nil {
			return nil, err
		}
		if label != nil {
			jd.Label = *label
		}
		results = append(results, &jd)
	}
	return results, rows.Err()
}
