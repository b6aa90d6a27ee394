package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/talentsift/jobdex/internal/domain"
	"github.com/talentsift/jobdex/internal/telemetry"
)

// JobDescriptionRepo is the write side of the relational store.
type JobDescriptionRepo interface {
	Create(ctx context.Context, jd *domain.JobDescription) error
	GetByID(ctx context.Context, id string) (*domain.JobDescription, error)
	List(ctx context.Context) ([]*domain.JobDescription, error)
	Update(ctx context.Context, jd *domain.JobDescription) error
	Delete(ctx context.Context, id string) error
	ListLabels(ctx context.Context) ([]string, error)
}

// SyncJobEnqueuer queues background vector-sync work.
type SyncJobEnqueuer interface {
	Create(ctx context.Context, job *domain.SyncJob) error
}

// VectorDeleter removes a document's vectors when the document goes away.
type VectorDeleter interface {
	DeleteByJobDescriptionID(ctx context.Context, jobDescriptionID string) error
}

// CreateJobDescriptionInput carries the writable document fields. ID is
// optional; a blank one gets a generated UUID.
type CreateJobDescriptionInput struct {
	ID      string
	Title   string
	Label   string
	Content string
}

// JobDescriptionService manages the document lifecycle. Every create and
// content update enqueues a background sync job so the vector collection
// converges without blocking the write path.
type JobDescriptionService struct {
	repo       JobDescriptionRepo
	syncJobs   SyncJobEnqueuer
	vectors    VectorDeleter
	generateID func() string
}

func NewJobDescriptionService(repo JobDescriptionRepo, syncJobs SyncJobEnqueuer, vectors VectorDeleter) *JobDescriptionService {
	return &JobDescriptionService{
		repo:       repo,
		syncJobs:   syncJobs,
		vectors:    vectors,
		generateID: uuid.NewString,
	}
}

func (s *JobDescriptionService) Create(ctx context.Context, input CreateJobDescriptionInput) (*domain.JobDescription, error) {
	ctx, span := telemetry.StartSpan(ctx, "JobDescriptionService.Create", telemetry.SpanAttributes{
		Label:     input.Label,
		Operation: "create",
	})
	defer span.End()

	now := time.Now().UTC()
	jd := &domain.JobDescription{
		ID:        strings.TrimSpace(input.ID),
		Title:     strings.TrimSpace(input.Title),
		Label:     strings.TrimSpace(input.Label),
		Content:   input.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if jd.ID == "" {
		jd.ID = s.generateID()
	}

	if err := domain.ValidateJobDescription(jd); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, jd); err != nil {
		return nil, fmt.Errorf("failed to create job description: %w", err)
	}

	s.enqueueSync(ctx, jd.ID)
	return jd, nil
}

func (s *JobDescriptionService) Get(ctx context.Context, id string) (*domain.JobDescription, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *JobDescriptionService) List(ctx context.Context) ([]*domain.JobDescription, error) {
	return s.repo.List(ctx)
}

func (s *JobDescriptionService) Update(ctx context.Context, id string, input CreateJobDescriptionInput) (*domain.JobDescription, error) {
	ctx, span := telemetry.StartSpan(ctx, "JobDescriptionService.Update", telemetry.SpanAttributes{
		JobDescriptionID: id,
		Operation:        "update",
	})
	defer span.End()

	jd, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	jd.Title = strings.TrimSpace(input.Title)
	jd.Label = strings.TrimSpace(input.Label)
	jd.Content = input.Content

	if err := domain.ValidateJobDescription(jd); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, jd); err != nil {
		return nil, fmt.Errorf("failed to update job description: %w", err)
	}

	s.enqueueSync(ctx, jd.ID)
	return jd, nil
}

// Delete removes the document and its vectors. The relational delete wins: a
// vector cleanup failure is logged, not surfaced, and a later full sync
// removes any leftovers.
func (s *JobDescriptionService) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "JobDescriptionService.Delete", telemetry.SpanAttributes{
		JobDescriptionID: id,
		Operation:        "delete",
	})
	defer span.End()

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.vectors.DeleteByJobDescriptionID(ctx, id); err != nil {
		log.Printf("jobdescription: failed to delete vectors for %s: %v", id, err)
	}
	return nil
}

func (s *JobDescriptionService) ListLabels(ctx context.Context) ([]string, error) {
	return s.repo.ListLabels(ctx)
}

// enqueueSync is best effort. The manual sync endpoints cover the case where
// enqueueing fails.
func (s *JobDescriptionService) enqueueSync(ctx context.Context, jobDescriptionID string) {
	job := &domain.SyncJob{
		ID:               s.generateID(),
		JobDescriptionID: jobDescriptionID,
		Status:           domain.SyncJobStatusPending,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.syncJobs.Create(ctx, job); err != nil {
		log.Printf("jobdescription: failed to enqueue sync job for %s: %v", jobDescriptionID, err)
	}
}
