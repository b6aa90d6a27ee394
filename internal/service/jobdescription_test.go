package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentsift/jobdex/internal/domain"
)

type fakeDocRepo struct {
	docs    map[string]*domain.JobDescription
	created []*domain.JobDescription
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{docs: make(map[string]*domain.JobDescription)}
}

func (r *fakeDocRepo) Create(ctx context.Context, jd *domain.JobDescription) error {
	r.docs[jd.ID] = jd
	r.created = append(r.created, jd)
	return nil
}

func (r *fakeDocRepo) GetByID(ctx context.Context, id string) (*domain.JobDescription, error) {
	if jd, ok := r.docs[id]; ok {
		return jd, nil
	}
	return nil, domain.ErrJobDescriptionNotFound
}

func (r *fakeDocRepo) List(ctx context.Context) ([]*domain.JobDescription, error) {
	var out []*domain.JobDescription
	for _, jd := range r.docs {
		out = append(out, jd)
	}
	return out, nil
}

func (r *fakeDocRepo) Update(ctx context.Context, jd *domain.JobDescription) error {
	if _, ok := r.docs[jd.ID]; !ok {
		return domain.ErrJobDescriptionNotFound
	}
	r.docs[jd.ID] = jd
	return nil
}

func (r *fakeDocRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.docs[id]; !ok {
		return domain.ErrJobDescriptionNotFound
	}
	delete(r.docs, id)
	return nil
}

func (r *fakeDocRepo) ListLabels(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	var labels []string
	for _, jd := range r.docs {
		if jd.Label != "" && !seen[jd.Label] {
			seen[jd.Label] = true
			labels = append(labels, jd.Label)
		}
	}
	return labels, nil
}

type fakeEnqueuer struct {
	jobs []*domain.SyncJob
}

func (e *fakeEnqueuer) Create(ctx context.Context, job *domain.SyncJob) error {
	e.jobs = append(e.jobs, job)
	return nil
}

type fakeDeleter struct {
	deleted []string
}

func (d *fakeDeleter) DeleteByJobDescriptionID(ctx context.Context, id string) error {
	d.deleted = append(d.deleted, id)
	return nil
}

func TestJobDescriptionService_CreateEnqueuesSync(t *testing.T) {
	repo := newFakeDocRepo()
	queue := &fakeEnqueuer{}
	svc := NewJobDescriptionService(repo, queue, &fakeDeleter{})

	jd, err := svc.Create(context.Background(), CreateJobDescriptionInput{
		Title:   "Backend Engineer",
		Label:   "engineering",
		Content: "We build APIs.",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, jd.ID)
	assert.False(t, jd.CreatedAt.IsZero())

	require.Len(t, queue.jobs, 1)
	assert.Equal(t, jd.ID, queue.jobs[0].JobDescriptionID)
	assert.Equal(t, domain.SyncJobStatusPending, queue.jobs[0].Status)
}

func TestJobDescriptionService_CreateKeepsProvidedID(t *testing.T) {
	repo := newFakeDocRepo()
	svc := NewJobDescriptionService(repo, &fakeEnqueuer{}, &fakeDeleter{})

	jd, err := svc.Create(context.Background(), CreateJobDescriptionInput{
		ID:      "jd-custom",
		Content: "Content.",
	})

	require.NoError(t, err)
	assert.Equal(t, "jd-custom", jd.ID)
}

func TestJobDescriptionService_CreateRejectsEmptyContent(t *testing.T) {
	svc := NewJobDescriptionService(newFakeDocRepo(), &fakeEnqueuer{}, &fakeDeleter{})

	_, err := svc.Create(context.Background(), CreateJobDescriptionInput{Title: "No body"})

	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrCodeValidation))
}

func TestJobDescriptionService_UpdateEnqueuesSync(t *testing.T) {
	repo := newFakeDocRepo()
	queue := &fakeEnqueuer{}
	svc := NewJobDescriptionService(repo, queue, &fakeDeleter{})

	jd, err := svc.Create(context.Background(), CreateJobDescriptionInput{Content: "Old."})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), jd.ID, CreateJobDescriptionInput{
		Title:   "New title",
		Content: "New content.",
	})

	require.NoError(t, err)
	assert.Equal(t, "New content.", updated.Content)
	assert.Len(t, queue.jobs, 2)
}

func TestJobDescriptionService_UpdateUnknown(t *testing.T) {
	svc := NewJobDescriptionService(newFakeDocRepo(), &fakeEnqueuer{}, &fakeDeleter{})

	_, err := svc.Update(context.Background(), "missing", CreateJobDescriptionInput{Content: "x"})

	assert.ErrorIs(t, err, domain.ErrJobDescriptionNotFound)
}

func TestJobDescriptionService_DeleteRemovesVectors(t *testing.T) {
	repo := newFakeDocRepo()
	deleter := &fakeDeleter{}
	svc := NewJobDescriptionService(repo, &fakeEnqueuer{}, deleter)

	jd, err := svc.Create(context.Background(), CreateJobDescriptionInput{Content: "Content."})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), jd.ID))

	assert.Equal(t, []string{jd.ID}, deleter.deleted)
	_, err = svc.Get(context.Background(), jd.ID)
	assert.ErrorIs(t, err, domain.ErrJobDescriptionNotFound)
}
