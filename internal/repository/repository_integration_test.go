//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentsift/jobdex/internal/domain"
	"github.com/talentsift/jobdex/internal/testutil"
)

func setupPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	pc := testutil.NewPostgresContainer(ctx, t)
	t.Cleanup(func() { _ = pc.Terminate(ctx) })

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	t.Cleanup(pool.Close)
	return pool
}

func newTestJD(label string) *domain.JobDescription {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.JobDescription{
		ID:        uuid.NewString(),
		Title:     "Backend Engineer",
		Label:     label,
		Content:   "We build APIs in Go.",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestJobDescriptionRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	repo := NewJobDescriptionRepository(pool)

	jd := newTestJD("engineering")
	require.NoError(t, repo.Create(ctx, jd))

	fetched, err := repo.GetByID(ctx, jd.ID)
	require.NoError(t, err)
	assert.Equal(t, jd.Title, fetched.Title)
	assert.Equal(t, jd.Label, fetched.Label)
	assert.Equal(t, jd.Content, fetched.Content)

	fetched.Content = "Updated content."
	require.NoError(t, repo.Update(ctx, fetched))

	updated, err := repo.GetByID(ctx, jd.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated content.", updated.Content)
	assert.True(t, updated.UpdatedAt.After(jd.UpdatedAt) || updated.UpdatedAt.Equal(jd.UpdatedAt))

	require.NoError(t, repo.Delete(ctx, jd.ID))
	_, err = repo.GetByID(ctx, jd.ID)
	assert.ErrorIs(t, err, domain.ErrJobDescriptionNotFound)
}

func TestJobDescriptionRepository_UnlabeledRoundTrip(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	repo := NewJobDescriptionRepository(pool)

	jd := newTestJD("")
	require.NoError(t, repo.Create(ctx, jd))

	fetched, err := repo.GetByID(ctx, jd.ID)
	require.NoError(t, err)
	assert.Equal(t, "", fetched.Label)
}

func TestJobDescriptionRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	repo := NewJobDescriptionRepository(pool)

	_, err := repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrJobDescriptionNotFound)

	assert.ErrorIs(t, repo.Update(ctx, newTestJD("")), domain.ErrJobDescriptionNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, uuid.NewString()), domain.ErrJobDescriptionNotFound)
}

func TestJobDescriptionRepository_ListLabels(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	repo := NewJobDescriptionRepository(pool)

	for _, label := range []string{"engineering", "sales", "engineering", ""} {
		require.NoError(t, repo.Create(ctx, newTestJD(label)))
	}

	labels, err := repo.ListLabels(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"engineering", "sales"}, labels)
}

func TestSyncJobRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	docRepo := NewJobDescriptionRepository(pool)
	jobRepo := NewSyncJobRepository(pool)

	jd := newTestJD("")
	require.NoError(t, docRepo.Create(ctx, jd))

	job := &domain.SyncJob{
		ID:               uuid.NewString(),
		JobDescriptionID: jd.ID,
		Status:           domain.SyncJobStatusPending,
		CreatedAt:        time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, jobRepo.Create(ctx, job))

	claimed, err := jobRepo.ClaimPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, job.ID, claimed[0].ID)
	assert.Equal(t, domain.SyncJobStatusProcessing, claimed[0].Status)

	// The claim itself flipped the status, so a second poll sees nothing.
	again, err := jobRepo.ClaimPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, again)

	stored, err := jobRepo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncJobStatusProcessing, stored.Status)

	require.NoError(t, jobRepo.UpdateJobStatus(ctx, job.ID, domain.SyncJobStatusCompleted, ""))

	completed, err := jobRepo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncJobStatusCompleted, completed.Status)
	assert.NotNil(t, completed.ProcessedAt)
}

func TestSyncJobRepository_IncrementRetries(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	docRepo := NewJobDescriptionRepository(pool)
	jobRepo := NewSyncJobRepository(pool)

	jd := newTestJD("")
	require.NoError(t, docRepo.Create(ctx, jd))

	job := &domain.SyncJob{
		ID:               uuid.NewString(),
		JobDescriptionID: jd.ID,
		Status:           domain.SyncJobStatusProcessing,
		CreatedAt:        time.Now().UTC(),
	}
	require.NoError(t, jobRepo.Create(ctx, job))

	require.NoError(t, jobRepo.IncrementRetries(ctx, job.ID, "embedding failed"))

	fetched, err := jobRepo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fetched.Retries)
	assert.Equal(t, domain.SyncJobStatusPending, fetched.Status)
	assert.Equal(t, "embedding failed", fetched.Error)
}

func TestSyncJobRepository_CascadeOnDocumentDelete(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	docRepo := NewJobDescriptionRepository(pool)
	jobRepo := NewSyncJobRepository(pool)

	jd := newTestJD("")
	require.NoError(t, docRepo.Create(ctx, jd))

	job := &domain.SyncJob{
		ID:               uuid.NewString(),
		JobDescriptionID: jd.ID,
		Status:           domain.SyncJobStatusPending,
		CreatedAt:        time.Now().UTC(),
	}
	require.NoError(t, jobRepo.Create(ctx, job))

	require.NoError(t, docRepo.Delete(ctx, jd.ID))

	_, err := jobRepo.GetByID(ctx, job.ID)
	assert.ErrorIs(t, err, ErrSyncJobNotFound)
}

func TestSettingsRepository(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	repo := NewSettingsRepository(pool)

	// Missing keys are not errors.
	value, err := repo.Get(ctx, SettingOpenAIAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "", value)

	require.NoError(t, repo.Set(ctx, SettingOpenAIAPIKey, "sk-one"))
	require.NoError(t, repo.Set(ctx, SettingOpenAIAPIKey, "sk-two"))

	value, err = repo.Get(ctx, SettingOpenAIAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "sk-two", value)

	require.NoError(t, repo.Delete(ctx, SettingOpenAIAPIKey))
	value, err = repo.Get(ctx, SettingOpenAIAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "", value)
}
