package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentsift/jobdex/internal/domain"
)

type fakeReader struct {
	docs map[string]*domain.JobDescription
	list []*domain.JobDescription
}

func (r *fakeReader) GetByID(ctx context.Context, id string) (*domain.JobDescription, error) {
	if jd, ok := r.docs[id]; ok {
		return jd, nil
	}
	return nil, domain.ErrJobDescriptionNotFound
}

func (r *fakeReader) List(ctx context.Context) ([]*domain.JobDescription, error) {
	return r.list, nil
}

type fakeVectorStore struct {
	records map[string][]domain.VectorRecord // keyed by job_description_id

	ensureCalls int
	ensureErr   error
	upsertErrOn string // fail upsert for this job_description_id
	deleteErr   error
	searchHits  []domain.SearchHit
	searchErr   error

	lastSearchVector []float32
	lastSearchLimit  int
	lastSearchLabel  string
}

func newFakeVectorStore() *fakeVectorStore {
	return &fakeVectorStore{records: make(map[string][]domain.VectorRecord)}
}

func (s *fakeVectorStore) EnsureCollection(ctx context.Context) error {
	s.ensureCalls++
	return s.ensureErr
}

func (s *fakeVectorStore) Upsert(ctx context.Context, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	jdID := records[0].Payload.JobDescriptionID
	if s.upsertErrOn != "" && jdID == s.upsertErrOn {
		return errors.New("upsert rejected")
	}
	s.records[jdID] = append(s.records[jdID], records...)
	return nil
}

func (s *fakeVectorStore) DeleteByJobDescriptionID(ctx context.Context, jobDescriptionID string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.records, jobDescriptionID)
	return nil
}

func (s *fakeVectorStore) Search(ctx context.Context, queryVector []float32, limit int, labelFilter string) ([]domain.SearchHit, error) {
	s.lastSearchVector = queryVector
	s.lastSearchLimit = limit
	s.lastSearchLabel = labelFilter
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.searchHits, nil
}

type fakeEmbedder struct {
	err        error
	embedCalls int
}

func (e *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.embedCalls++
	if e.err != nil {
		return nil, e.err
	}
	return []float32{float32(len(text))}, nil
}

func (e *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = []float32{float32(len(text))}
	}
	return vectors, nil
}

func testDoc(id, label, content string) *domain.JobDescription {
	now := time.Now().UTC()
	return &domain.JobDescription{
		ID:        id,
		Title:     "Title for " + id,
		Label:     label,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestSyncService_SyncOne_StoresPayloadMirroringDocument(t *testing.T) {
	jd := testDoc("doc-1", "engineering", "First paragraph.\n\nSecond paragraph.")
	reader := &fakeReader{docs: map[string]*domain.JobDescription{"doc-1": jd}}
	store := newFakeVectorStore()
	svc := NewSyncService(reader, store, &fakeEmbedder{}, 20)

	err := svc.SyncOne(context.Background(), "doc-1")

	require.NoError(t, err)
	records := store.records["doc-1"]
	require.Len(t, records, 2)
	for i, record := range records {
		assert.NotEmpty(t, record.ID)
		assert.Equal(t, "doc-1", record.Payload.JobDescriptionID)
		assert.Equal(t, "engineering", record.Payload.Label)
		assert.Equal(t, jd.Title, record.Payload.Title)
		assert.Equal(t, i, record.Payload.ChunkIndex)
		assert.Equal(t, jd.CreatedAt, record.Payload.CreatedAt)
		assert.Equal(t, jd.UpdatedAt, record.Payload.UpdatedAt)
	}
	assert.Equal(t, "First paragraph.", records[0].Payload.ChunkText)
	assert.Equal(t, "Second paragraph.", records[1].Payload.ChunkText)
}

func TestSyncService_SyncOne_DeletesStaleRecordsFirst(t *testing.T) {
	jd := testDoc("doc-1", "", "New content.")
	reader := &fakeReader{docs: map[string]*domain.JobDescription{"doc-1": jd}}
	store := newFakeVectorStore()
	store.records["doc-1"] = []domain.VectorRecord{{ID: "stale"}}
	svc := NewSyncService(reader, store, &fakeEmbedder{}, 500)

	require.NoError(t, svc.SyncOne(context.Background(), "doc-1"))

	records := store.records["doc-1"]
	require.Len(t, records, 1)
	assert.Equal(t, "New content.", records[0].Payload.ChunkText)
}

func TestSyncService_SyncOne_EmptyContentLeavesNoRecords(t *testing.T) {
	jd := testDoc("doc-1", "", "   \n\n  ")
	reader := &fakeReader{docs: map[string]*domain.JobDescription{"doc-1": jd}}
	store := newFakeVectorStore()
	store.records["doc-1"] = []domain.VectorRecord{{ID: "stale"}}
	svc := NewSyncService(reader, store, &fakeEmbedder{}, 500)

	require.NoError(t, svc.SyncOne(context.Background(), "doc-1"))

	assert.Empty(t, store.records["doc-1"])
}

func TestSyncService_SyncOne_UnknownDocument(t *testing.T) {
	reader := &fakeReader{docs: map[string]*domain.JobDescription{}}
	svc := NewSyncService(reader, newFakeVectorStore(), &fakeEmbedder{}, 500)

	err := svc.SyncOne(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrJobDescriptionNotFound)
}

func TestSyncService_SyncOne_EmbeddingFailureKeepsNothingStale(t *testing.T) {
	jd := testDoc("doc-1", "", "Some content.")
	reader := &fakeReader{docs: map[string]*domain.JobDescription{"doc-1": jd}}
	store := newFakeVectorStore()
	svc := NewSyncService(reader, store, &fakeEmbedder{err: errors.New("model down")}, 500)

	err := svc.SyncOne(context.Background(), "doc-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "model down")
	assert.Empty(t, store.records["doc-1"])
}

func TestSyncService_SyncAll_PartialFailure(t *testing.T) {
	docs := []*domain.JobDescription{
		testDoc("doc-1", "", "Content one."),
		testDoc("doc-2", "", "Content two."),
		testDoc("doc-3", "", "Content three."),
	}
	reader := &fakeReader{
		docs: map[string]*domain.JobDescription{"doc-1": docs[0], "doc-2": docs[1], "doc-3": docs[2]},
		list: docs,
	}
	store := newFakeVectorStore()
	store.upsertErrOn = "doc-2"
	svc := NewSyncService(reader, store, &fakeEmbedder{}, 500)

	summary, err := svc.SyncAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Synced)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "doc-2")

	// The failing document does not block the others.
	assert.NotEmpty(t, store.records["doc-1"])
	assert.NotEmpty(t, store.records["doc-3"])
	assert.Empty(t, store.records["doc-2"])
}

func TestSyncService_SyncOne_Idempotent(t *testing.T) {
	jd := testDoc("doc-1", "", "Stable content.")
	reader := &fakeReader{docs: map[string]*domain.JobDescription{"doc-1": jd}}
	store := newFakeVectorStore()
	svc := NewSyncService(reader, store, &fakeEmbedder{}, 500)

	var n int
	svc.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})

	require.NoError(t, svc.SyncOne(context.Background(), "doc-1"))
	first := store.records["doc-1"]

	require.NoError(t, svc.SyncOne(context.Background(), "doc-1"))
	second := store.records["doc-1"]

	require.Len(t, second, len(first))
	assert.Equal(t, first[0].Payload, second[0].Payload)
}
