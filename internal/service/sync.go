package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/talentsift/jobdex/internal/domain"
	"github.com/talentsift/jobdex/internal/telemetry"
)

// JobDescriptionReader is the read side of the relational store needed by the
// synchronizer.
type JobDescriptionReader interface {
	GetByID(ctx context.Context, id string) (*domain.JobDescription, error)
	List(ctx context.Context) ([]*domain.JobDescription, error)
}

// VectorStore is the slice of the vector collection client the synchronizer
// and query engine depend on.
type VectorStore interface {
	EnsureCollection(ctx context.Context) error
	Upsert(ctx context.Context, records []domain.VectorRecord) error
	DeleteByJobDescriptionID(ctx context.Context, jobDescriptionID string) error
	Search(ctx context.Context, queryVector []float32, limit int, labelFilter string) ([]domain.SearchHit, error)
}

// Embedder turns text into vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// SyncSummary reports the outcome of a full-corpus sync. A partial failure is
// not an error at this level; callers inspect Failed and Errors.
type SyncSummary struct {
	Synced int      `json:"synced"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors,omitempty"`
}

// SyncService mirrors job descriptions from the relational store into the
// vector collection. Each document syncs as delete-then-insert, so a re-sync
// converges to exactly the current document state.
type SyncService struct {
	reader       JobDescriptionReader
	store        VectorStore
	embedder     Embedder
	maxChunkSize int
	generateID   func() string
}

func NewSyncService(reader JobDescriptionReader, store VectorStore, embedder Embedder, maxChunkSize int) *SyncService {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultMaxChunkSize
	}
	return &SyncService{
		reader:       reader,
		store:        store,
		embedder:     embedder,
		maxChunkSize: maxChunkSize,
		generateID:   uuid.NewString,
	}
}

// WithIDGenerator overrides vector record id generation. Used by tests.
func (s *SyncService) WithIDGenerator(gen func() string) *SyncService {
	s.generateID = gen
	return s
}

// SyncOne replaces the vector records for a single document. Old records are
// deleted first; a document whose content chunks to nothing ends up with no
// records at all.
func (s *SyncService) SyncOne(ctx context.Context, jobDescriptionID string) error {
	ctx, span := telemetry.StartSpan(ctx, "SyncService.SyncOne", telemetry.SpanAttributes{
		JobDescriptionID: jobDescriptionID,
		Operation:        "sync_one",
	})
	defer span.End()

	jd, err := s.reader.GetByID(ctx, jobDescriptionID)
	if err != nil {
		return err
	}

	if err := s.store.EnsureCollection(ctx); err != nil {
		return err
	}

	if err := s.store.DeleteByJobDescriptionID(ctx, jd.ID); err != nil {
		return fmt.Errorf("failed to delete stale vectors for %s: %w", jd.ID, err)
	}

	chunks := ChunkContent(jd.Content, s.maxChunkSize)
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed %s: %w", jd.ID, err)
	}

	records := make([]domain.VectorRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = domain.VectorRecord{
			ID:        s.generateID(),
			Embedding: vectors[i],
			Payload: domain.VectorPayload{
				JobDescriptionID: jd.ID,
				Label:            jd.Label,
				Title:            jd.Title,
				ChunkText:        chunk.Text,
				ChunkIndex:       chunk.Index,
				CreatedAt:        jd.CreatedAt,
				UpdatedAt:        jd.UpdatedAt,
			},
		}
	}

	if err := s.store.Upsert(ctx, records); err != nil {
		return fmt.Errorf("failed to upsert vectors for %s: %w", jd.ID, err)
	}
	return nil
}

// SyncAll re-syncs every document sequentially. One failing document does not
// stop the rest; failures are collected into the summary.
func (s *SyncService) SyncAll(ctx context.Context) (*SyncSummary, error) {
	ctx, span := telemetry.StartSpan(ctx, "SyncService.SyncAll", telemetry.SpanAttributes{
		Operation: "sync_all",
	})
	defer span.End()

	docs, err := s.reader.List(ctx)
	if err != nil {
		return nil, err
	}

	summary := &SyncSummary{}
	for _, jd := range docs {
		if err := s.SyncOne(ctx, jd.ID); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", jd.ID, err))
			log.Printf("sync: failed to sync job description %s: %v", jd.ID, err)
			continue
		}
		summary.Synced++
	}
	return summary, nil
}
