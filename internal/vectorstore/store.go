// Package vectorstore provides a synchronous client for the pgvector-backed
// vector collection holding embedded job-description chunks.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/talentsift/jobdex/internal/domain"
)

const (
	// DefaultCollection is the collection name for the job-description
	// corpus. It differs from the relational table name because both live in
	// the same database.
	DefaultCollection = "job_description_chunks"
	// deletePageSize caps how many records one delete statement removes,
	// mirroring a scroll cap on stores that enforce one.
	deletePageSize = 10000
)

// Collection names are interpolated into DDL/DML, so they are restricted to
// plain identifiers.
var collectionNameRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ErrInvalidCollectionName is returned when a collection name is not a plain
// lowercase identifier.
var ErrInvalidCollectionName = errors.New("collection name must be a lowercase identifier")

// Store is a thin synchronous wrapper over the vector collection: lifecycle,
// upsert, filtered delete, and cosine similarity search.
type Store struct {
	pool       *pgxpool.Pool
	collection string
	dimensions int
}

// New creates a Store for the named collection with the given vector
// dimensionality.
func New(pool *pgxpool.Pool, collection string, dimensions int) (*Store, error) {
	if collection == "" {
		collection = DefaultCollection
	}
	if !collectionNameRe.MatchString(collection) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCollectionName, collection)
	}
	if dimensions <= 0 {
		return nil, fmt.Errorf("vector dimensionality must be positive, got %d", dimensions)
	}
	return &Store{pool: pool, collection: collection, dimensions: dimensions}, nil
}

// Collection returns the collection name.
func (s *Store) Collection() string {
	return s.collection
}

// EnsureCollection creates the collection and its indexes if they do not
// exist. Idempotent; safe to call before every operation.
func (s *Store) EnsureCollection(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id text PRIMARY KEY,
			embedding vector(%d) NOT NULL,
			job_description_id text NOT NULL,
			label text,
			title text,
			chunk_text text NOT NULL,
			chunk_index int NOT NULL,
			created_at timestamptz NOT NULL,
			updated_at timestamptz NOT NULL
		)`, s.collection, s.dimensions),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_embedding_idx ON %s USING hnsw (embedding vector_cosine_ops)`, s.collection, s.collection),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_jd_idx ON %s (job_description_id)`, s.collection, s.collection),
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return classifyStoreError(err)
		}
	}
	return nil
}

// Upsert inserts or overwrites records by id inside one transaction. It
// returns only after the write is committed; there is no fire-and-forget path.
func (s *Store) Upsert(ctx context.Context, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	for i := range records {
		record := &records[i]
		if record.ID == "" {
			return domain.ErrMissingRequiredField
		}
		if len(record.Embedding) != s.dimensions {
			return fmt.Errorf("record %s has %d dimensions, collection expects %d", record.ID, len(record.Embedding), s.dimensions)
		}
		if err := record.Payload.Validate(); err != nil {
			return fmt.Errorf("record %s has invalid payload: %w", record.ID, err)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return classifyStoreError(err)
	}
	defer tx.Rollback(ctx)

	query := fmt.Sprintf(`INSERT INTO %s
			(id, embedding, job_description_id, label, title, chunk_text, chunk_index, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			job_description_id = EXCLUDED.job_description_id,
			label = EXCLUDED.label,
			title = EXCLUDED.title,
			chunk_text = EXCLUDED.chunk_text,
			chunk_index = EXCLUDED.chunk_index,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at`, s.collection)

	for _, record := range records {
		p := record.Payload
		_, err := tx.Exec(ctx, query,
			record.ID,
			pgvector.NewVector(record.Embedding),
			p.JobDescriptionID,
			nullableString(p.Label),
			nullableString(p.Title),
			p.ChunkText,
			p.ChunkIndex,
			p.CreatedAt,
			p.UpdatedAt,
		)
		if err != nil {
			return classifyStoreError(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return classifyStoreError(err)
	}
	return nil
}

// DeleteByJobDescriptionID removes every record whose payload references the
// given document, paging through matches in case the corpus for one id ever
// exceeds a single-call cap. No-op when nothing matches.
func (s *Store) DeleteByJobDescriptionID(ctx context.Context, jobDescriptionID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id IN (
			SELECT id FROM %s WHERE job_description_id = $1 LIMIT $2
		)`, s.collection, s.collection)

	for {
		tag, err := s.pool.Exec(ctx, query, jobDescriptionID, deletePageSize)
		if err != nil {
			return classifyStoreError(err)
		}
		if tag.RowsAffected() < deletePageSize {
			return nil
		}
	}
}

// CountByJobDescriptionID returns the number of stored records for one
// document.
func (s *Store) CountByJobDescriptionID(ctx context.Context, jobDescriptionID string) (int, error) {
	var count int
	query := fmt.Sprintf(`SELECT count(*) FROM %s WHERE job_description_id = $1`, s.collection)
	if err := s.pool.QueryRow(ctx, query, jobDescriptionID).Scan(&count); err != nil {
		return 0, classifyStoreError(err)
	}
	return count, nil
}

// Search runs a cosine nearest-neighbor query, optionally restricted to an
// exact label match. Results are ranked by descending similarity; fewer than
// limit rows come back when fewer match.
func (s *Store) Search(ctx context.Context, queryVector []float32, limit int, labelFilter string) ([]domain.SearchHit, error) {
	if len(queryVector) != s.dimensions {
		return nil, fmt.Errorf("query vector has %d dimensions, collection expects %d", len(queryVector), s.dimensions)
	}
	if limit <= 0 {
		limit = 5
	}

	vec := pgvector.NewVector(queryVector)

	query := fmt.Sprintf(`SELECT id, job_description_id, label, title, chunk_text, chunk_index, created_at, updated_at,
			1 - (embedding <=> $1) AS score
		 FROM %s`, s.collection)
	args := []interface{}{vec}

	if labelFilter != "" {
		query += ` WHERE label = $2`
		args = append(args, labelFilter)
	}

	query += fmt.Sprintf(` ORDER BY embedding <=> $1 LIMIT %d`, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, classifyStoreError(err)
	}
	defer rows.Close()

	var hits []domain.SearchHit
	for rows.Next() {
		var hit domain.SearchHit
		var label, title *string
		err := rows.Scan(
			&hit.ID,
			&hit.Payload.JobDescriptionID,
			&label,
			&title,
			&hit.Payload.ChunkText,
			&hit.Payload.ChunkIndex,
			&hit.Payload.CreatedAt,
			&hit.Payload.UpdatedAt,
			&hit.Score,
		)
		if err != nil {
			return nil, err
		}
		if label != nil {
			hit.Payload.Label = *label
		}
		if title != nil {
			hit.Payload.Title = *title
		}
		if err := hit.Payload.Validate(); err != nil {
			return nil, fmt.Errorf("record %s has invalid payload: %w", hit.ID, err)
		}
		hits = append(hits, hit)
	}

	if err := rows.Err(); err != nil {
		return nil, classifyStoreError(err)
	}
	return hits, nil
}

// DropCollection removes the collection entirely. Used by tests and admin
// tooling, never by the sync or query paths.
func (s *Store) DropCollection(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, s.collection))
	if err != nil {
		return classifyStoreError(err)
	}
	return nil
}

// classifyStoreError distinguishes "store unreachable" from generic store
// errors so callers can surface a service-unavailable response.
func classifyStoreError(err error) error {
	if err == nil {
		return nil
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return domain.NewVectorStoreUnavailable(err)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return domain.NewVectorStoreUnavailable(err)
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return domain.NewVectorStoreUnavailable(err)
	}

	return err
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
