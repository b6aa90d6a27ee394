package domain

import "time"

// VectorPayload is the denormalized snapshot stored alongside each embedding.
// Timestamps mirror the source document at sync time and are not re-validated
// afterward; stale records are deleted and replaced, never patched.
type VectorPayload struct {
	JobDescriptionID string    `json:"job_description_id"`
	Label            string    `json:"label"`
	Title            string    `json:"title"`
	ChunkText        string    `json:"chunk_text"`
	ChunkIndex       int       `json:"chunk_index"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Validate rejects payloads that would be unreadable at query time. The
// payload shape is checked explicitly at the store boundary rather than
// trusted implicitly.
func (p *VectorPayload) Validate() error {
	if p.JobDescriptionID == "" {
		return ErrMissingRequiredField
	}
	if p.ChunkText == "" {
		return ErrMissingRequiredField
	}
	if p.ChunkIndex < 0 {
		return NewDomainError(ErrCodeValidation, "chunk index must not be negative")
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		return NewDomainError(ErrCodeValidation, "payload timestamps must be set")
	}
	return nil
}

// VectorRecord is one embedded chunk as stored in the vector collection. IDs
// are generated fresh per chunk, independent of the chunk index, so concurrent
// re-syncs never collide on ids.
type VectorRecord struct {
	ID        string
	Embedding []float32
	Payload   VectorPayload
}

// SearchHit is one ranked result from a similarity search.
type SearchHit struct {
	ID      string
	Score   float32
	Payload VectorPayload
}
