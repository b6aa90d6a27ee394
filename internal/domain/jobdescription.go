package domain

import "time"

// JobDescription is the relational source of truth for one document in the
// corpus. The vector store holds a derived representation of Content; after a
// successful sync the store's records for this ID match the chunking of the
// current Content exactly.
type JobDescription struct {
	ID        string
	Title     string
	Label     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Chunk is a bounded-length piece of a document's content. Chunks are derived
// fresh on every sync and never persisted on their own.
type Chunk struct {
	Text  string
	Index int
}

// ValidateJobDescription checks required fields before persistence.
func ValidateJobDescription(jd *JobDescription) error {
	if jd.ID == "" {
		return ErrMissingRequiredField
	}
	if jd.Content == "" {
		return ErrMissingRequiredField
	}
	return nil
}
