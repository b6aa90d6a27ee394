package vectorstore

import (
	"errors"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentsift/jobdex/internal/domain"
)

func TestNew_ValidatesCollectionName(t *testing.T) {
	_, err := New(nil, "job_description_chunks", 384)
	assert.NoError(t, err)

	_, err = New(nil, "bad-name", 384)
	assert.ErrorIs(t, err, ErrInvalidCollectionName)

	_, err = New(nil, "1starts_with_digit", 384)
	assert.ErrorIs(t, err, ErrInvalidCollectionName)

	_, err = New(nil, "chunks; DROP TABLE users", 384)
	assert.ErrorIs(t, err, ErrInvalidCollectionName)
}

func TestNew_DefaultsCollectionName(t *testing.T) {
	store, err := New(nil, "", 384)
	require.NoError(t, err)
	assert.Equal(t, DefaultCollection, store.Collection())
}

func TestNew_RejectsNonPositiveDimensions(t *testing.T) {
	_, err := New(nil, "chunks", 0)
	assert.Error(t, err)

	_, err = New(nil, "chunks", -5)
	assert.Error(t, err)
}

func TestClassifyStoreError(t *testing.T) {
	assert.NoError(t, classifyStoreError(nil))

	opErr := &net.OpError{Op: "dial", Err: errors.New("connection refused")}
	classified := classifyStoreError(opErr)
	assert.True(t, domain.HasCode(classified, domain.ErrCodeUnavailable))

	classified = classifyStoreError(syscall.ECONNREFUSED)
	assert.True(t, domain.HasCode(classified, domain.ErrCodeUnavailable))

	plain := errors.New("syntax error at or near")
	assert.Equal(t, plain, classifyStoreError(plain))
	assert.False(t, domain.HasCode(classifyStoreError(plain), domain.ErrCodeUnavailable))
}

func TestVectorPayload_Validate(t *testing.T) {
	now := time.Now().UTC()
	valid := domain.VectorPayload{
		JobDescriptionID: "jd-1",
		ChunkText:        "text",
		ChunkIndex:       0,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	assert.NoError(t, valid.Validate())

	missingID := valid
	missingID.JobDescriptionID = ""
	assert.Error(t, missingID.Validate())

	missingText := valid
	missingText.ChunkText = ""
	assert.Error(t, missingText.Validate())

	negativeIndex := valid
	negativeIndex.ChunkIndex = -1
	assert.Error(t, negativeIndex.Validate())

	zeroTime := valid
	zeroTime.CreatedAt = time.Time{}
	assert.Error(t, zeroTime.Validate())
}
