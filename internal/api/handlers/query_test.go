package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentsift/jobdex/internal/domain"
	"github.com/talentsift/jobdex/internal/service"
)

type fakeQueryService struct {
	output    *service.QueryOutput
	err       error
	lastInput service.QueryInput
}

func (s *fakeQueryService) Query(ctx context.Context, input service.QueryInput) (*service.QueryOutput, error) {
	s.lastInput = input
	if s.err != nil {
		return nil, s.err
	}
	return s.output, nil
}

func postQuery(t *testing.T, svc QueryService, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewQueryHandler(svc)
	req := httptest.NewRequest("POST", "/query", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Query(rec, req)
	return rec
}

func TestQueryHandler_Success(t *testing.T) {
	svc := &fakeQueryService{output: &service.QueryOutput{
		Answer: "Five years of Go.",
		Sources: []service.Source{
			{JobDescriptionID: "jd-1", Title: "Backend Engineer", Score: 0.9, ChunkText: "chunk"},
		},
	}}

	rec := postQuery(t, svc, `{"question":"What experience?","label":"engineering","top_k":3}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "What experience?", svc.lastInput.Question)
	assert.Equal(t, "engineering", svc.lastInput.Label)
	assert.Equal(t, 3, svc.lastInput.TopK)

	var resp struct {
		Data service.QueryOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Five years of Go.", resp.Data.Answer)
	require.Len(t, resp.Data.Sources, 1)
	assert.Equal(t, "jd-1", resp.Data.Sources[0].JobDescriptionID)
}

func TestQueryHandler_BlankQuestion(t *testing.T) {
	rec := postQuery(t, &fakeQueryService{}, `{"question":"   "}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "question is required")
}

func TestQueryHandler_InvalidBody(t *testing.T) {
	rec := postQuery(t, &fakeQueryService{}, `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryHandler_MissingCredential(t *testing.T) {
	svc := &fakeQueryService{err: domain.ErrChatCredentialMissing}

	rec := postQuery(t, svc, `{"question":"anything?"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryHandler_StoreUnavailable(t *testing.T) {
	svc := &fakeQueryService{err: domain.NewVectorStoreUnavailable(assert.AnError)}

	rec := postQuery(t, svc, `{"question":"anything?"}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
