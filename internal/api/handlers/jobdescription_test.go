package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentsift/jobdex/internal/domain"
	"github.com/talentsift/jobdex/internal/service"
)

type fakeDocService struct {
	docs   map[string]*domain.JobDescription
	labels []string
}

func newFakeDocService() *fakeDocService {
	return &fakeDocService{docs: make(map[string]*domain.JobDescription)}
}

func (s *fakeDocService) Create(ctx context.Context, input service.CreateJobDescriptionInput) (*domain.JobDescription, error) {
	id := input.ID
	if id == "" {
		id = "generated-id"
	}
	now := time.Now().UTC()
	jd := &domain.JobDescription{ID: id, Title: input.Title, Label: input.Label, Content: input.Content, CreatedAt: now, UpdatedAt: now}
	s.docs[id] = jd
	return jd, nil
}

func (s *fakeDocService) Get(ctx context.Context, id string) (*domain.JobDescription, error) {
	if jd, ok := s.docs[id]; ok {
		return jd, nil
	}
	return nil, domain.ErrJobDescriptionNotFound
}

func (s *fakeDocService) List(ctx context.Context) ([]*domain.JobDescription, error) {
	var out []*domain.JobDescription
	for _, jd := range s.docs {
		out = append(out, jd)
	}
	return out, nil
}

func (s *fakeDocService) Update(ctx context.Context, id string, input service.CreateJobDescriptionInput) (*domain.JobDescription, error) {
	jd, ok := s.docs[id]
	if !ok {
		return nil, domain.ErrJobDescriptionNotFound
	}
	jd.Title, jd.Label, jd.Content = input.Title, input.Label, input.Content
	return jd, nil
}

func (s *fakeDocService) Delete(ctx context.Context, id string) error {
	if _, ok := s.docs[id]; !ok {
		return domain.ErrJobDescriptionNotFound
	}
	delete(s.docs, id)
	return nil
}

func (s *fakeDocService) ListLabels(ctx context.Context) ([]string, error) {
	return s.labels, nil
}

func newDocRouter(svc JobDescriptionService) http.Handler {
	h := NewJobDescriptionHandler(svc)
	r := chi.NewRouter()
	r.Get("/labels", h.Labels)
	r.Route("/job-descriptions", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
	return r
}

func TestJobDescriptionHandler_CreateAndGet(t *testing.T) {
	svc := newFakeDocService()
	router := newDocRouter(svc)

	body := `{"id":"jd-1","title":"Backend Engineer","label":"engineering","content":"We build APIs."}`
	req := httptest.NewRequest("POST", "/job-descriptions", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	req = httptest.NewRequest("GET", "/job-descriptions/jd-1", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data JobDescriptionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "jd-1", resp.Data.ID)
	assert.Equal(t, "Backend Engineer", resp.Data.Title)
	assert.Equal(t, "engineering", resp.Data.Label)
}

func TestJobDescriptionHandler_CreateRequiresContent(t *testing.T) {
	router := newDocRouter(newFakeDocService())

	req := httptest.NewRequest("POST", "/job-descriptions", strings.NewReader(`{"title":"No body"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJobDescriptionHandler_GetNotFound(t *testing.T) {
	router := newDocRouter(newFakeDocService())

	req := httptest.NewRequest("GET", "/job-descriptions/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJobDescriptionHandler_Delete(t *testing.T) {
	svc := newFakeDocService()
	_, err := svc.Create(context.Background(), service.CreateJobDescriptionInput{ID: "jd-1", Content: "x"})
	require.NoError(t, err)
	router := newDocRouter(svc)

	req := httptest.NewRequest("DELETE", "/job-descriptions/jd-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, svc.docs)
}

func TestJobDescriptionHandler_Labels(t *testing.T) {
	svc := newFakeDocService()
	svc.labels = []string{"engineering", "sales"}
	router := newDocRouter(svc)

	req := httptest.NewRequest("GET", "/labels", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data struct {
			Labels []string `json:"labels"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"engineering", "sales"}, resp.Data.Labels)
}

func TestJobDescriptionHandler_LabelsEmptyIsArray(t *testing.T) {
	router := newDocRouter(newFakeDocService())

	req := httptest.NewRequest("GET", "/labels", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"labels":[]`)
}
