package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/talentsift/jobdex/internal/api"
	"github.com/talentsift/jobdex/internal/domain"
	"github.com/talentsift/jobdex/internal/service"
)

type JobDescriptionService interface {
	Create(ctx context.Context, input service.CreateJobDescriptionInput) (*domain.JobDescription, error)
	Get(ctx context.Context, id string) (*domain.JobDescription, error)
	List(ctx context.Context) ([]*domain.JobDescription, error)
	Update(ctx context.Context, id string, input service.CreateJobDescriptionInput) (*domain.JobDescription, error)
	Delete(ctx context.Context, id string) error
	ListLabels(ctx context.Context) ([]string, error)
}

type JobDescriptionHandler struct {
	svc JobDescriptionService
}

func NewJobDescriptionHandler(svc JobDescriptionService) *JobDescriptionHandler {
	return &JobDescriptionHandler{svc: svc}
}

type JobDescriptionRequest struct {
	ID      string `json:"id,omitempty"`
	Title   string `json:"title"`
	Label   string `json:"label"`
	Content string `json:"content"`
}

type JobDescriptionResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Label     string `json:"label,omitempty"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func jobDescriptionToResponse(jd *domain.JobDescription) *JobDescriptionResponse {
	return &JobDescriptionResponse{
		ID:        jd.ID,
		Title:     jd.Title,
		Label:     jd.Label,
		Content:   jd.Content,
		CreatedAt: jd.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt: jd.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (h *JobDescriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req JobDescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Content == "" {
		api.Error(w, http.StatusBadRequest, "content is required")
		return
	}

	jd, err := h.svc.Create(r.Context(), service.CreateJobDescriptionInput{
		ID:      req.ID,
		Title:   req.Title,
		Label:   req.Label,
		Content: req.Content,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, jobDescriptionToResponse(jd))
}

func (h *JobDescriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	jd, err := h.svc.Get(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, jobDescriptionToResponse(jd))
}

func (h *JobDescriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.List(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*JobDescriptionResponse, len(docs))
	for i, jd := range docs {
		responses[i] = jobDescriptionToResponse(jd)
	}
	api.Success(w, http.StatusOK, responses)
}

func (h *JobDescriptionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req JobDescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Content == "" {
		api.Error(w, http.StatusBadRequest, "content is required")
		return
	}

	jd, err := h.svc.Update(r.Context(), id, service.CreateJobDescriptionInput{
		Title:   req.Title,
		Label:   req.Label,
		Content: req.Content,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, jobDescriptionToResponse(jd))
}

func (h *JobDescriptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

// Labels handles GET /labels.
func (h *JobDescriptionHandler) Labels(w http.ResponseWriter, r *http.Request) {
	labels, err := h.svc.ListLabels(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	if labels == nil {
		labels = []string{}
	}
	api.Success(w, http.StatusOK, map[string][]string{"labels": labels})
}
