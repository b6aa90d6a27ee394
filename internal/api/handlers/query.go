package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/talentsift/jobdex/internal/api"
	"github.com/talentsift/jobdex/internal/service"
)

type QueryService interface {
	Query(ctx context.Context, input service.QueryInput) (*service.QueryOutput, error)
}

type QueryHandler struct {
	svc QueryService
}

func NewQueryHandler(svc QueryService) *QueryHandler {
	return &QueryHandler{svc: svc}
}

type QueryRequest struct {
	Question string `json:"question"`
	Label    string `json:"label"`
	TopK     int    `json:"top_k"`
}

// Query handles POST /query.
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		api.Error(w, http.StatusBadRequest, "question is required")
		return
	}

	output, err := h.svc.Query(r.Context(), service.QueryInput{
		Question: req.Question,
		Label:    req.Label,
		TopK:     req.TopK,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, output)
}
