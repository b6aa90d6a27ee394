// Package handlers wires HTTP requests into the service layer.
package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/talentsift/jobdex/internal/api"
	"github.com/talentsift/jobdex/internal/service"
)

type SyncService interface {
	SyncOne(ctx context.Context, jobDescriptionID string) error
	SyncAll(ctx context.Context) (*service.SyncSummary, error)
}

type SyncHandler struct {
	svc SyncService
}

func NewSyncHandler(svc SyncService) *SyncHandler {
	return &SyncHandler{svc: svc}
}

// SyncAll handles POST /sync. A summary with failures still returns 200; only
// a failure to even enumerate the corpus is an error.
func (h *SyncHandler) SyncAll(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.SyncAll(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, summary)
}

// SyncOne handles POST /sync/{id}.
func (h *SyncHandler) SyncOne(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.svc.SyncOne(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "synced " + id,
	})
}
