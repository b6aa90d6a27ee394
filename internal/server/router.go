// Package server assembles the HTTP router.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/talentsift/jobdex/internal/api"
	"github.com/talentsift/jobdex/internal/api/handlers"
	"github.com/talentsift/jobdex/internal/api/middleware"
)

type RouterConfig struct {
	SyncHandler           *handlers.SyncHandler
	QueryHandler          *handlers.QueryHandler
	JobDescriptionHandler *handlers.JobDescriptionHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/sync", cfg.SyncHandler.SyncAll)
	r.Post("/sync/{id}", cfg.SyncHandler.SyncOne)

	r.Post("/query", cfg.QueryHandler.Query)

	r.Get("/labels", cfg.JobDescriptionHandler.Labels)

	r.Route("/job-descriptions", func(r chi.Router) {
		r.Post("/", cfg.JobDescriptionHandler.Create)
		r.Get("/", cfg.JobDescriptionHandler.List)
		r.Get("/{id}", cfg.JobDescriptionHandler.Get)
		r.Put("/{id}", cfg.JobDescriptionHandler.Update)
		r.Delete("/{id}", cfg.JobDescriptionHandler.Delete)
	})

	return r
}
