package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/an0763229796-cpu/AlphaDrop/internal/research"
	"github.com/an0763229796-cpu/AlphaDrop/internal/tracker"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(res *research.Service, tr *tracker.Service, authEnabled bool, token string) chi.Router {
	h := NewHandler(res, tr)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Research.
	r.Post("/analyze", h.Analyze)
	r.Post("/scan", h.Scan)
	r.Post("/funding", h.Funding)
	r.Post("/discovery/evaluate", h.Evaluate)

	// Tracked projects.
	r.Get("/projects", h.ListProjects)
	r.Post("/projects", h.SaveProject)
	r.Get("/projects/{id}", h.GetProject)
	r.Put("/projects/{id}", h.SaveProject)
	r.Delete("/projects/{id}", h.DeleteProject)
	r.Post("/projects/{id}/analysis", h.AttachAnalysis)
	r.Post("/projects/{id}/funding", h.AttachFunding)

	// Farming tasks.
	r.Post("/projects/{id}/tasks", h.AddTask)
	r.Put("/projects/{id}/tasks/{taskID}", h.SetTaskStatus)
	r.Delete("/projects/{id}/tasks/{taskID}", h.RemoveTask)

	// Search history.
	r.Get("/history", h.History)

	return r
}
