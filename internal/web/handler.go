package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/codevault-app/codevault/internal/generate"
	"github.com/codevault-app/codevault/internal/realtime"
	"github.com/codevault-app/codevault/internal/storage"
)

// Generator is the slice of the generation orchestrator the handlers need.
type Generator interface {
	Generate(ctx context.Context, req generate.Request) (*generate.Result, error)
}

// Broadcaster pushes project events to live subscribers.
type Broadcaster interface {
	Broadcast(event realtime.Event)
}

// Handler serves the REST API.
type Handler struct {
	store  storage.Store
	gen    Generator
	hub    Broadcaster
	logger *slog.Logger
}

func NewHandler(store storage.Store, gen Generator, hub Broadcaster, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		gen:    gen,
		hub:    hub,
		logger: logger,
	}
}

// Routes registers the API routes on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/ai/generate", h.handleGenerate)
	r.Post("/api/ai/modify", h.handleModify)

	r.Route("/api/projects", func(r chi.Router) {
		r.Get("/", h.handleListProjects)
		r.Post("/", h.handleCreateProject)
		r.Get("/{id}", h.handleGetProject)
		r.Put("/{id}", h.handleUpdateProject)
		r.Delete("/{id}", h.handleDeleteProject)
		r.Get("/{id}/export", h.handleExportProject)
		r.Get("/{id}/history", h.handleProjectHistory)
	})
}

// HandleHealth is the liveness probe. Mounted outside the auth middleware.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
