package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/codevault-app/codevault/internal/artifact"
	"github.com/codevault-app/codevault/internal/domain"
	"github.com/codevault-app/codevault/internal/realtime"
	"github.com/codevault-app/codevault/internal/storage"
)

// starterHTML seeds newly created projects so the preview has something to
// render before the first generation.
const starterHTML = "<!DOCTYPE html>\n<html>\n<head>\n    <title>New Project</title>\n</head>\n<body>\n    <h1>Welcome to CodeVault</h1>\n</body>\n</html>"

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updateProjectRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Files       *[]artifact.File `json:"files,omitempty"`
}

type projectResponse struct {
	Success bool             `json:"success"`
	Project *storage.Project `json:"project"`
}

type projectListResponse struct {
	Success  bool               `json:"success"`
	Projects []*storage.Project `json:"projects"`
}

func (h *Handler) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.ListProjects(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if projects == nil {
		projects = []*storage.Project{}
	}

	writeJSON(w, http.StatusOK, projectListResponse{Success: true, Projects: projects})
}

func (h *Handler) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, domain.ErrInvalidInput("invalid request body: "+err.Error()))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, r, domain.ErrInvalidInput("name is required"))
		return
	}

	project := &storage.Project{
		Name:        req.Name,
		Description: req.Description,
		Files: []artifact.File{
			{Name: "index.html", Content: starterHTML, Language: "html"},
		},
	}
	if err := h.store.CreateProject(r.Context(), project); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, projectResponse{Success: true, Project: project})
}

func (h *Handler) handleGetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.store.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, projectResponse{Success: true, Project: project})
}

func (h *Handler) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var req updateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, domain.ErrInvalidInput("invalid request body: "+err.Error()))
		return
	}

	id := chi.URLParam(r, "id")
	project, err := h.store.GetProject(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Files != nil {
		project.Files = *req.Files
	}

	if err := h.store.UpdateProject(r.Context(), project); err != nil {
		writeError(w, r, err)
		return
	}

	h.hub.Broadcast(realtime.Event{
		Type:      "code-update",
		ProjectID: id,
		Payload:   project.Files,
	})

	writeJSON(w, http.StatusOK, projectResponse{Success: true, Project: project})
}

func (h *Handler) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.DeleteProject(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	h.hub.Broadcast(realtime.Event{
		Type:      "project-deleted",
		ProjectID: id,
	})

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) handleProjectHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Confirm the project exists so a bogus id is a 404, not an empty list.
	if _, err := h.store.GetProject(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	messages, err := h.store.ListMessages(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if messages == nil {
		messages = []*storage.ChatMessage{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"messages": messages,
	})
}
