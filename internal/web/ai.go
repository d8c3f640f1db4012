package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/codevault-app/codevault/internal/artifact"
	"github.com/codevault-app/codevault/internal/domain"
	"github.com/codevault-app/codevault/internal/generate"
	"github.com/codevault-app/codevault/internal/realtime"
	"github.com/codevault-app/codevault/internal/server"
	"github.com/codevault-app/codevault/internal/storage"
)

type generateRequest struct {
	Prompt    string           `json:"prompt"`
	Model     string           `json:"model"`
	History   []domain.Message `json:"history,omitempty"`
	ProjectID string           `json:"projectId,omitempty"`
}

type generateResponse struct {
	Success     bool            `json:"success"`
	Code        artifact.Bundle `json:"code"`
	RawResponse string          `json:"rawResponse"`
	Timestamp   time.Time       `json:"timestamp"`
}

type modifyRequest struct {
	Code          artifact.Bundle `json:"code"`
	Modifications string          `json:"modifications"`
	Model         string          `json:"model"`
	ProjectID     string          `json:"projectId,omitempty"`
}

type modifyResponse struct {
	Success      bool            `json:"success"`
	ModifiedCode artifact.Bundle `json:"modifiedCode"`
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, domain.ErrInvalidInput("invalid request body: "+err.Error()))
		return
	}

	server.AddLogField(r.Context(), "provider", req.Model)

	result, err := h.gen.Generate(r.Context(), generate.Request{
		Prompt:   req.Prompt,
		Provider: domain.ProviderID(req.Model),
		History:  req.History,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	if req.ProjectID != "" {
		if err := h.applyToProject(r, req.ProjectID, req.Model, req.Prompt, result); err != nil {
			writeError(w, r, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, generateResponse{
		Success:     true,
		Code:        result.Bundle,
		RawResponse: result.RawText,
		Timestamp:   time.Now().UTC(),
	})
}

func (h *Handler) handleModify(w http.ResponseWriter, r *http.Request) {
	var req modifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, domain.ErrInvalidInput("invalid request body: "+err.Error()))
		return
	}

	server.AddLogField(r.Context(), "provider", req.Model)

	result, err := h.gen.Generate(r.Context(), generate.Request{
		Prompt:   req.Modifications,
		Provider: domain.ProviderID(req.Model),
		Prior:    &req.Code,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	if req.ProjectID != "" {
		if err := h.applyToProject(r, req.ProjectID, req.Model, req.Modifications, result); err != nil {
			writeError(w, r, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, modifyResponse{
		Success:      true,
		ModifiedCode: result.Bundle,
	})
}

// applyToProject persists a generation result against an existing project:
// the project's files are replaced from the bundle, both conversation turns
// are recorded, and live subscribers are notified.
func (h *Handler) applyToProject(r *http.Request, projectID, model, prompt string, result *generate.Result) error {
	ctx := r.Context()

	project, err := h.store.GetProject(ctx, projectID)
	if err != nil {
		return err
	}

	project.Files = result.Bundle.Files()
	if err := h.store.UpdateProject(ctx, project); err != nil {
		return err
	}

	turns := []*storage.ChatMessage{
		{ProjectID: projectID, Role: "user", Content: prompt},
		{ProjectID: projectID, Role: "assistant", Content: result.RawText, Provider: model},
	}
	for _, msg := range turns {
		if err := h.store.AppendMessage(ctx, msg); err != nil {
			return err
		}
	}

	h.hub.Broadcast(realtime.Event{
		Type:      "code-update",
		ProjectID: projectID,
		Payload:   result.Bundle,
	})

	return nil
}
