// Package web exposes the REST API: generation, project CRUD, conversation
// history, and export.
package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/codevault-app/codevault/internal/domain"
	"github.com/codevault-app/codevault/internal/server"
	"github.com/codevault-app/codevault/internal/storage"
)

// errorEnvelope is the JSON body for every failed request.
type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps an error to its HTTP status and writes the error envelope.
// Domain errors carry their own status; storage.ErrNotFound maps to 404;
// anything else is a 500 with the message suppressed.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	server.AddError(r.Context(), err)

	if apiErr, ok := domain.AsAPIError(err); ok {
		writeJSON(w, apiErr.HTTPStatusCode(), errorEnvelope{
			Error: apiErr.Message,
			Code:  string(apiErr.Code),
		})
		return
	}

	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorEnvelope{Error: "not found"})
		return
	}

	writeJSON(w, http.StatusInternalServerError, errorEnvelope{Error: "internal server error"})
}
