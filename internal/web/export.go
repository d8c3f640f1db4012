package web

import (
	"archive/zip"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleExportProject streams the project's files as a zip archive.
func (h *Handler) handleExportProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.store.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", project.Name+".zip"))

	zw := zip.NewWriter(w)
	for _, file := range project.Files {
		fw, err := zw.Create(file.Name)
		if err != nil {
			// Headers are already out; all we can do is log and stop.
			h.logger.Warn("zip export failed", "project_id", project.ID, "error", err)
			return
		}
		if _, err := fw.Write([]byte(file.Content)); err != nil {
			h.logger.Warn("zip export failed", "project_id", project.ID, "error", err)
			return
		}
	}
	if err := zw.Close(); err != nil {
		h.logger.Warn("zip export failed", "project_id", project.ID, "error", err)
	}
}
