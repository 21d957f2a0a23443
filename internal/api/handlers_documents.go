package api

import (
	"encoding/json"
	"net/http"
	"path/filepath"
)

// handlePutDocument installs live content for a document with unsaved edits.
// Subsequent construction runs use the override instead of the on-disk file.
func (s *Server) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path    string `json:"path"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Path == "" {
		jsonError(w, "path is required", http.StatusBadRequest)
		return
	}
	if !filepath.IsAbs(req.Path) {
		jsonError(w, "path must be absolute", http.StatusBadRequest)
		return
	}

	s.store.SetOverride(req.Path, req.Content)
	writeJSON(w, http.StatusOK, map[string]string{"path": req.Path, "status": "override_set"})
}

// handleDeleteDocument removes a live-content override; the on-disk version
// is reloaded on the next construction run.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		jsonError(w, "path query parameter is required", http.StatusBadRequest)
		return
	}

	s.store.RemoveOverride(path)
	writeJSON(w, http.StatusOK, map[string]string{"path": path, "status": "override_removed"})
}
