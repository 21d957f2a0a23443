package api

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"time"

	"github.com/dgallion1/texstruct/internal/pipeline"
	"github.com/dgallion1/texstruct/internal/structure"
	"github.com/go-chi/chi/v5"
)

// outlineRequest selects a root file and optional per-request overrides of
// the configured structure settings.
type outlineRequest struct {
	RootPath       string `json:"root_path"`
	MergeSubFiles  *bool  `json:"merge_sub_files,omitempty"`
	NumberSections *bool  `json:"number_sections,omitempty"`
	NumberFloats   *bool  `json:"number_floats,omitempty"`
}

func (s *Server) structureConfig(req outlineRequest) structure.Config {
	cfg := s.cfg.Structure.StructureConfig()
	if req.MergeSubFiles != nil {
		cfg.MergeSubFiles = *req.MergeSubFiles
	}
	if req.NumberSections != nil {
		cfg.NumberSections = *req.NumberSections
	}
	if req.NumberFloats != nil {
		cfg.NumberFloats = *req.NumberFloats
	}
	return cfg
}

// handleOutline builds an outline synchronously.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	var req outlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.RootPath == "" {
		jsonError(w, "root_path is required", http.StatusBadRequest)
		return
	}
	if !filepath.IsAbs(req.RootPath) {
		jsonError(w, "root_path must be absolute", http.StatusBadRequest)
		return
	}

	outline, err := s.orchestrator.Builder().Construct(r.Context(), req.RootPath, s.structureConfig(req))
	if err != nil {
		jsonError(w, "outline construction failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"root_path": req.RootPath,
		"outline":   outline,
	})
}

// handleOutlineAsync enqueues an outline job and returns its id.
func (s *Server) handleOutlineAsync(w http.ResponseWriter, r *http.Request) {
	var req outlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.RootPath == "" {
		jsonError(w, "root_path is required", http.StatusBadRequest)
		return
	}
	if !filepath.IsAbs(req.RootPath) {
		jsonError(w, "root_path must be absolute", http.StatusBadRequest)
		return
	}

	merge := true
	if req.MergeSubFiles != nil {
		merge = *req.MergeSubFiles
	}

	now := time.Now()
	job := &pipeline.Job{
		ID:            pipeline.NewJobID(),
		RootPath:      req.RootPath,
		MergeSubFiles: merge,
		Status:        pipeline.StatusQueued,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.ID,
		"status": string(pipeline.StatusQueued),
	})
}

// handleOutlineJob reports the state (and, when completed, the outline) of an
// async job.
func (s *Server) handleOutlineJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}
