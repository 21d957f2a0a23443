package api

import "net/http"

// handleStats reports pipeline and cache statistics.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"queue_depth":    s.orchestrator.QueueDepth(),
		"cached_sources": s.store.Len(),
	})
}
