// internal/handlers/stats.go
package handlers

import "net/http"

// StatsHandler returns the last built lobby/player aggregate.
func (s *Server) StatsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Stats.Snapshot())
}

// HealthHandler is the liveness probe.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
