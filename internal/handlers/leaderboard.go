// internal/handlers/leaderboard.go
package handlers

import (
	"net/http"
	"strconv"
)

// LeaderboardHandler returns recent finish records, newest first.
func (s *Server) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 || n > 500 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	entries, err := s.Leaderboard.List(r.Context(), limit)
	if err != nil {
		s.Logger.WithError(err).Error("failed to list leaderboard")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}
