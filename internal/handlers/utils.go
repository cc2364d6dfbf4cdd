package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Toastaspiring/data-ghosts-sub001/internal/session"
	"github.com/Toastaspiring/data-ghosts-sub001/internal/store"
)

// extractCookieToken extracts a named cookie value from "Cookie" header, or returns empty if not found.
func extractCookieToken(cookieHeader, cookieName string) string {
	parts := strings.Split(cookieHeader, cookieName+"=")
	if len(parts) < 2 {
		return ""
	}
	token := parts[1]
	if idx := strings.Index(token, ";"); idx != -1 {
		token = token[:idx]
	}
	return token
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeDomainError maps service errors onto HTTP statuses. Unknown errors
// stay opaque 500s.
func writeDomainError(w http.ResponseWriter, err error) {
	var throttled *session.ThrottledError
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "lobby not found", http.StatusNotFound)
	case errors.Is(err, session.ErrLobbyClosed):
		http.Error(w, "lobby is no longer joinable", http.StatusConflict)
	case errors.Is(err, session.ErrLobbyFull):
		http.Error(w, "lobby is full", http.StatusConflict)
	case errors.Is(err, session.ErrNotPlaying):
		http.Error(w, "lobby is not in the playing state", http.StatusConflict)
	case errors.Is(err, session.ErrNoPlayers):
		http.Error(w, "cannot start an empty lobby", http.StatusConflict)
	case errors.Is(err, session.ErrBarrierClosed):
		http.Error(w, "not all players are ready", http.StatusConflict)
	case errors.Is(err, session.ErrInvalidPuzzle):
		http.Error(w, "unknown or out-of-room puzzle", http.StatusBadRequest)
	case errors.Is(err, session.ErrUnknownPlayer):
		http.Error(w, "player is not in this lobby", http.StatusForbidden)
	case errors.As(err, &throttled):
		http.Error(w, err.Error(), http.StatusTooManyRequests)
	case errors.Is(err, store.ErrConcurrentModification):
		http.Error(w, "lobby is busy, retry", http.StatusServiceUnavailable)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
