// internal/handlers/server.go
package handlers

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/Toastaspiring/data-ghosts-sub001/internal/models"
	"github.com/Toastaspiring/data-ghosts-sub001/internal/realtime"
	"github.com/Toastaspiring/data-ghosts-sub001/internal/session"
	"github.com/Toastaspiring/data-ghosts-sub001/internal/stats"
	"github.com/Toastaspiring/data-ghosts-sub001/internal/store"
)

// LeaderboardLister reads finish records for the public leaderboard page.
type LeaderboardLister interface {
	List(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

// Server bundles the HTTP/WS surface's collaborators. main wires it and
// mounts Routes on the listener.
type Server struct {
	Service     *session.Service
	Store       *store.SessionStore
	Broker      *realtime.Broker
	Stats       *stats.Aggregator
	Leaderboard LeaderboardLister
	Logger      *logrus.Logger
}

// Routes returns the full route table.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /lobby/create", s.CreateLobbyHandler)
	mux.HandleFunc("POST /lobby/join", s.JoinLobbyHandler)
	mux.HandleFunc("POST /lobby/{id}/start", s.StartLobbyHandler)
	mux.HandleFunc("GET /lobby/{id}", s.GetLobbyHandler)
	mux.HandleFunc("GET /lobby/{id}/puzzles", s.RoomPuzzlesHandler)
	mux.HandleFunc("POST /puzzles/{id}/check", s.CheckAnswerHandler)

	mux.HandleFunc("GET /lobby/ws/{id}", s.LobbyWSHandler)

	mux.HandleFunc("GET /leaderboard", s.LeaderboardHandler)
	mux.HandleFunc("GET /stats", s.StatsHandler)
	mux.HandleFunc("GET /health", s.HealthHandler)

	return mux
}
