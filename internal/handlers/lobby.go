// internal/handlers/lobby.go
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/Toastaspiring/data-ghosts-sub001/internal/auth"
	"github.com/Toastaspiring/data-ghosts-sub001/internal/models"
	"github.com/Toastaspiring/data-ghosts-sub001/internal/realtime"
)

type createLobbyRequest struct {
	Name         string `json:"name"`
	ParallelMode bool   `json:"parallel_mode"`
	Solution     string `json:"solution"`
}

// CreateLobbyHandler creates a waiting lobby and returns it with its join code.
func (s *Server) CreateLobbyHandler(w http.ResponseWriter, r *http.Request) {
	var req createLobbyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "bad lobby request payload", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "lobby name is required", http.StatusBadRequest)
		return
	}

	l, err := s.Service.CreateLobby(r.Context(), req.Name, req.ParallelMode, req.Solution)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, realtime.ClientState(l))
}

type joinLobbyRequest struct {
	Code       string `json:"code"`
	PlayerName string `json:"player_name"`
}

type joinLobbyResponse struct {
	Lobby    realtime.ClientLobbyState `json:"lobby"`
	PlayerID uuid.UUID                 `json:"player_id"`
	Token    string                    `json:"token"`
}

// JoinLobbyHandler adds a player to a waiting lobby by join code. The
// response carries a signed session token binding the player to the lobby;
// the websocket handler requires it.
func (s *Server) JoinLobbyHandler(w http.ResponseWriter, r *http.Request) {
	var req joinLobbyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad join request payload", http.StatusBadRequest)
		return
	}
	if req.Code == "" || req.PlayerName == "" {
		http.Error(w, "code and player_name are required", http.StatusBadRequest)
		return
	}

	l, playerID, err := s.Service.JoinLobby(r.Context(), req.Code, req.PlayerName)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	token, err := auth.CreatePlayerToken(playerID, l.ID)
	if err != nil {
		s.Logger.WithError(err).Error("failed to sign session token")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, joinLobbyResponse{
		Lobby:    realtime.ClientState(l),
		PlayerID: playerID,
		Token:    token,
	})
}

// StartLobbyHandler transitions a waiting lobby to playing.
func (s *Server) StartLobbyHandler(w http.ResponseWriter, r *http.Request) {
	lobbyID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid lobby id", http.StatusBadRequest)
		return
	}
	l, err := s.Service.StartLobby(r.Context(), lobbyID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, realtime.ClientState(l))
}

// GetLobbyHandler returns the sanitized lobby snapshot for late joiners and
// reconnecting clients.
func (s *Server) GetLobbyHandler(w http.ResponseWriter, r *http.Request) {
	lobbyID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid lobby id", http.StatusBadRequest)
		return
	}
	l, version, err := s.Store.Get(r.Context(), lobbyID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, realtime.Snapshot{Version: version, State: realtime.ClientState(l)})
}

// RoomPuzzlesHandler returns the sanitized puzzle set for the requesting
// player's effective room. Answers and answer-bearing config never appear in
// the response.
func (s *Server) RoomPuzzlesHandler(w http.ResponseWriter, r *http.Request) {
	lobbyID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid lobby id", http.StatusBadRequest)
		return
	}
	l, _, err := s.Store.Get(r.Context(), lobbyID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	room := l.CurrentRoom
	if playerStr := r.URL.Query().Get("player"); playerStr != "" {
		playerID, err := uuid.Parse(playerStr)
		if err != nil {
			http.Error(w, "invalid player id", http.StatusBadRequest)
			return
		}
		p := l.Player(playerID)
		if p == nil {
			http.Error(w, "player is not in this lobby", http.StatusForbidden)
			return
		}
		room = s.Service.Engine().EffectiveRoom(&l, p)
	}

	catalog := s.Service.Engine().Catalog()
	out := make([]models.Puzzle, 0)
	for _, p := range catalog.PuzzlesForRoom(room) {
		safe, err := s.Service.Registry().ForClient(p)
		if err != nil {
			s.Logger.WithError(err).WithField("puzzle", p.ID).Error("failed to sanitize puzzle")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out = append(out, safe)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"room":    room,
		"puzzles": out,
	})
}

type checkAnswerRequest struct {
	Submission string `json:"submission"`
}

type checkAnswerResponse struct {
	Correct bool `json:"correct"`
}

// CheckAnswerHandler evaluates a submission against a puzzle without
// mutating lobby state. Clients use it for instant feedback; recording the
// completion goes through the websocket.
func (s *Server) CheckAnswerHandler(w http.ResponseWriter, r *http.Request) {
	puzzleID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid puzzle id", http.StatusBadRequest)
		return
	}
	var req checkAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad check request payload", http.StatusBadRequest)
		return
	}
	correct, err := s.Service.CheckAnswer(puzzleID, req.Submission)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, checkAnswerResponse{Correct: correct})
}
