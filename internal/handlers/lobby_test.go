// internal/handlers/lobby_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Toastaspiring/data-ghosts-sub001/internal/auth"
	"github.com/Toastaspiring/data-ghosts-sub001/internal/models"
	"github.com/Toastaspiring/data-ghosts-sub001/internal/puzzles"
	"github.com/Toastaspiring/data-ghosts-sub001/internal/realtime"
	"github.com/Toastaspiring/data-ghosts-sub001/internal/session"
	"github.com/Toastaspiring/data-ghosts-sub001/internal/stats"
	"github.com/Toastaspiring/data-ghosts-sub001/internal/store"
)

type fakeLeaderboard struct {
	entries []models.LeaderboardEntry
}

func (f *fakeLeaderboard) List(_ context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit < len(f.entries) {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

func (f *fakeLeaderboard) RecordFinish(_ context.Context, lobby models.Lobby, finishedAt time.Time) error {
	f.entries = append(f.entries, models.LeaderboardEntry{
		ID:         uuid.New(),
		LobbyID:    &lobby.ID,
		LobbyName:  lobby.Name,
		FinishedAt: finishedAt,
	})
	return nil
}

func testCatalog() *session.StaticCatalog {
	room := models.Room{ID: uuid.New(), OrderIndex: 0, Title: "Archive", CodeReward: "CODE-1"}
	puz := models.Puzzle{
		ID:         uuid.New(),
		RoomID:     room.ID,
		PuzzleType: "access_code",
		PuzzleData: json.RawMessage(`{"code":"1234","prompt":"terminal"}`),
		Title:      "Access Terminal",
	}
	return session.NewStaticCatalog([]models.Room{room}, []models.Puzzle{puz})
}

func newTestServer(t *testing.T) (*Server, *fakeLeaderboard) {
	t.Helper()
	require.NoError(t, auth.Init())

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	repo := store.NewMemoryRepository()
	sessionStore := store.NewSessionStore(repo, nil, logger)
	lb := &fakeLeaderboard{}

	svc := session.NewService(session.ServiceConfig{
		Store:      sessionStore,
		Catalog:    testCatalog(),
		Registry:   puzzles.NewRegistry(),
		Recorder:   lb,
		Logger:     logger,
		MaxPlayers: 4,
	})

	agg := stats.NewAggregator(repo, clockwork.NewFakeClock(), time.Minute, logger)

	return &Server{
		Service:     svc,
		Store:       sessionStore,
		Broker:      realtime.NewBroker(),
		Stats:       agg,
		Leaderboard: lb,
		Logger:      logger,
	}, lb
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(v))
}

func TestCreateLobbyHandler(t *testing.T) {
	srv, _ := newTestServer(t)
	mux := srv.Routes()

	w := doJSON(t, mux, "POST", "/lobby/create", map[string]interface{}{"name": "ghost run"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var state realtime.ClientLobbyState
	decodeBody(t, w, &state)
	assert.Equal(t, "ghost run", state.Name)
	assert.Equal(t, models.StatusWaiting, state.Status)
	assert.Len(t, state.Code, 6)

	t.Run("missing name rejected", func(t *testing.T) {
		w := doJSON(t, mux, "POST", "/lobby/create", map[string]interface{}{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty body treated as missing name", func(t *testing.T) {
		// No body at all must not trip the payload check; it falls through
		// to the name validation instead.
		w := doJSON(t, mux, "POST", "/lobby/create", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "name is required")
	})

	t.Run("malformed body rejected", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/lobby/create", bytes.NewBufferString("{not json"))
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "payload")
	})
}

func TestJoinLobbyHandler(t *testing.T) {
	srv, _ := newTestServer(t)
	mux := srv.Routes()

	w := doJSON(t, mux, "POST", "/lobby/create", map[string]interface{}{"name": "heist"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created realtime.ClientLobbyState
	decodeBody(t, w, &created)

	w = doJSON(t, mux, "POST", "/lobby/join", map[string]interface{}{
		"code":        created.Code,
		"player_name": "alice",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var joined joinLobbyResponse
	decodeBody(t, w, &joined)
	assert.NotEqual(t, uuid.Nil, joined.PlayerID)
	assert.NotEmpty(t, joined.Token)
	require.Len(t, joined.Lobby.Players, 1)
	assert.Equal(t, "alice", joined.Lobby.Players[0].Name)

	// The token binds player to lobby.
	playerID, lobbyID, err := auth.AuthenticatePlayerToken(joined.Token)
	require.NoError(t, err)
	assert.Equal(t, joined.PlayerID, playerID)
	assert.Equal(t, created.ID, lobbyID)

	t.Run("unknown code", func(t *testing.T) {
		w := doJSON(t, mux, "POST", "/lobby/join", map[string]interface{}{
			"code":        "000000",
			"player_name": "eve",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("join after start conflicts", func(t *testing.T) {
		w := doJSON(t, mux, "POST", fmt.Sprintf("/lobby/%s/start", created.ID), nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = doJSON(t, mux, "POST", "/lobby/join", map[string]interface{}{
			"code":        created.Code,
			"player_name": "late",
		})
		assert.Equal(t, http.StatusConflict, w.Code, "a started lobby no longer accepts players")
	})
}

func TestGetLobbyHandlerSanitizes(t *testing.T) {
	srv, _ := newTestServer(t)
	mux := srv.Routes()

	l, err := srv.Service.CreateLobby(context.Background(), "secretive", false, "final-answer")
	require.NoError(t, err)

	w := doJSON(t, mux, "GET", "/lobby/"+l.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "final-answer")

	var snap realtime.Snapshot
	decodeBody(t, w, &snap)
	assert.Equal(t, int64(1), snap.Version)
	assert.Equal(t, l.ID, snap.State.ID)
}

func TestRoomPuzzlesHandlerRedacts(t *testing.T) {
	srv, _ := newTestServer(t)
	mux := srv.Routes()

	l, err := srv.Service.CreateLobby(context.Background(), "redacted", false, "")
	require.NoError(t, err)

	w := doJSON(t, mux, "GET", "/lobby/"+l.ID.String()+"/puzzles", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "1234", "the access code must never reach clients")
	assert.Contains(t, w.Body.String(), "terminal", "client-safe prompt survives")
}

func TestCheckAnswerHandler(t *testing.T) {
	srv, _ := newTestServer(t)
	mux := srv.Routes()
	p := srv.Service.Engine().Catalog().PuzzlesForRoom(0)[0]

	w := doJSON(t, mux, "POST", "/puzzles/"+p.ID.String()+"/check", map[string]string{"submission": "1234"})
	require.Equal(t, http.StatusOK, w.Code)
	var res checkAnswerResponse
	decodeBody(t, w, &res)
	assert.True(t, res.Correct)

	w = doJSON(t, mux, "POST", "/puzzles/"+p.ID.String()+"/check", map[string]string{"submission": "9999"})
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &res)
	assert.False(t, res.Correct)

	w = doJSON(t, mux, "POST", "/puzzles/"+uuid.NewString()+"/check", map[string]string{"submission": "1234"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLeaderboardHandler(t *testing.T) {
	srv, lb := newTestServer(t)
	mux := srv.Routes()
	id := uuid.New()
	lb.entries = []models.LeaderboardEntry{{ID: uuid.New(), LobbyID: &id, LobbyName: "winners", FinishedAt: time.Now()}}

	w := doJSON(t, mux, "GET", "/leaderboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "winners")

	w = doJSON(t, mux, "GET", "/leaderboard?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatsAndHealthHandlers(t *testing.T) {
	srv, _ := newTestServer(t)
	mux := srv.Routes()

	_, err := srv.Service.CreateLobby(context.Background(), "counted", false, "")
	require.NoError(t, err)
	require.NoError(t, srv.Stats.RefreshNow(context.Background()))

	w := doJSON(t, mux, "GET", "/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var snap stats.Snapshot
	decodeBody(t, w, &snap)
	assert.Equal(t, 1, snap.WaitingLobbies)

	w = doJSON(t, mux, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
