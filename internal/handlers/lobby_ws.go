// internal/handlers/lobby_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Toastaspiring/data-ghosts-sub001/internal/auth"
	"github.com/Toastaspiring/data-ghosts-sub001/internal/middleware"
	"github.com/Toastaspiring/data-ghosts-sub001/internal/realtime"
	"github.com/Toastaspiring/data-ghosts-sub001/internal/session"
	"github.com/Toastaspiring/data-ghosts-sub001/internal/store"
)

// clientMessage is the envelope for every inbound websocket action.
type clientMessage struct {
	Type       string    `json:"type"`
	PuzzleID   uuid.UUID `json:"puzzle_id,omitempty"`
	Submission string    `json:"submission,omitempty"`
}

// wsConn carries the per-connection state shared by the pumps.
type wsConn struct {
	playerID uuid.UUID
	lobbyID  uuid.UUID
	outCh    chan map[string]interface{}
}

func (c *wsConn) writeError(code, msg string, extra map[string]interface{}) {
	payload := map[string]interface{}{
		"type":  "error",
		"code":  code,
		"error": msg,
	}
	for k, v := range extra {
		payload[k] = v
	}
	select {
	case c.outCh <- payload:
	default:
	}
}

func (c *wsConn) write(payload map[string]interface{}) {
	select {
	case c.outCh <- payload:
	default:
	}
}

// LobbyWSHandler upgrades the connection, authenticates the player's session
// token, and runs the snapshot/action pumps until the client goes away.
func (s *Server) LobbyWSHandler(w http.ResponseWriter, r *http.Request) {
	remoteAddr := r.RemoteAddr
	lobbyID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid lobby_id", http.StatusBadRequest)
		return
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{"session"},
		OriginPatterns: []string{"*"}, // Adjust in production
	})
	if err != nil {
		s.Logger.Warnf("websocket accept error: %v", err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "handler finished")

	if c.Subprotocol() != "session" {
		c.Close(BadSubprotocolError, "client must speak the session subprotocol")
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		token = extractCookieToken(r.Header.Get("Cookie"), "session_token")
	}
	playerID, tokenLobbyID, err := auth.AuthenticatePlayerToken(token)
	if err != nil {
		s.Logger.Warnf("session token rejected for lobby %s: %v", lobbyID, err)
		c.Close(InvalidAuthTokenError, "invalid session token")
		return
	}
	if tokenLobbyID != lobbyID {
		c.Close(WrongLobbyError, "token was issued for another lobby")
		return
	}

	lobby, version, err := s.Store.Get(r.Context(), lobbyID)
	if err != nil {
		c.Close(InvalidLobbyIDError, "lobby does not exist")
		return
	}
	if lobby.Player(playerID) == nil {
		c.Close(websocket.StatusPolicyViolation, "player is not part of this lobby")
		return
	}

	middleware.LogWebSocketConnect(s.Logger, remoteAddr, lobbyID.String())

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn := &wsConn{
		playerID: playerID,
		lobbyID:  lobbyID,
		outCh:    make(chan map[string]interface{}, 10),
	}

	snapCh := s.Broker.Subscribe(lobbyID)
	defer s.Broker.Unsubscribe(lobbyID, snapCh)

	// Seed the client with the current committed state before any deltas.
	conn.write(snapshotPayload(realtime.Snapshot{Version: version, State: realtime.ClientState(lobby)}))

	go s.writePump(ctx, c, conn, snapCh)
	s.readPump(ctx, c, conn)

	middleware.LogWebSocketDisconnect(s.Logger, remoteAddr, lobbyID.String(), nil)
}

func snapshotPayload(snap realtime.Snapshot) map[string]interface{} {
	return map[string]interface{}{
		"type":    "lobby_state",
		"version": snap.Version,
		"state":   snap.State,
	}
}

// readPump handles incoming messages until the connection closes.
func (s *Server) readPump(ctx context.Context, c *websocket.Conn, conn *wsConn) {
	for {
		typ, msg, err := c.Read(ctx)
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus != websocket.StatusNormalClosure && closeStatus != websocket.StatusGoingAway && ctx.Err() == nil {
				s.Logger.Warnf("lobby %s: read error for player %v: %v", conn.lobbyID, conn.playerID, err)
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}

		var packet clientMessage
		if err := json.Unmarshal(msg, &packet); err != nil {
			s.Logger.Warnf("lobby %s: invalid json from player %v: %v", conn.lobbyID, conn.playerID, err)
			conn.writeError("bad_payload", "invalid JSON format", nil)
			continue
		}

		s.handleLobbyMessage(ctx, conn, packet)
	}
}

// handleLobbyMessage dispatches one client action. Every mutation goes
// through the service's compare-and-set path; the resulting snapshot reaches
// the client through the change-notification fanout, not from here.
func (s *Server) handleLobbyMessage(ctx context.Context, conn *wsConn, packet clientMessage) {
	switch packet.Type {
	case "submit_puzzle":
		if packet.PuzzleID == uuid.Nil {
			conn.writeError("bad_payload", "puzzle_id is required", nil)
			return
		}
		correct, err := s.Service.CheckAnswer(packet.PuzzleID, packet.Submission)
		if err != nil {
			s.writeDomainWSError(conn, err)
			return
		}
		if !correct {
			conn.write(map[string]interface{}{
				"type":      "submission_result",
				"puzzle_id": packet.PuzzleID.String(),
				"correct":   false,
			})
			return
		}
		if _, err := s.Service.SubmitPuzzleCompletion(ctx, conn.lobbyID, conn.playerID, packet.PuzzleID); err != nil {
			s.writeDomainWSError(conn, err)
			return
		}
		conn.write(map[string]interface{}{
			"type":      "submission_result",
			"puzzle_id": packet.PuzzleID.String(),
			"correct":   true,
		})

	case "mark_ready":
		if _, err := s.Service.MarkReady(ctx, conn.lobbyID, conn.playerID); err != nil {
			s.writeDomainWSError(conn, err)
		}

	case "advance_room":
		if _, err := s.Service.AdvanceRoom(ctx, conn.lobbyID); err != nil {
			s.writeDomainWSError(conn, err)
		}

	case "request_hint":
		_, hint, err := s.Service.RequestHint(ctx, conn.lobbyID, conn.playerID)
		if err != nil {
			s.writeDomainWSError(conn, err)
			return
		}
		conn.write(map[string]interface{}{
			"type":      "hint",
			"puzzle_id": hint.PuzzleID.String(),
			"text":      hint.Text,
		})

	default:
		s.Logger.Warnf("lobby %s: unknown action %q from player %v", conn.lobbyID, packet.Type, conn.playerID)
		conn.writeError("unknown_action", "unknown action type: "+packet.Type, nil)
	}
}

// writeDomainWSError maps service errors onto client-facing error payloads.
func (s *Server) writeDomainWSError(conn *wsConn, err error) {
	var throttled *session.ThrottledError
	switch {
	case errors.As(err, &throttled):
		conn.writeError("hint_throttled", err.Error(), map[string]interface{}{
			"retry_after_ms": throttled.RetryAfter.Milliseconds(),
		})
	case errors.Is(err, session.ErrBarrierClosed):
		conn.writeError("barrier_closed", err.Error(), nil)
	case errors.Is(err, session.ErrNotCompleted):
		conn.writeError("room_not_completed", err.Error(), nil)
	case errors.Is(err, session.ErrInvalidPuzzle):
		conn.writeError("invalid_puzzle", err.Error(), nil)
	case errors.Is(err, session.ErrNotPlaying):
		conn.writeError("not_playing", err.Error(), nil)
	case errors.Is(err, session.ErrUnknownPlayer):
		conn.writeError("unknown_player", err.Error(), nil)
	case errors.Is(err, store.ErrConcurrentModification):
		conn.writeError("busy", "lobby is busy, retry", nil)
	case errors.Is(err, store.ErrNotFound):
		conn.writeError("not_found", "lobby not found", nil)
	default:
		s.Logger.WithError(err).WithFields(logrus.Fields{
			"lobby":  conn.lobbyID,
			"player": conn.playerID,
		}).Error("unhandled websocket action error")
		conn.writeError("internal", "internal error", nil)
	}
}

// writePump forwards direct replies and committed snapshots to the client,
// pinging periodically to detect dead peers.
func (s *Server) writePump(ctx context.Context, c *websocket.Conn, conn *wsConn, snapCh chan realtime.Snapshot) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snapCh:
			if !ok {
				return
			}
			if !s.writeMessage(ctx, c, conn, snapshotPayload(snap)) {
				return
			}
		case msg, ok := <-conn.outCh:
			if !ok {
				return
			}
			if !s.writeMessage(ctx, c, conn, msg) {
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				s.Logger.Warnf("lobby %s: ping failed for player %v: %v", conn.lobbyID, conn.playerID, err)
				return
			}
		}
	}
}

func (s *Server) writeMessage(ctx context.Context, c *websocket.Conn, conn *wsConn, msg map[string]interface{}) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		s.Logger.Warnf("lobby %s: failed to marshal outgoing msg for player %v: %v", conn.lobbyID, conn.playerID, err)
		return true
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err = c.Write(writeCtx, websocket.MessageText, data)
	cancel()
	if err != nil {
		s.Logger.Warnf("lobby %s: failed to write to websocket for player %v: %v", conn.lobbyID, conn.playerID, err)
		return false
	}
	return true
}
