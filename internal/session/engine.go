// internal/session/engine.go
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/Toastaspiring/data-ghosts-sub001/internal/models"
)

// puzzleScore is added to a player's score per recorded completion.
const puzzleScore = 100

// Engine governs a lobby's room/puzzle progression. Its methods are pure
// state transitions on the lobby aggregate: they are meant to run inside the
// session store's mutation callback so that every change commits through
// compare-and-set.
type Engine struct {
	catalog Catalog
}

// NewEngine returns an Engine validating against the given catalog.
func NewEngine(catalog Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// Catalog returns the room/puzzle universe the engine validates against.
func (e *Engine) Catalog() Catalog { return e.catalog }

// EffectiveRoom is the room a player is validated against: their assigned
// room in parallel mode, else the lobby's shared current room.
func (e *Engine) EffectiveRoom(l *models.Lobby, p *models.PlayerState) int {
	if l.ParallelMode && p.AssignedRoom != nil {
		return *p.AssignedRoom
	}
	return l.CurrentRoom
}

// SubmitPuzzleCompletion records a solved puzzle for the player's effective
// room. Duplicate submissions are an idempotent no-op, never an error. A
// puzzle outside the effective room (including rooms not yet open) is
// rejected with ErrInvalidPuzzle.
func (e *Engine) SubmitPuzzleCompletion(l *models.Lobby, playerID, puzzleID uuid.UUID) error {
	if l.Status != models.StatusPlaying {
		return ErrNotPlaying
	}
	p := l.Player(playerID)
	if p == nil {
		return ErrUnknownPlayer
	}

	room := e.EffectiveRoom(l, p)
	_, puzzleRoom, ok := e.catalog.Puzzle(puzzleID)
	if !ok || puzzleRoom != room {
		return ErrInvalidPuzzle
	}

	if l.HasCompleted(room, puzzleID) {
		return nil
	}
	l.AddCompleted(room, puzzleID)
	p.Score += puzzleScore

	e.RecomputeCompletion(l)
	return nil
}

// RecomputeCompletion re-derives every player's completed flag from the
// completion sets. It runs after each mutation, not just submissions, because
// one player's completion can flip a teammate's capability (they share the
// room's completion set) and a previously vacuous barrier can become
// evaluable. Clearing completed also clears ready, preserving the invariant
// that ready implies completed.
func (e *Engine) RecomputeCompletion(l *models.Lobby) {
	for i := range l.Players {
		p := &l.Players[i]
		done := e.roomSolved(l, e.EffectiveRoom(l, p))
		if p.Completed != done {
			p.Completed = done
			if !done {
				p.Ready = false
			}
		}
	}
}

// roomSolved reports whether the room's full puzzle set is a subset of its
// completion set. Rooms with no puzzles are never considered solved.
func (e *Engine) roomSolved(l *models.Lobby, room int) bool {
	required := e.catalog.PuzzlesForRoom(room)
	if len(required) == 0 {
		return false
	}
	for _, p := range required {
		if !l.HasCompleted(room, p.ID) {
			return false
		}
	}
	return true
}

// AdvanceRoom moves the lobby to the next room. It only succeeds when the
// readiness barrier is open for every scope: all players in shared mode, and
// every room partition in parallel mode (one lagging partition holds the
// whole team). On success it appends the room's code reward, resets each
// player's completed/ready flags, and clears the completion sets the next
// round will be validated against. Advancing past the last room completes
// the lobby; that transition is terminal.
func (e *Engine) AdvanceRoom(l *models.Lobby) error {
	if l.Status != models.StatusPlaying {
		return ErrNotPlaying
	}
	if !BarrierOpen(l, ScopeAll()) {
		return ErrBarrierClosed
	}

	room, ok := e.catalog.Room(l.CurrentRoom)
	if ok {
		l.CollectedCodes = append(l.CollectedCodes, room.CodeReward)
	}
	l.CurrentRoom++

	for i := range l.Players {
		l.Players[i].Completed = false
		l.Players[i].Ready = false
	}

	if l.ParallelMode {
		for _, assigned := range l.PlayerAssignments {
			delete(l.CompletedPuzzles, assigned)
		}
	}
	delete(l.CompletedPuzzles, l.CurrentRoom-1)
	delete(l.CompletedPuzzles, l.CurrentRoom)

	if l.CurrentRoom >= e.catalog.RoomCount() {
		l.Status = models.StatusCompleted
	}
	return nil
}

// Join appends a new player during the waiting phase. Joins after the lobby
// left waiting are rejected with ErrLobbyClosed; maxPlayers caps occupancy.
func Join(l *models.Lobby, name string, maxPlayers int) (uuid.UUID, error) {
	if l.Status != models.StatusWaiting {
		return uuid.Nil, ErrLobbyClosed
	}
	if maxPlayers > 0 && len(l.Players) >= maxPlayers {
		return uuid.Nil, ErrLobbyFull
	}
	id := uuid.New()
	l.Players = append(l.Players, models.PlayerState{ID: id, Name: name})
	return id, nil
}

// Start transitions waiting -> playing. In parallel mode it also computes the
// write-once player assignment, partitioning players across up to
// concurrentRooms rooms.
func (e *Engine) Start(l *models.Lobby, now time.Time) error {
	if l.Status != models.StatusWaiting {
		return ErrLobbyClosed
	}
	if len(l.Players) == 0 {
		return ErrNoPlayers
	}
	if l.ParallelMode {
		rooms := e.catalog.RoomCount()
		if len(l.Players) < rooms {
			rooms = len(l.Players)
		}
		if err := AssignPlayers(l, rooms); err != nil {
			return err
		}
	}
	l.Status = models.StatusPlaying
	if l.GameState == nil {
		l.GameState = make(map[string]interface{})
	}
	l.GameState["started_at"] = now.UTC().Format(time.RFC3339)
	return nil
}
