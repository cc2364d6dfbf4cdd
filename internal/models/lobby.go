// internal/models/lobby.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// LobbyStatus enumerates the lifecycle states of a lobby. Transitions are
// monotonic: waiting -> playing -> completed, with no reverse edges.
type LobbyStatus string

const (
	StatusWaiting   LobbyStatus = "waiting"
	StatusPlaying   LobbyStatus = "playing"
	StatusCompleted LobbyStatus = "completed"
)

// Lobby is the root aggregate for one game session. It is the single unit of
// concurrency control: every mutation is applied through a read-then-
// compare-and-set cycle against the version held by the session store, never
// as a blind overwrite.
type Lobby struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"` // short numeric join code, unique among active lobbies
	Name string    `json:"name"`

	Status LobbyStatus `json:"status"`

	// Players grows only while Status == waiting. Once the lobby is playing
	// the set of identities is fixed; only per-player flags change.
	Players []PlayerState `json:"players"`

	// CurrentRoom indexes the ordered room sequence. Monotonically
	// non-decreasing; advancing past the last room completes the lobby.
	CurrentRoom int `json:"current_room"`

	// CompletedPuzzles holds the solved puzzle IDs per room index. Entries are
	// append-only within a room and cleared when the room is advanced past.
	CompletedPuzzles map[int][]uuid.UUID `json:"completed_puzzles"`

	// PlayerAssignments maps player ID -> room index. Populated exactly once,
	// at round start, and only when ParallelMode is set.
	PlayerAssignments map[uuid.UUID]int `json:"player_assignments,omitempty"`

	// CollectedCodes is the append-only set of reward tokens, one per
	// completed room. Its length always equals the number of rooms advanced.
	CollectedCodes []string `json:"collected_codes"`

	HintsUsed    int       `json:"hints_used"`
	LastHintTime time.Time `json:"last_hint_time"`

	// ParallelMode is fixed at creation. When true, players are partitioned
	// across rooms and solve concurrently instead of collectively.
	ParallelMode bool `json:"parallel_mode"`

	// GameState is an open-ended blob for puzzle-instance transient data
	// (generated parameters and the like). The progression engine owns it.
	GameState map[string]interface{} `json:"game_state,omitempty"`

	// Solution is the final secret required to conclude the game. Set at
	// creation, never mutated, and never included in client snapshots.
	Solution string `json:"solution,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Player returns a pointer into the Players slice for the given ID, or nil.
func (l *Lobby) Player(id uuid.UUID) *PlayerState {
	for i := range l.Players {
		if l.Players[i].ID == id {
			return &l.Players[i]
		}
	}
	return nil
}

// HasCompleted reports whether the puzzle is already recorded for the room.
func (l *Lobby) HasCompleted(room int, puzzleID uuid.UUID) bool {
	for _, id := range l.CompletedPuzzles[room] {
		if id == puzzleID {
			return true
		}
	}
	return false
}

// AddCompleted appends a puzzle ID to the room's completion set. Callers are
// expected to check HasCompleted first; duplicates are not added.
func (l *Lobby) AddCompleted(room int, puzzleID uuid.UUID) {
	if l.HasCompleted(room, puzzleID) {
		return
	}
	if l.CompletedPuzzles == nil {
		l.CompletedPuzzles = make(map[int][]uuid.UUID)
	}
	l.CompletedPuzzles[room] = append(l.CompletedPuzzles[room], puzzleID)
}

// Clone returns a deep copy. The in-memory repository hands out and stores
// clones so that a caller mutating a lobby between read and commit can never
// corrupt the canonical copy.
func (l *Lobby) Clone() Lobby {
	out := *l
	out.Players = make([]PlayerState, len(l.Players))
	copy(out.Players, l.Players)
	if l.CompletedPuzzles != nil {
		out.CompletedPuzzles = make(map[int][]uuid.UUID, len(l.CompletedPuzzles))
		for room, ids := range l.CompletedPuzzles {
			cp := make([]uuid.UUID, len(ids))
			copy(cp, ids)
			out.CompletedPuzzles[room] = cp
		}
	}
	if l.PlayerAssignments != nil {
		out.PlayerAssignments = make(map[uuid.UUID]int, len(l.PlayerAssignments))
		for id, room := range l.PlayerAssignments {
			out.PlayerAssignments[id] = room
		}
	}
	if l.CollectedCodes != nil {
		out.CollectedCodes = make([]string, len(l.CollectedCodes))
		copy(out.CollectedCodes, l.CollectedCodes)
	}
	if l.GameState != nil {
		out.GameState = make(map[string]interface{}, len(l.GameState))
		for k, v := range l.GameState {
			out.GameState[k] = v
		}
	}
	return out
}
