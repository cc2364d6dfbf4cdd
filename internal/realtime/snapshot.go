// internal/realtime/snapshot.go
package realtime

import (
	"time"

	"github.com/google/uuid"

	"github.com/Toastaspiring/data-ghosts-sub001/internal/models"
)

// ClientLobbyState is the sanitized lobby view broadcast to clients. The
// final solution and puzzle answers never appear here; a client learns about
// correctness only through validated submissions echoed back as state.
type ClientLobbyState struct {
	ID                uuid.UUID             `json:"id"`
	Code              string                `json:"code"`
	Name              string                `json:"name"`
	Status            models.LobbyStatus    `json:"status"`
	Players           []models.PlayerState  `json:"players"`
	CurrentRoom       int                   `json:"current_room"`
	CompletedPuzzles  map[int][]uuid.UUID   `json:"completed_puzzles"`
	PlayerAssignments map[uuid.UUID]int     `json:"player_assignments,omitempty"`
	CollectedCodes    []string              `json:"collected_codes"`
	HintsUsed         int                   `json:"hints_used"`
	LastHintTime      time.Time             `json:"last_hint_time"`
	ParallelMode      bool                  `json:"parallel_mode"`
}

// Snapshot pairs a client state with the version it was committed at.
// Clients replace their view wholesale with the highest version seen;
// full-state replacement avoids any field-level merge ambiguity.
type Snapshot struct {
	Version int64            `json:"version"`
	State   ClientLobbyState `json:"state"`
}

// clone returns a deep copy so an overlay can never write through into the
// state it was derived from.
func (s ClientLobbyState) clone() ClientLobbyState {
	out := s
	out.Players = make([]models.PlayerState, len(s.Players))
	copy(out.Players, s.Players)
	if s.CompletedPuzzles != nil {
		out.CompletedPuzzles = make(map[int][]uuid.UUID, len(s.CompletedPuzzles))
		for room, ids := range s.CompletedPuzzles {
			cp := make([]uuid.UUID, len(ids))
			copy(cp, ids)
			out.CompletedPuzzles[room] = cp
		}
	}
	if s.PlayerAssignments != nil {
		out.PlayerAssignments = make(map[uuid.UUID]int, len(s.PlayerAssignments))
		for id, room := range s.PlayerAssignments {
			out.PlayerAssignments[id] = room
		}
	}
	if s.CollectedCodes != nil {
		out.CollectedCodes = make([]string, len(s.CollectedCodes))
		copy(out.CollectedCodes, s.CollectedCodes)
	}
	return out
}

// ClientState builds the sanitized view from a lobby aggregate.
func ClientState(l models.Lobby) ClientLobbyState {
	c := l.Clone() // detach shared slices/maps before handing out
	return ClientLobbyState{
		ID:                c.ID,
		Code:              c.Code,
		Name:              c.Name,
		Status:            c.Status,
		Players:           c.Players,
		CurrentRoom:       c.CurrentRoom,
		CompletedPuzzles:  c.CompletedPuzzles,
		PlayerAssignments: c.PlayerAssignments,
		CollectedCodes:    c.CollectedCodes,
		HintsUsed:         c.HintsUsed,
		LastHintTime:      c.LastHintTime,
		ParallelMode:      c.ParallelMode,
	}
}
