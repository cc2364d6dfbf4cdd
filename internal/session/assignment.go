// internal/session/assignment.go
package session

import (
	"sort"

	"github.com/google/uuid"

	"github.com/Toastaspiring/data-ghosts-sub001/internal/models"
)

// AssignPlayers partitions the lobby's players across roomCount concurrent
// rooms. The partition is deterministic (players ordered by ID, dealt
// round-robin) and stored on the aggregate rather than recomputed, because
// puzzle validity depends on it for the rest of the round. Assignment is
// write-once: a second invocation fails with ErrAssignmentConflict.
func AssignPlayers(l *models.Lobby, roomCount int) error {
	if len(l.PlayerAssignments) > 0 {
		return ErrAssignmentConflict
	}
	if roomCount < 1 || len(l.Players) == 0 {
		return ErrNoPlayers
	}

	ids := make([]uuid.UUID, 0, len(l.Players))
	for _, p := range l.Players {
		ids = append(ids, p.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	l.PlayerAssignments = make(map[uuid.UUID]int, len(ids))
	for i, id := range ids {
		room := i % roomCount
		l.PlayerAssignments[id] = room
		if p := l.Player(id); p != nil {
			r := room
			p.AssignedRoom = &r
		}
	}
	return nil
}
