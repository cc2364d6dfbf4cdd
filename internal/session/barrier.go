// internal/session/barrier.go
package session

import (
	"github.com/google/uuid"

	"github.com/Toastaspiring/data-ghosts-sub001/internal/models"
)

// The readiness barrier is a rendezvous gate: completing a room gives a
// player the capability to proceed, readying up is their explicit consent.
// No shared transition happens until every relevant player has consented, so
// a single player can never force the team forward mid-puzzle.

// Scope selects which players a barrier check covers: the whole lobby, or
// one room partition in parallel mode.
type Scope struct {
	all  bool
	room int
}

// ScopeAll covers every player in the lobby.
func ScopeAll() Scope { return Scope{all: true} }

// ScopeRoom covers the players assigned to one room partition.
func ScopeRoom(room int) Scope { return Scope{room: room} }

// MarkReady records a player's consent to proceed. It fails with
// ErrNotCompleted while the player's effective room is unsolved, and is
// idempotent once set.
func MarkReady(l *models.Lobby, playerID uuid.UUID) error {
	p := l.Player(playerID)
	if p == nil {
		return ErrUnknownPlayer
	}
	if !p.Completed {
		return ErrNotCompleted
	}
	p.Ready = true
	return nil
}

// BarrierOpen reports whether every player in scope is ready. An empty scope
// is closed, never vacuously open; callers re-evaluate after every player
// state mutation rather than only on explicit MarkReady calls.
func BarrierOpen(l *models.Lobby, scope Scope) bool {
	matched := 0
	for i := range l.Players {
		p := &l.Players[i]
		if !scope.all {
			assigned, ok := l.PlayerAssignments[p.ID]
			if !ok || assigned != scope.room {
				continue
			}
		}
		matched++
		if !p.Ready {
			return false
		}
	}
	return matched > 0
}
