// internal/session/errors.go
package session

import (
	"errors"
	"fmt"
	"time"
)

// Recoverable error taxonomy of the session core. Everything here is a call
// site rejection; none of these should ever tear down a session.
var (
	// ErrInvalidPuzzle: the puzzle does not belong to the player's effective
	// room. Out-of-order submissions land here too.
	ErrInvalidPuzzle = errors.New("puzzle not valid for player's current room")

	// ErrNotCompleted: readiness claimed before the player's room was solved.
	ErrNotCompleted = errors.New("player has not completed their room")

	// ErrBarrierClosed: advance attempted while some player has not readied up.
	ErrBarrierClosed = errors.New("not all players are ready")

	// ErrLobbyClosed: a join or mutation arrived after the waiting phase.
	ErrLobbyClosed = errors.New("lobby is not accepting players")

	// ErrLobbyFull: the lobby reached its occupancy limit.
	ErrLobbyFull = errors.New("lobby is full")

	// ErrNotPlaying: a gameplay mutation arrived while the lobby was not in
	// the playing state.
	ErrNotPlaying = errors.New("lobby is not in play")

	// ErrAssignmentConflict: parallel room assignment attempted twice.
	ErrAssignmentConflict = errors.New("player assignments already exist")

	// ErrUnknownPlayer: the player ID is not part of this lobby.
	ErrUnknownPlayer = errors.New("player not in lobby")

	// ErrNoPlayers: the lobby cannot start without anyone in it.
	ErrNoPlayers = errors.New("lobby has no players")
)

// ThrottledError rejects a hint request inside the throttle window. It
// carries the remaining wait so the caller can surface it; the request is not
// queued or retried.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("hint throttled, retry in %s", e.RetryAfter.Round(time.Millisecond))
}
