// internal/models/player.go
package models

import "github.com/google/uuid"

// PlayerState is one player's slot inside a lobby. The ID is generated at
// join time and stable for the session.
//
// Completed means the player's effective room is fully solved (capability to
// proceed); Ready is the player's explicit consent to proceed. Ready can only
// be true while Completed is true, and both are reset when a room advances.
type PlayerState struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Completed bool      `json:"completed"`
	Ready     bool      `json:"ready"`
	Score     int       `json:"score"`

	// AssignedRoom mirrors the lobby's player_assignments entry for this
	// player. Nil outside parallel mode.
	AssignedRoom *int `json:"assignedRoom,omitempty"`
}
