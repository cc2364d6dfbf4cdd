// internal/models/leaderboard.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// LeaderboardEntry is the immutable record written when a lobby finishes.
// Exactly one entry exists per lobby. LobbyID is nullable in storage so the
// record survives a later purge of the lobby row.
type LeaderboardEntry struct {
	ID         uuid.UUID  `json:"id"`
	LobbyID    *uuid.UUID `json:"lobby_id,omitempty"`
	LobbyName  string     `json:"lobby_name,omitempty"`
	FinishedAt time.Time  `json:"finished_at"`
}
