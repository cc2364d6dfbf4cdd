// internal/models/puzzle.go
package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Puzzle is a static puzzle definition owned by a room. PuzzleType selects
// the widget/validator pair; PuzzleData carries that variant's configuration.
// Answer (when present) is the fallback expected submission and must never be
// sent to clients before validation.
type Puzzle struct {
	ID          uuid.UUID       `json:"id"`
	RoomID      uuid.UUID       `json:"room_id"`
	OrderIndex  int             `json:"order_index"`
	PuzzleType  string          `json:"puzzle_type"`
	PuzzleData  json.RawMessage `json:"puzzle_data,omitempty"`
	Answer      string          `json:"answer,omitempty"`
	Hint        string          `json:"hint,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
}
