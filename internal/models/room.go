// internal/models/room.go
package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Room is a static, externally supplied stage definition. Rooms are ordered
// by OrderIndex and never mutated by the session core.
type Room struct {
	ID          uuid.UUID `json:"id"`
	RoomNumber  int       `json:"room_number"`
	OrderIndex  int       `json:"order_index"`
	Theme       string    `json:"theme"`
	Title       string    `json:"title"`
	Description string    `json:"description"`

	// CodeReward is the token appended to the lobby's collected codes when
	// this room is completed.
	CodeReward string `json:"code_reward"`

	DestinationName      string          `json:"destination_name,omitempty"`
	TokenName            string          `json:"token_name,omitempty"`
	EnvironmentalContext json.RawMessage `json:"environmental_context,omitempty"`
}
