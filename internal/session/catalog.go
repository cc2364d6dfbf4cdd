// internal/session/catalog.go
package session

import (
	"sort"

	"github.com/google/uuid"

	"github.com/Toastaspiring/data-ghosts-sub001/internal/models"
)

// Catalog is the static room/puzzle universe the engine validates against.
// Implementations are immutable for the lifetime of a game; the database
// repository and the in-memory fixture catalog both satisfy it.
type Catalog interface {
	// RoomCount returns the length of the ordered room sequence.
	RoomCount() int

	// Room returns the room at the given sequence position.
	Room(index int) (models.Room, bool)

	// PuzzlesForRoom returns the full puzzle set of a room, in order.
	PuzzlesForRoom(index int) []models.Puzzle

	// Puzzle looks up a puzzle by ID along with its room's sequence position.
	Puzzle(id uuid.UUID) (models.Puzzle, int, bool)
}

// StaticCatalog is an in-memory Catalog built from fixed definitions. Used by
// tests and by deployments that ship their scenario as seed data.
type StaticCatalog struct {
	rooms   []models.Room
	puzzles map[int][]models.Puzzle
	byID    map[uuid.UUID]puzzleRef
}

type puzzleRef struct {
	puzzle models.Puzzle
	room   int
}

// NewStaticCatalog orders rooms by OrderIndex and indexes their puzzles.
func NewStaticCatalog(rooms []models.Room, puzzles []models.Puzzle) *StaticCatalog {
	ordered := make([]models.Room, len(rooms))
	copy(ordered, rooms)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].OrderIndex < ordered[j].OrderIndex })

	roomIdx := make(map[uuid.UUID]int, len(ordered))
	for i, r := range ordered {
		roomIdx[r.ID] = i
	}

	c := &StaticCatalog{
		rooms:   ordered,
		puzzles: make(map[int][]models.Puzzle),
		byID:    make(map[uuid.UUID]puzzleRef, len(puzzles)),
	}
	for _, p := range puzzles {
		idx, ok := roomIdx[p.RoomID]
		if !ok {
			continue // puzzle references an unknown room, skip it
		}
		c.puzzles[idx] = append(c.puzzles[idx], p)
		c.byID[p.ID] = puzzleRef{puzzle: p, room: idx}
	}
	for idx := range c.puzzles {
		ps := c.puzzles[idx]
		sort.Slice(ps, func(i, j int) bool { return ps[i].OrderIndex < ps[j].OrderIndex })
	}
	return c
}

func (c *StaticCatalog) RoomCount() int { return len(c.rooms) }

func (c *StaticCatalog) Room(index int) (models.Room, bool) {
	if index < 0 || index >= len(c.rooms) {
		return models.Room{}, false
	}
	return c.rooms[index], true
}

func (c *StaticCatalog) PuzzlesForRoom(index int) []models.Puzzle {
	return c.puzzles[index]
}

func (c *StaticCatalog) Puzzle(id uuid.UUID) (models.Puzzle, int, bool) {
	ref, ok := c.byID[id]
	if !ok {
		return models.Puzzle{}, 0, false
	}
	return ref.puzzle, ref.room, true
}
