// internal/store/memory.go
package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Toastaspiring/data-ghosts-sub001/internal/models"
)

// MemoryRepository keeps lobby aggregates in a mutex-guarded map. It hands
// out deep copies on reads and stores deep copies on writes, so the version
// check is the only coordination callers ever need, the same contract the
// postgres repository provides.
type MemoryRepository struct {
	mu      sync.Mutex
	lobbies map[uuid.UUID]*memoryEntry
}

type memoryEntry struct {
	lobby   models.Lobby
	version int64
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{lobbies: make(map[uuid.UUID]*memoryEntry)}
}

func (r *MemoryRepository) Insert(_ context.Context, l *models.Lobby) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lobbies[l.ID] = &memoryEntry{lobby: l.Clone(), version: 1}
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id uuid.UUID) (models.Lobby, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.lobbies[id]
	if !ok {
		return models.Lobby{}, 0, ErrNotFound
	}
	return e.lobby.Clone(), e.version, nil
}

func (r *MemoryRepository) GetByCode(_ context.Context, code string) (models.Lobby, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.lobbies {
		if e.lobby.Code == code && e.lobby.Status != models.StatusCompleted {
			return e.lobby.Clone(), e.version, nil
		}
	}
	return models.Lobby{}, 0, ErrNotFound
}

func (r *MemoryRepository) CompareAndSwap(_ context.Context, l *models.Lobby, expected int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.lobbies[l.ID]
	if !ok {
		return ErrNotFound
	}
	if e.version != expected {
		return ErrVersionConflict
	}
	e.lobby = l.Clone()
	e.version++
	return nil
}

func (r *MemoryRepository) List(_ context.Context) ([]models.Lobby, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Lobby, 0, len(r.lobbies))
	for _, e := range r.lobbies {
		out = append(out, e.lobby.Clone())
	}
	return out, nil
}
