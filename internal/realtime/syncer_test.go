// internal/realtime/syncer_test.go
package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Toastaspiring/data-ghosts-sub001/internal/cache"
	"github.com/Toastaspiring/data-ghosts-sub001/internal/models"
	"github.com/Toastaspiring/data-ghosts-sub001/internal/store"
)

func TestSyncerRefetchesAndPublishes(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemoryRepository()
	l := &models.Lobby{ID: uuid.New(), Name: "ghost run", Status: models.StatusPlaying, Solution: "secret"}
	require.NoError(t, repo.Insert(ctx, l))

	broker := NewBroker()
	sub := broker.Subscribe(l.ID)

	events := make(chan cache.ChangeEvent, 4)
	s := NewSyncer(events, repo, broker, nil)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.Run(runCtx)

	events <- cache.ChangeEvent{Table: "lobbies", ID: l.ID}

	select {
	case snap := <-sub:
		assert.Equal(t, int64(1), snap.Version)
		assert.Equal(t, "ghost run", snap.State.Name)
	case <-time.After(time.Second):
		t.Fatal("no snapshot published after change event")
	}
}

func TestSyncerOnChangeHook(t *testing.T) {
	events := make(chan cache.ChangeEvent, 4)
	s := NewSyncer(events, store.NewMemoryRepository(), NewBroker(), nil)

	seen := make(chan cache.ChangeEvent, 4)
	s.OnChange = func(ev cache.ChangeEvent) { seen <- ev }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	// Non-lobby events still reach the hook: the stats refresh listens to
	// everything.
	events <- cache.ChangeEvent{Table: "leaderboard"}

	select {
	case ev := <-seen:
		assert.Equal(t, "leaderboard", ev.Table)
	case <-time.After(time.Second):
		t.Fatal("OnChange hook was not invoked")
	}
}

func TestSyncerStopsWhenStreamCloses(t *testing.T) {
	events := make(chan cache.ChangeEvent)
	s := NewSyncer(events, store.NewMemoryRepository(), NewBroker(), nil)

	done := make(chan struct{})
	go func() {
		s.Run(context.Background())
		close(done)
	}()
	close(events)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop when the event stream closed")
	}
}

func TestClientStateOmitsSolution(t *testing.T) {
	l := models.Lobby{ID: uuid.New(), Solution: "the-final-secret", Status: models.StatusPlaying}
	state := ClientState(l)

	// The sanitized shape has no solution field at all; nothing answer-bearing
	// survives serialization.
	assert.NotContains(t, mustJSON(t, state), "the-final-secret")
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}
