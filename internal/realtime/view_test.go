// internal/realtime/view_test.go
package realtime

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Toastaspiring/data-ghosts-sub001/internal/models"
)

func snapAt(version int64, room int) Snapshot {
	return Snapshot{Version: version, State: ClientLobbyState{CurrentRoom: room, HintsUsed: room}}
}

func TestLocalViewReconcile(t *testing.T) {
	v := NewLocalView()

	require.True(t, v.Reconcile(snapAt(1, 0)))
	assert.Equal(t, int64(1), v.Version())

	t.Run("higher version replaces wholesale", func(t *testing.T) {
		require.True(t, v.Reconcile(snapAt(3, 2)))
		assert.Equal(t, 2, v.Current().CurrentRoom)
	})

	t.Run("stale snapshot is ignored", func(t *testing.T) {
		assert.False(t, v.Reconcile(snapAt(2, 1)))
		assert.Equal(t, int64(3), v.Version())
		assert.Equal(t, 2, v.Current().CurrentRoom, "reordered broadcast must not roll back")
	})

	t.Run("equal version is ignored", func(t *testing.T) {
		assert.False(t, v.Reconcile(snapAt(3, 9)))
		assert.Equal(t, 2, v.Current().CurrentRoom)
	})
}

func TestLocalViewPendingOverlay(t *testing.T) {
	v := NewLocalView()
	require.True(t, v.Reconcile(snapAt(1, 0)))

	v.ApplyPending(func(s *ClientLobbyState) { s.HintsUsed++ })
	assert.True(t, v.HasPending())
	assert.Equal(t, 1, v.Current().HintsUsed, "overlay is rendered")

	// The authoritative snapshot happens to carry the same content; the
	// overlay is still discarded so the optimistic bump cannot stack on top.
	require.True(t, v.Reconcile(Snapshot{Version: 2, State: ClientLobbyState{HintsUsed: 1}}))
	assert.False(t, v.HasPending())
	assert.Equal(t, 1, v.Current().HintsUsed)
}

// An overlay mutation of slice/map-backed state must land on a detached copy:
// once the overlay is discarded, the committed view has to read back exactly
// as broadcast, even when the server rejected the optimistic change.
func TestLocalViewOverlayDoesNotAliasCommitted(t *testing.T) {
	v := NewLocalView()
	me := uuid.New()
	committed := Snapshot{
		Version: 5,
		State: ClientLobbyState{
			Players:          []models.PlayerState{{ID: me, Name: "alice", Completed: true}},
			CompletedPuzzles: map[int][]uuid.UUID{0: {uuid.New()}},
		},
	}
	require.True(t, v.Reconcile(committed))

	v.ApplyPending(func(s *ClientLobbyState) {
		s.Players[0].Ready = true
		s.CompletedPuzzles[0] = append(s.CompletedPuzzles[0], uuid.New())
	})
	assert.True(t, v.Current().Players[0].Ready, "overlay renders the optimistic flag")

	// Server rejected the mutation; the stale snapshot only discards the
	// overlay.
	assert.False(t, v.Reconcile(snapAt(4, 0)))
	assert.False(t, v.HasPending())
	assert.False(t, v.Current().Players[0].Ready, "discarded overlay must leave the committed view unchanged")
	assert.Len(t, v.Current().CompletedPuzzles[0], 1)
}

func TestLocalViewPendingDiscardedOnStale(t *testing.T) {
	v := NewLocalView()
	require.True(t, v.Reconcile(snapAt(5, 3)))

	v.ApplyPending(func(s *ClientLobbyState) { s.HintsUsed = 99 })
	assert.False(t, v.Reconcile(snapAt(4, 1)), "stale version rejected")
	assert.False(t, v.HasPending(), "overlay is discarded even by a rejected snapshot")
	assert.Equal(t, 3, v.Current().CurrentRoom)
}
