// internal/session/assignment_test.go
package session

import (
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Toastaspiring/data-ghosts-sub001/internal/models"
)

func lobbyWithPlayers(n int) *models.Lobby {
	l := &models.Lobby{Status: models.StatusWaiting, ParallelMode: true}
	for i := 0; i < n; i++ {
		l.Players = append(l.Players, models.PlayerState{ID: uuid.New()})
	}
	return l
}

func TestAssignPlayersDeterministic(t *testing.T) {
	l := lobbyWithPlayers(5)

	// The same player set shuffled differently must produce the same mapping.
	shuffled := l.Clone()
	shuffled.Players[0], shuffled.Players[4] = shuffled.Players[4], shuffled.Players[0]
	shuffled.Players[1], shuffled.Players[3] = shuffled.Players[3], shuffled.Players[1]

	require.NoError(t, AssignPlayers(l, 3))
	require.NoError(t, AssignPlayers(&shuffled, 3))
	assert.Equal(t, l.PlayerAssignments, shuffled.PlayerAssignments)
}

func TestAssignPlayersRoundRobin(t *testing.T) {
	l := lobbyWithPlayers(5)
	require.NoError(t, AssignPlayers(l, 2))

	counts := make(map[int]int)
	for _, room := range l.PlayerAssignments {
		counts[room]++
	}
	assert.Equal(t, map[int]int{0: 3, 1: 2}, counts, "round robin fills rooms as evenly as possible")

	// Sorted IDs are dealt in order.
	ids := make([]string, 0, len(l.Players))
	for _, p := range l.Players {
		ids = append(ids, p.ID.String())
	}
	sort.Strings(ids)
	for i, s := range ids {
		id, _ := uuid.Parse(s)
		assert.Equal(t, i%2, l.PlayerAssignments[id])
	}
}

func TestAssignPlayersMirrorsPlayerState(t *testing.T) {
	l := lobbyWithPlayers(3)
	require.NoError(t, AssignPlayers(l, 3))
	for _, p := range l.Players {
		require.NotNil(t, p.AssignedRoom)
		assert.Equal(t, l.PlayerAssignments[p.ID], *p.AssignedRoom)
	}
}

func TestAssignPlayersWriteOnce(t *testing.T) {
	l := lobbyWithPlayers(2)
	require.NoError(t, AssignPlayers(l, 2))
	first := l.PlayerAssignments

	err := AssignPlayers(l, 2)
	assert.ErrorIs(t, err, ErrAssignmentConflict)
	assert.Equal(t, first, l.PlayerAssignments, "conflict must not rewrite the mapping")
}

func TestAssignPlayersEmpty(t *testing.T) {
	l := &models.Lobby{}
	assert.ErrorIs(t, AssignPlayers(l, 2), ErrNoPlayers)
}
