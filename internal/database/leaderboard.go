// internal/database/leaderboard.go
package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Toastaspiring/data-ghosts-sub001/internal/models"
)

// LeaderboardRepo writes and reads the immutable finish records.
type LeaderboardRepo struct {
	pool *pgxpool.Pool
}

// NewLeaderboardRepo returns a repository over the given pool.
func NewLeaderboardRepo(pool *pgxpool.Pool) *LeaderboardRepo {
	return &LeaderboardRepo{pool: pool}
}

// RecordFinish inserts the completion record for a lobby. The unique index
// on lobby_id plus ON CONFLICT DO NOTHING makes the write idempotent: when
// two clients evaluate the barrier-open condition near-simultaneously, both
// may call this, and exactly one row results.
func (r *LeaderboardRepo) RecordFinish(ctx context.Context, lobby models.Lobby, finishedAt time.Time) error {
	q := `
	INSERT INTO leaderboard (id, lobby_id, finished_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (lobby_id) DO NOTHING
	`
	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q, uuid.New(), lobby.ID, finishedAt)
		return err
	})
}

// List returns finish records, most recent first. Lobby names are joined in
// for display; a purged lobby leaves the name empty and the reference null.
func (r *LeaderboardRepo) List(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `
	SELECT e.id, e.lobby_id, COALESCE(l.name, ''), e.finished_at
	FROM leaderboard e
	LEFT JOIN lobbies l ON l.id = e.lobby_id
	ORDER BY e.finished_at DESC
	LIMIT $1
	`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.ID, &e.LobbyID, &e.LobbyName, &e.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
