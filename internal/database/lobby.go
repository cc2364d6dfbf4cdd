// internal/database/lobby.go
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Toastaspiring/data-ghosts-sub001/internal/models"
	"github.com/Toastaspiring/data-ghosts-sub001/internal/store"
)

// LobbyRepo persists lobby aggregates in the lobbies table. The whole
// mutable portion of the aggregate lives in one row; a bigint version column
// carries the optimistic lock, so CompareAndSwap is a single conditional
// UPDATE and a lost race shows up as zero affected rows.
type LobbyRepo struct {
	pool *pgxpool.Pool
}

// NewLobbyRepo returns a repository over the given pool.
func NewLobbyRepo(pool *pgxpool.Pool) *LobbyRepo {
	return &LobbyRepo{pool: pool}
}

const lobbyColumns = `
	id, code, name, status, players, current_room, completed_puzzles,
	player_assignments, collected_codes, hints_used, last_hint_time,
	parallel_mode, game_state, solution, version, created_at`

// Insert creates the row at version 1.
func (r *LobbyRepo) Insert(ctx context.Context, l *models.Lobby) error {
	blobs, err := marshalLobbyBlobs(l)
	if err != nil {
		return err
	}
	q := `
	INSERT INTO lobbies (
		id, code, name, status, players, current_room, completed_puzzles,
		player_assignments, collected_codes, hints_used, last_hint_time,
		parallel_mode, game_state, solution, version, created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, 1, $15)
	`
	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q,
			l.ID, l.Code, l.Name, string(l.Status),
			blobs.players, l.CurrentRoom, blobs.completed,
			blobs.assignments, blobs.codes, l.HintsUsed, nullableTime(l.LastHintTime),
			l.ParallelMode, blobs.gameState, l.Solution, l.CreatedAt,
		)
		return err
	})
}

// Get fetches a lobby and its current version.
func (r *LobbyRepo) Get(ctx context.Context, id uuid.UUID) (models.Lobby, int64, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+lobbyColumns+` FROM lobbies WHERE id = $1`, id)
	return scanLobby(row)
}

// GetByCode fetches the active (non-completed) lobby holding a join code.
// Codes are only unique among active lobbies, so completed rows are skipped.
func (r *LobbyRepo) GetByCode(ctx context.Context, code string) (models.Lobby, int64, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+lobbyColumns+` FROM lobbies WHERE code = $1 AND status <> 'completed'`, code)
	return scanLobby(row)
}

// CompareAndSwap commits the lobby only if the row still holds the expected
// version; otherwise another writer won the race and the caller must retry
// against freshly read state.
func (r *LobbyRepo) CompareAndSwap(ctx context.Context, l *models.Lobby, expected int64) error {
	blobs, err := marshalLobbyBlobs(l)
	if err != nil {
		return err
	}
	q := `
	UPDATE lobbies SET
		status = $3, players = $4, current_room = $5, completed_puzzles = $6,
		player_assignments = $7, collected_codes = $8, hints_used = $9,
		last_hint_time = $10, game_state = $11, version = version + 1
	WHERE id = $1 AND version = $2
	`
	tag, err := r.pool.Exec(ctx, q,
		l.ID, expected,
		string(l.Status), blobs.players, l.CurrentRoom, blobs.completed,
		blobs.assignments, blobs.codes, l.HintsUsed,
		nullableTime(l.LastHintTime), blobs.gameState,
	)
	if err != nil {
		return fmt.Errorf("cas update lobby %s: %w", l.ID, err)
	}
	if tag.RowsAffected() == 0 {
		// Either the version moved or the row is gone; distinguish for the
		// caller since only the former is retryable.
		var exists bool
		if err := r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM lobbies WHERE id = $1)`, l.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return store.ErrNotFound
		}
		return store.ErrVersionConflict
	}
	return nil
}

// List returns every lobby row; consumed by the stats aggregator.
func (r *LobbyRepo) List(ctx context.Context) ([]models.Lobby, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+lobbyColumns+` FROM lobbies`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Lobby
	for rows.Next() {
		l, _, err := scanLobby(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

type lobbyBlobs struct {
	players     []byte
	completed   []byte
	assignments []byte
	codes       []byte
	gameState   []byte
}

func marshalLobbyBlobs(l *models.Lobby) (lobbyBlobs, error) {
	var b lobbyBlobs
	var err error
	if b.players, err = json.Marshal(l.Players); err != nil {
		return b, fmt.Errorf("marshal players: %w", err)
	}
	if b.completed, err = json.Marshal(l.CompletedPuzzles); err != nil {
		return b, fmt.Errorf("marshal completed_puzzles: %w", err)
	}
	if b.assignments, err = json.Marshal(l.PlayerAssignments); err != nil {
		return b, fmt.Errorf("marshal player_assignments: %w", err)
	}
	if b.codes, err = json.Marshal(l.CollectedCodes); err != nil {
		return b, fmt.Errorf("marshal collected_codes: %w", err)
	}
	if b.gameState, err = json.Marshal(l.GameState); err != nil {
		return b, fmt.Errorf("marshal game_state: %w", err)
	}
	return b, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func scanLobby(row pgx.Row) (models.Lobby, int64, error) {
	var (
		l           models.Lobby
		status      string
		players     []byte
		completed   []byte
		assignments []byte
		codes       []byte
		gameState   []byte
		lastHint    *time.Time
		version     int64
	)
	err := row.Scan(
		&l.ID, &l.Code, &l.Name, &status, &players, &l.CurrentRoom, &completed,
		&assignments, &codes, &l.HintsUsed, &lastHint,
		&l.ParallelMode, &gameState, &l.Solution, &version, &l.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Lobby{}, 0, store.ErrNotFound
	}
	if err != nil {
		return models.Lobby{}, 0, err
	}

	l.Status = models.LobbyStatus(status)
	if lastHint != nil {
		l.LastHintTime = *lastHint
	}
	if err := json.Unmarshal(players, &l.Players); err != nil {
		return models.Lobby{}, 0, fmt.Errorf("unmarshal players: %w", err)
	}
	if err := json.Unmarshal(completed, &l.CompletedPuzzles); err != nil {
		return models.Lobby{}, 0, fmt.Errorf("unmarshal completed_puzzles: %w", err)
	}
	if len(assignments) > 0 && string(assignments) != "null" {
		if err := json.Unmarshal(assignments, &l.PlayerAssignments); err != nil {
			return models.Lobby{}, 0, fmt.Errorf("unmarshal player_assignments: %w", err)
		}
	}
	if err := json.Unmarshal(codes, &l.CollectedCodes); err != nil {
		return models.Lobby{}, 0, fmt.Errorf("unmarshal collected_codes: %w", err)
	}
	if len(gameState) > 0 && string(gameState) != "null" {
		if err := json.Unmarshal(gameState, &l.GameState); err != nil {
			return models.Lobby{}, 0, fmt.Errorf("unmarshal game_state: %w", err)
		}
	}
	return l, version, nil
}
