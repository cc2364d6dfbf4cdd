// internal/database/catalog.go
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Toastaspiring/data-ghosts-sub001/internal/models"
	"github.com/Toastaspiring/data-ghosts-sub001/internal/session"
)

// LoadCatalog reads the static room and puzzle definitions once, at startup,
// into an immutable in-memory catalog. Rooms and puzzles never change during
// a deployment, so the engine validates against memory instead of hitting
// the database per submission.
func LoadCatalog(ctx context.Context, pool *pgxpool.Pool) (*session.StaticCatalog, error) {
	rooms, err := loadRooms(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("load rooms: %w", err)
	}
	puzzles, err := loadPuzzles(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("load puzzles: %w", err)
	}
	return session.NewStaticCatalog(rooms, puzzles), nil
}

func loadRooms(ctx context.Context, pool *pgxpool.Pool) ([]models.Room, error) {
	q := `
	SELECT id, room_number, order_index, theme, title, description,
	       code_reward, destination_name, token_name, environmental_context
	FROM rooms
	ORDER BY order_index
	`
	rows, err := pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Room
	for rows.Next() {
		var r models.Room
		if err := rows.Scan(
			&r.ID, &r.RoomNumber, &r.OrderIndex, &r.Theme, &r.Title, &r.Description,
			&r.CodeReward, &r.DestinationName, &r.TokenName, &r.EnvironmentalContext,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func loadPuzzles(ctx context.Context, pool *pgxpool.Pool) ([]models.Puzzle, error) {
	q := `
	SELECT id, room_id, order_index, puzzle_type, puzzle_data,
	       COALESCE(answer, ''), COALESCE(hint, ''), title, COALESCE(description, '')
	FROM puzzles
	ORDER BY room_id, order_index
	`
	rows, err := pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Puzzle
	for rows.Next() {
		var p models.Puzzle
		if err := rows.Scan(
			&p.ID, &p.RoomID, &p.OrderIndex, &p.PuzzleType, &p.PuzzleData,
			&p.Answer, &p.Hint, &p.Title, &p.Description,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
