// internal/database/comp_players.go
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sil-vella/recall/internal/models"
)

// CompPlayerStore fetches synthetic seat-filler accounts from the
// platform users table. It implements engine.CompPlayerSupply; the
// engine recovers locally when a fetch fails or comes back short.
type CompPlayerStore struct {
	Pool *pgxpool.Pool
}

func NewCompPlayerStore(pool *pgxpool.Pool) *CompPlayerStore {
	return &CompPlayerStore{Pool: pool}
}

// FetchCompPlayers returns up to n computer player records in random
// order, so repeated matches in the same room see different names.
func (s *CompPlayerStore) FetchCompPlayers(ctx context.Context, n int) ([]models.CompPlayer, error) {
	if n <= 0 {
		return nil, nil
	}
	q := `
		SELECT id, username, email
		FROM users
		WHERE is_comp_player = TRUE
		ORDER BY random()
		LIMIT $1
	`
	rows, err := s.Pool.Query(ctx, q, n)
	if err != nil {
		return nil, fmt.Errorf("query comp players: %w", err)
	}
	defer rows.Close()

	var out []models.CompPlayer
	for rows.Next() {
		var rec models.CompPlayer
		if err := rows.Scan(&rec.UserID, &rec.Username, &rec.Email); err != nil {
			return nil, fmt.Errorf("scan comp player: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comp players: %w", err)
	}
	return out, nil
}
