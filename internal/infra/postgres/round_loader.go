package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"jeopardy-board/internal/domain"
)

// RoundLoader loads round JSONB from Postgres.
type RoundLoader struct {
	pool *pgxpool.Pool
}

func NewRoundLoader(pool *pgxpool.Pool) *RoundLoader {
	return &RoundLoader{pool: pool}
}

func (l *RoundLoader) LoadRound(ctx context.Context, roundID string) (domain.Round, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM rounds WHERE id=$1`, roundID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Round{}, domain.ErrRoundNotFound
	}
	if err != nil {
		return domain.Round{}, fmt.Errorf("load round: %w", err)
	}
	var round domain.Round
	if err := json.Unmarshal(raw, &round); err != nil {
		return domain.Round{}, fmt.Errorf("unmarshal round: %w", err)
	}
	round.ID = roundID
	return round, nil
}

func (l *RoundLoader) ListRounds(ctx context.Context) ([]domain.RoundMetadata, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT id, name, language, difficulty, author,
		       COALESCE(ARRAY(SELECT c->>'name' FROM jsonb_array_elements(data->'categories') AS c), '{}')
		FROM rounds
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}
	defer rows.Close()

	var out []domain.RoundMetadata
	for rows.Next() {
		var meta domain.RoundMetadata
		if err := rows.Scan(&meta.ID, &meta.Name, &meta.Language, &meta.Difficulty, &meta.Author, &meta.Categories); err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		out = append(out, meta)
	}
	return out, rows.Err()
}

// SaveRound inserts or replaces a round.
func (l *RoundLoader) SaveRound(ctx context.Context, round domain.Round, meta domain.RoundMetadata) error {
	raw, err := json.Marshal(round)
	if err != nil {
		return fmt.Errorf("marshal round: %w", err)
	}
	_, err = l.pool.Exec(ctx, `
		INSERT INTO rounds (id, name, language, difficulty, author, data)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, language = EXCLUDED.language, difficulty = EXCLUDED.difficulty,
		    author = EXCLUDED.author, data = EXCLUDED.data, updated_at = now()`,
		round.ID, round.Name, meta.Language, meta.Difficulty, meta.Author, raw)
	if err != nil {
		return fmt.Errorf("save round: %w", err)
	}
	return nil
}
