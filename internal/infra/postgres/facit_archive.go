package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"festquiz/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// FacitArchive stores facits as JSONB in Postgres.
type FacitArchive struct {
	pool *pgxpool.Pool
}

func NewFacitArchive(pool *pgxpool.Pool) *FacitArchive {
	return &FacitArchive{pool: pool}
}

func (a *FacitArchive) Save(ctx context.Context, facit domain.Facit) error {
	data, err := json.Marshal(facit)
	if err != nil {
		return fmt.Errorf("marshal facit: %w", err)
	}
	_, err = a.pool.Exec(ctx, `
		INSERT INTO facits (id, room_code, finished_at, data)
		VALUES ($1, $2, $3, $4::jsonb)
		ON CONFLICT (id) DO UPDATE SET room_code = EXCLUDED.room_code, finished_at = EXCLUDED.finished_at, data = EXCLUDED.data`,
		facit.ID, facit.RoomCode, facit.FinishedAt, string(data))
	if err != nil {
		return fmt.Errorf("save facit: %w", err)
	}
	return nil
}

func (a *FacitArchive) Get(ctx context.Context, id string) (domain.Facit, error) {
	var raw []byte
	err := a.pool.QueryRow(ctx, `SELECT data FROM facits WHERE id=$1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Facit{}, domain.ErrFacitNotFound
	}
	if err != nil {
		return domain.Facit{}, fmt.Errorf("load facit: %w", err)
	}
	var facit domain.Facit
	if err := json.Unmarshal(raw, &facit); err != nil {
		return domain.Facit{}, fmt.Errorf("unmarshal facit: %w", err)
	}
	return facit, nil
}

const recentPrealloc = 32

func (a *FacitArchive) Recent(ctx context.Context, limit int) ([]domain.Facit, error) {
	rows, err := a.pool.Query(ctx, `SELECT data FROM facits ORDER BY finished_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list facits: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Facit, 0, min(max(limit, 0), recentPrealloc))
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var facit domain.Facit
		if err := json.Unmarshal(raw, &facit); err != nil {
			return nil, fmt.Errorf("unmarshal facit: %w", err)
		}
		out = append(out, facit)
	}
	return out, rows.Err()
}
