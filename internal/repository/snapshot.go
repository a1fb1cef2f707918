package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace/matcher/internal/domain"
)

// ErrNoSnapshot is returned when a marketplace has never been persisted.
var ErrNoSnapshot = errors.New("no taxonomy snapshot stored")

// SnapshotRepository persists the last successfully fetched taxonomy per
// marketplace, so the engine can fall back to it when a refresh fails.
type SnapshotRepository interface {
	Save(ctx context.Context, marketplace string, categories []domain.Category) error
	Load(ctx context.Context, marketplace string) ([]domain.Category, error)
}

type snapshotRepository struct {
	db *pgxpool.Pool
}

func NewSnapshotRepository(db *pgxpool.Pool) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) Save(ctx context.Context, marketplace string, categories []domain.Category) error {
	data, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("failed to encode taxonomy snapshot: %w", err)
	}

	query := `
	INSERT INTO taxonomy_snapshots (marketplace, data, fetched_at)
	VALUES ($1, $2, now())
	ON CONFLICT (marketplace)
	DO UPDATE SET data = $2, fetched_at = now()`
	if _, err := r.db.Exec(ctx, query, marketplace, data); err != nil {
		return fmt.Errorf("failed to save taxonomy snapshot: %w", err)
	}
	return nil
}

func (r *snapshotRepository) Load(ctx context.Context, marketplace string) ([]domain.Category, error) {
	var data []byte
	query := `SELECT data FROM taxonomy_snapshots WHERE marketplace = $1`
	if err := r.db.QueryRow(ctx, query, marketplace).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("failed to load taxonomy snapshot: %w", err)
	}

	var categories []domain.Category
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode taxonomy snapshot: %w", err)
	}
	return categories, nil
}
