package pricelevels

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storekeep/storekeep/internal/shared"
)

type Repository interface {
	List(ctx context.Context, hubID int64) ([]PriceLevel, error)
	Get(ctx context.Context, hubID, id int64) (PriceLevel, error)
	Create(ctx context.Context, hubID int64, name string) (PriceLevel, error)
	Update(ctx context.Context, hubID, id int64, name string) (PriceLevel, error)
	Delete(ctx context.Context, hubID, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, hubID int64) ([]PriceLevel, error) {
	rows, err := r.db.Query(ctx,
		"SELECT id, hub_id, name, created_at, updated_at FROM price_levels WHERE hub_id = $1 ORDER BY name ASC, id ASC",
		hubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var levels []PriceLevel
	for rows.Next() {
		var pl PriceLevel
		if err := rows.Scan(&pl.ID, &pl.HubID, &pl.Name, &pl.CreatedAt, &pl.UpdatedAt); err != nil {
			return nil, err
		}
		levels = append(levels, pl)
	}
	return levels, rows.Err()
}

func (r *repository) Get(ctx context.Context, hubID, id int64) (PriceLevel, error) {
	var pl PriceLevel
	err := r.db.QueryRow(ctx,
		"SELECT id, hub_id, name, created_at, updated_at FROM price_levels WHERE hub_id = $1 AND id = $2",
		hubID, id,
	).Scan(&pl.ID, &pl.HubID, &pl.Name, &pl.CreatedAt, &pl.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return PriceLevel{}, fmt.Errorf("price level %d: %w", id, shared.ErrNotFound)
	}
	return pl, err
}

func (r *repository) Create(ctx context.Context, hubID int64, name string) (PriceLevel, error) {
	now := time.Now().UTC()
	pl := PriceLevel{HubID: hubID, Name: name, CreatedAt: now, UpdatedAt: now}
	err := r.db.QueryRow(ctx,
		"INSERT INTO price_levels (hub_id, name, created_at, updated_at) VALUES ($1, $2, $3, $3) RETURNING id",
		hubID, name, now,
	).Scan(&pl.ID)
	if err != nil {
		return PriceLevel{}, mapPgError(err)
	}
	return pl, nil
}

func (r *repository) Update(ctx context.Context, hubID, id int64, name string) (PriceLevel, error) {
	tag, err := r.db.Exec(ctx,
		"UPDATE price_levels SET name = $1, updated_at = $2 WHERE hub_id = $3 AND id = $4",
		name, time.Now().UTC(), hubID, id)
	if err != nil {
		return PriceLevel{}, mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return PriceLevel{}, fmt.Errorf("price level %d: %w", id, shared.ErrNotFound)
	}
	return r.Get(ctx, hubID, id)
}

func (r *repository) Delete(ctx context.Context, hubID, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM price_levels WHERE hub_id = $1 AND id = $2", hubID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("price level %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, shared.ErrConflict)
	}
	return err
}
