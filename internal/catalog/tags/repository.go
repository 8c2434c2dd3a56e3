package tags

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
	List(ctx context.Context, hubID int64) ([]Tag, error)
	Create(ctx context.Context, hubID int64, name string) (Tag, error)
	Rename(ctx context.Context, hubID, id int64, name string) (Tag, error)
	Delete(ctx context.Context, hubID, id int64) error
	SetProductTags(ctx context.Context, hubID, productID int64, tagIDs []int64) error
	ListProductTags(ctx context.Context, hubID, productID int64) ([]Tag, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, hubID int64) ([]Tag, error) {
	rows, err := r.db.Query(ctx,
		"SELECT id, hub_id, name, created_at, updated_at FROM product_tags WHERE hub_id = $1 ORDER BY name ASC", hubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTags(rows)
}

func (r *repository) Create(ctx context.Context, hubID int64, name string) (Tag, error) {
	now := time.Now().UTC()
	t := Tag{HubID: hubID, Name: name, CreatedAt: now, UpdatedAt: now}
	err := r.db.QueryRow(ctx,
		"INSERT INTO product_tags (hub_id, name, created_at, updated_at) VALUES ($1, $2, $3, $3) RETURNING id",
		hubID, name, now,
	).Scan(&t.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Tag{}, fmt.Errorf("tag %q: %w", name, shared.ErrConflict)
		}
		return Tag{}, err
	}
	return t, nil
}

func (r *repository) Rename(ctx context.Context, hubID, id int64, name string) (Tag, error) {
	now := time.Now().UTC()
	var t Tag
	err := r.db.QueryRow(ctx, `
		UPDATE product_tags SET name = $1, updated_at = $2
		WHERE hub_id = $3 AND id = $4
		RETURNING id, hub_id, name, created_at, updated_at`,
		name, now, hubID, id,
	).Scan(&t.ID, &t.HubID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Tag{}, fmt.Errorf("tag %d: %w", id, shared.ErrNotFound)
	}
	return t, err
}

func (r *repository) Delete(ctx context.Context, hubID, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM product_tags WHERE hub_id = $1 AND id = $2", hubID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tag %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

// SetProductTags full-replaces the tag set of a product, verifying the
// product and every tag belong to the hub.
func (r *repository) SetProductTags(ctx context.Context, hubID, productID int64, tagIDs []int64) error {
	var exists bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM products WHERE hub_id = $1 AND id = $2)", hubID, productID,
	).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("product %d: %w", productID, shared.ErrNotFound)
	}
	if _, err := r.db.Exec(ctx, "DELETE FROM product_tag_links WHERE product_id = $1", productID); err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}
	tag, err := r.db.Exec(ctx, `
		INSERT INTO product_tag_links (product_id, tag_id)
		SELECT $1, id FROM product_tags WHERE hub_id = $2 AND id = ANY($3)`,
		productID, hubID, tagIDs)
	if err != nil {
		return err
	}
	if int(tag.RowsAffected()) != len(tagIDs) {
		return fmt.Errorf("one or more tags: %w", shared.ErrNotFound)
	}
	return nil
}

func (r *repository) ListProductTags(ctx context.Context, hubID, productID int64) ([]Tag, error) {
	rows, err := r.db.Query(ctx, `
		SELECT t.id, t.hub_id, t.name, t.created_at, t.updated_at
		FROM product_tags t
		JOIN product_tag_links l ON l.tag_id = t.id
		WHERE t.hub_id = $1 AND l.product_id = $2
		ORDER BY t.name ASC`,
		hubID, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTags(rows)
}

func scanTags(rows pgx.Rows) ([]Tag, error) {
	var out []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.HubID, &t.Name, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
