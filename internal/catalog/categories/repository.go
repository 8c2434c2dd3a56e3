package categories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storekeep/storekeep/internal/platform/db"
	"github.com/storekeep/storekeep/internal/shared"
)

const categoryColumns = "id, hub_id, parent_id, name, description, is_archived, created_at, updated_at"

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	List(ctx context.Context, hubID int64, filters shared.ListFilters) ([]Category, int, error)
	ListAll(ctx context.Context, hubID int64) ([]Category, error)
	Get(ctx context.Context, hubID, id int64) (Category, error)
	Create(ctx context.Context, c Category) (Category, error)
	Update(ctx context.Context, hubID, id int64, c Category) (Category, error)
	SetParent(ctx context.Context, hubID int64, ids []int64, parentID *int64, now time.Time) error
	DetachChildren(ctx context.Context, hubID, parentID int64, now time.Time) error
	Touch(ctx context.Context, hubID, id int64, now time.Time) error
	Delete(ctx context.Context, hubID, id int64) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

// WithTx runs fn against a repository bound to a single transaction. All
// multi-step tree mutations (batch reparent, delete with child detach) go
// through here so a failed validation rolls back every prior step.
func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) List(ctx context.Context, hubID int64, filters shared.ListFilters) ([]Category, int, error) {
	query := "SELECT " + categoryColumns + " FROM categories WHERE hub_id = $1"
	countQuery := "SELECT COUNT(*) FROM categories WHERE hub_id = $1"
	args := []interface{}{hubID}
	argCount := 1

	if !filters.IncludeArchived {
		query += " AND NOT is_archived"
		countQuery += " AND NOT is_archived"
	}
	if filters.Search != "" {
		argCount++
		clause := " AND name ILIKE $" + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += " ORDER BY name ASC, id ASC"
	if filters.Limit > 0 {
		argCount++
		query += " LIMIT $" + strconv.Itoa(argCount)
		args = append(args, filters.Limit)
		argCount++
		query += " OFFSET $" + strconv.Itoa(argCount)
		args = append(args, filters.Offset())
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	cats, err := scanCategories(rows)
	if err != nil {
		return nil, 0, err
	}
	return cats, total, nil
}

// ListAll returns every category of the hub, archived included. The cycle
// check and the tree builder need the complete forest.
func (r *repository) ListAll(ctx context.Context, hubID int64) ([]Category, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE hub_id = $1 ORDER BY id ASC", hubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCategories(rows)
}

func (r *repository) Get(ctx context.Context, hubID, id int64) (Category, error) {
	var c Category
	err := r.db.QueryRow(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE hub_id = $1 AND id = $2",
		hubID, id,
	).Scan(&c.ID, &c.HubID, &c.ParentID, &c.Name, &c.Description, &c.IsArchived, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, fmt.Errorf("category %d: %w", id, shared.ErrNotFound)
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, c Category) (Category, error) {
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, `
		INSERT INTO categories (hub_id, parent_id, name, description, is_archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id`,
		c.HubID, c.ParentID, c.Name, c.Description, c.IsArchived, now,
	).Scan(&c.ID)
	if err != nil {
		return Category{}, mapPgError(err)
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	return c, nil
}

func (r *repository) Update(ctx context.Context, hubID, id int64, c Category) (Category, error) {
	now := time.Now().UTC()
	tag, err := r.db.Exec(ctx, `
		UPDATE categories
		SET name = $1, description = $2, is_archived = $3, updated_at = $4
		WHERE hub_id = $5 AND id = $6`,
		c.Name, c.Description, c.IsArchived, now, hubID, id)
	if err != nil {
		return Category{}, mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return Category{}, fmt.Errorf("category %d: %w", id, shared.ErrNotFound)
	}
	return r.Get(ctx, hubID, id)
}

func (r *repository) SetParent(ctx context.Context, hubID int64, ids []int64, parentID *int64, now time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `
		UPDATE categories SET parent_id = $1, updated_at = $2
		WHERE hub_id = $3 AND id = ANY($4)`,
		parentID, now, hubID, ids)
	return err
}

// DetachChildren clears the parent pointer of every current child of
// parentID. Assign-children always runs this before installing the new
// child set: the operation is a full replace, never an incremental add.
func (r *repository) DetachChildren(ctx context.Context, hubID, parentID int64, now time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE categories SET parent_id = NULL, updated_at = $1
		WHERE hub_id = $2 AND parent_id = $3`,
		now, hubID, parentID)
	return err
}

func (r *repository) Touch(ctx context.Context, hubID, id int64, now time.Time) error {
	_, err := r.db.Exec(ctx,
		"UPDATE categories SET updated_at = $1 WHERE hub_id = $2 AND id = $3",
		now, hubID, id)
	return err
}

func (r *repository) Delete(ctx context.Context, hubID, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM categories WHERE hub_id = $1 AND id = $2", hubID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func scanCategories(rows pgx.Rows) ([]Category, error) {
	var cats []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.HubID, &c.ParentID, &c.Name, &c.Description, &c.IsArchived, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, shared.ErrConflict)
	}
	return err
}
