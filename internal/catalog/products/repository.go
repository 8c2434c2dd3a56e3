package products

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

const productColumns = "id, hub_id, name, sku, description, units, currency, is_archived, category_id, created_at, updated_at"

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	List(ctx context.Context, hubID int64, filters shared.ListFilters) ([]Product, int, error)
	Get(ctx context.Context, hubID, id int64) (Product, error)
	Insert(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, hubID, id int64, p Product) (Product, error)
	Delete(ctx context.Context, hubID, id int64) error
	CategoryExists(ctx context.Context, hubID, categoryID int64) (bool, error)
	ExistsInHub(ctx context.Context, hubID, productID int64) (bool, error)
	CountPriceLevels(ctx context.Context, hubID int64, ids []int64) (int, error)
	DeleteRates(ctx context.Context, productID int64) error
	InsertRates(ctx context.Context, productID int64, rates []RateInput, now time.Time) error
	ListRates(ctx context.Context, productID int64) ([]Rate, error)
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

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) List(ctx context.Context, hubID int64, filters shared.ListFilters) ([]Product, int, error) {
	query := "SELECT " + productColumns + " FROM products WHERE hub_id = $1"
	countQuery := "SELECT COUNT(*) FROM products WHERE hub_id = $1"
	args := []interface{}{hubID}
	argCount := 1

	if !filters.IncludeArchived {
		query += " AND NOT is_archived"
		countQuery += " AND NOT is_archived"
	}
	if filters.CategoryID != nil {
		argCount++
		clause := " AND category_id = $" + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, *filters.CategoryID)
	}
	if filters.Search != "" {
		argCount++
		n := strconv.Itoa(argCount)
		clause := " AND (name ILIKE $" + n + " OR sku ILIKE $" + n + ")"
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

	var out []Product
	for rows.Next() {
		var p Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, hubID, id int64) (Product, error) {
	var p Product
	err := r.db.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE hub_id = $1 AND id = $2", hubID, id,
	).Scan(&p.ID, &p.HubID, &p.Name, &p.SKU, &p.Description, &p.Units, &p.Currency,
		&p.IsArchived, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, fmt.Errorf("product %d: %w", id, shared.ErrNotFound)
	}
	if err != nil {
		return Product{}, err
	}
	p.Rates, err = r.ListRates(ctx, p.ID)
	return p, err
}

func (r *repository) Insert(ctx context.Context, p Product) (Product, error) {
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, `
		INSERT INTO products (hub_id, name, sku, description, units, currency, is_archived, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING id`,
		p.HubID, p.Name, p.SKU, p.Description, p.Units, p.Currency, p.IsArchived, p.CategoryID, now,
	).Scan(&p.ID)
	if err != nil {
		return Product{}, mapPgError(err)
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return p, nil
}

func (r *repository) Update(ctx context.Context, hubID, id int64, p Product) (Product, error) {
	now := time.Now().UTC()
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET name = $1, sku = $2, description = $3, units = $4, currency = $5,
		    is_archived = $6, category_id = $7, updated_at = $8
		WHERE hub_id = $9 AND id = $10`,
		p.Name, p.SKU, p.Description, p.Units, p.Currency, p.IsArchived, p.CategoryID, now, hubID, id)
	if err != nil {
		return Product{}, mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return Product{}, fmt.Errorf("product %d: %w", id, shared.ErrNotFound)
	}
	return r.Get(ctx, hubID, id)
}

func (r *repository) Delete(ctx context.Context, hubID, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM products WHERE hub_id = $1 AND id = $2", hubID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) CategoryExists(ctx context.Context, hubID, categoryID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM categories WHERE hub_id = $1 AND id = $2)",
		hubID, categoryID,
	).Scan(&exists)
	return exists, err
}

func (r *repository) ExistsInHub(ctx context.Context, hubID, productID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM products WHERE hub_id = $1 AND id = $2)",
		hubID, productID,
	).Scan(&exists)
	return exists, err
}

// CountPriceLevels returns how many of the given ids are price levels of
// the hub. Callers pass distinct ids and compare against len(ids).
func (r *repository) CountPriceLevels(ctx context.Context, hubID int64, ids []int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM price_levels WHERE hub_id = $1 AND id = ANY($2)",
		hubID, ids,
	).Scan(&count)
	return count, err
}

func (r *repository) DeleteRates(ctx context.Context, productID int64) error {
	_, err := r.db.Exec(ctx, "DELETE FROM product_price_level_rates WHERE product_id = $1", productID)
	return err
}

func (r *repository) InsertRates(ctx context.Context, productID int64, rates []RateInput, now time.Time) error {
	if len(rates) == 0 {
		return nil
	}
	levelIDs := make([]int64, len(rates))
	amounts := make([]int64, len(rates))
	for i, rate := range rates {
		levelIDs[i] = rate.PriceLevelID
		amounts[i] = rate.PriceCents
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO product_price_level_rates (product_id, price_level_id, price_cents, created_at, updated_at)
		SELECT $1, level_id, cents, $4, $4
		FROM UNNEST($2::bigint[], $3::bigint[]) AS t(level_id, cents)`,
		productID, levelIDs, amounts, now)
	return err
}

func (r *repository) ListRates(ctx context.Context, productID int64) ([]Rate, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, product_id, price_level_id, price_cents, created_at, updated_at
		FROM product_price_level_rates
		WHERE product_id = $1
		ORDER BY price_level_id ASC, id ASC`,
		productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Rate
	for rows.Next() {
		var rate Rate
		if err := rows.Scan(&rate.ID, &rate.ProductID, &rate.PriceLevelID, &rate.PriceCents, &rate.CreatedAt, &rate.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rate)
	}
	return out, rows.Err()
}

func scanProduct(rows pgx.Rows, p *Product) error {
	return rows.Scan(&p.ID, &p.HubID, &p.Name, &p.SKU, &p.Description, &p.Units, &p.Currency,
		&p.IsArchived, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt)
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, shared.ErrConflict)
	}
	return err
}
