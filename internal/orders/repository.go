package orders

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

// ProductSnapshot is what the service copies into a line at order time.
type ProductSnapshot struct {
	ProductID   int64
	Name        string
	SKU         *string
	Description *string
	Currency    string
	PriceCents  int64
}

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	List(ctx context.Context, hubID int64, filters shared.ListFilters) ([]Order, int, error)
	Get(ctx context.Context, hubID, id int64) (Order, error)
	Insert(ctx context.Context, o Order) (Order, error)
	Update(ctx context.Context, hubID, id int64, o Order) error
	Delete(ctx context.Context, hubID, id int64) error
	DeleteLines(ctx context.Context, orderID int64) error
	InsertLines(ctx context.Context, orderID int64, lines []Line) error
	ListLines(ctx context.Context, orderID int64) ([]Line, error)
	// ResolveSnapshot reads the product and its rate under the price level,
	// both scoped to the hub. Missing product or rate is ErrNotFound.
	ResolveSnapshot(ctx context.Context, hubID, productID, priceLevelID int64) (ProductSnapshot, error)
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

const orderColumns = "id, hub_id, reference, customer_name, status, created_at, updated_at"

func (r *repository) List(ctx context.Context, hubID int64, filters shared.ListFilters) ([]Order, int, error) {
	query := "SELECT " + orderColumns + " FROM orders WHERE hub_id = $1"
	countQuery := "SELECT COUNT(*) FROM orders WHERE hub_id = $1"
	args := []interface{}{hubID}
	argCount := 1

	if filters.Search != "" {
		argCount++
		n := strconv.Itoa(argCount)
		clause := " AND (reference ILIKE $" + n + " OR customer_name ILIKE $" + n + ")"
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += " ORDER BY created_at DESC, id DESC"
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

	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.HubID, &o.Reference, &o.CustomerName, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, hubID, id int64) (Order, error) {
	var o Order
	err := r.db.QueryRow(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE hub_id = $1 AND id = $2", hubID, id,
	).Scan(&o.ID, &o.HubID, &o.Reference, &o.CustomerName, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, fmt.Errorf("order %d: %w", id, shared.ErrNotFound)
	}
	if err != nil {
		return Order{}, err
	}
	o.Lines, err = r.ListLines(ctx, o.ID)
	return o, err
}

func (r *repository) Insert(ctx context.Context, o Order) (Order, error) {
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, `
		INSERT INTO orders (hub_id, reference, customer_name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id`,
		o.HubID, o.Reference, o.CustomerName, o.Status, now,
	).Scan(&o.ID)
	if err != nil {
		return Order{}, mapPgError(err)
	}
	o.CreatedAt = now
	o.UpdatedAt = now
	return o, nil
}

func (r *repository) Update(ctx context.Context, hubID, id int64, o Order) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders SET reference = $1, customer_name = $2, status = $3, updated_at = $4
		WHERE hub_id = $5 AND id = $6`,
		o.Reference, o.CustomerName, o.Status, time.Now().UTC(), hubID, id)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, hubID, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM orders WHERE hub_id = $1 AND id = $2", hubID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) DeleteLines(ctx context.Context, orderID int64) error {
	_, err := r.db.Exec(ctx, "DELETE FROM order_products WHERE order_id = $1", orderID)
	return err
}

func (r *repository) InsertLines(ctx context.Context, orderID int64, lines []Line) error {
	for _, line := range lines {
		_, err := r.db.Exec(ctx, `
			INSERT INTO order_products (order_id, product_id, name, sku, description, price_cents, currency, quantity)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			orderID, line.ProductID, line.Name, line.SKU, line.Description, line.PriceCents, line.Currency, line.Quantity)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) ListLines(ctx context.Context, orderID int64) ([]Line, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, product_id, name, sku, description, price_cents, currency, quantity
		FROM order_products WHERE order_id = $1 ORDER BY id ASC`,
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Name, &l.SKU, &l.Description, &l.PriceCents, &l.Currency, &l.Quantity); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *repository) ResolveSnapshot(ctx context.Context, hubID, productID, priceLevelID int64) (ProductSnapshot, error) {
	var snap ProductSnapshot
	err := r.db.QueryRow(ctx, `
		SELECT p.id, p.name, p.sku, p.description, p.currency, r.price_cents
		FROM products p
		JOIN product_price_level_rates r ON r.product_id = p.id
		JOIN price_levels pl ON pl.id = r.price_level_id
		WHERE p.hub_id = $1 AND p.id = $2 AND pl.hub_id = $1 AND pl.id = $3`,
		hubID, productID, priceLevelID,
	).Scan(&snap.ProductID, &snap.Name, &snap.SKU, &snap.Description, &snap.Currency, &snap.PriceCents)
	if errors.Is(err, pgx.ErrNoRows) {
		return ProductSnapshot{}, fmt.Errorf("product %d with price level %d: %w", productID, priceLevelID, shared.ErrNotFound)
	}
	return snap, err
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, shared.ErrConflict)
	}
	return err
}
