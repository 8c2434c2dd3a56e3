package users

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

const userColumns = "id, hub_id, email, full_name, password_hash, capabilities, is_active, created_at, updated_at"

type Repository interface {
	List(ctx context.Context, hubID int64) ([]User, error)
	Get(ctx context.Context, hubID, id int64) (User, error)
	GetByEmail(ctx context.Context, hubID int64, email string) (User, error)
	Create(ctx context.Context, u User) (User, error)
	Update(ctx context.Context, hubID, id int64, u User) (User, error)
	Delete(ctx context.Context, hubID, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, hubID int64) ([]User, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+userColumns+" FROM users WHERE hub_id = $1 ORDER BY email ASC", hubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := scanUser(rows, &u); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, hubID, id int64) (User, error) {
	var u User
	err := r.db.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE hub_id = $1 AND id = $2", hubID, id,
	).Scan(&u.ID, &u.HubID, &u.Email, &u.FullName, &u.PasswordHash, &u.Capabilities, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, fmt.Errorf("user %d: %w", id, shared.ErrNotFound)
	}
	return u, err
}

func (r *repository) GetByEmail(ctx context.Context, hubID int64, email string) (User, error) {
	var u User
	err := r.db.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE hub_id = $1 AND lower(email) = lower($2)", hubID, email,
	).Scan(&u.ID, &u.HubID, &u.Email, &u.FullName, &u.PasswordHash, &u.Capabilities, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, fmt.Errorf("user %s: %w", email, shared.ErrNotFound)
	}
	return u, err
}

func (r *repository) Create(ctx context.Context, u User) (User, error) {
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (hub_id, email, full_name, password_hash, capabilities, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id`,
		u.HubID, u.Email, u.FullName, u.PasswordHash, u.Capabilities, u.IsActive, now,
	).Scan(&u.ID)
	if err != nil {
		return User{}, mapPgError(err)
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	return u, nil
}

func (r *repository) Update(ctx context.Context, hubID, id int64, u User) (User, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET full_name = $1, password_hash = $2, capabilities = $3, is_active = $4, updated_at = $5
		WHERE hub_id = $6 AND id = $7`,
		u.FullName, u.PasswordHash, u.Capabilities, u.IsActive, time.Now().UTC(), hubID, id)
	if err != nil {
		return User{}, mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return User{}, fmt.Errorf("user %d: %w", id, shared.ErrNotFound)
	}
	return r.Get(ctx, hubID, id)
}

func (r *repository) Delete(ctx context.Context, hubID, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM users WHERE hub_id = $1 AND id = $2", hubID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func scanUser(rows pgx.Rows, u *User) error {
	return rows.Scan(&u.ID, &u.HubID, &u.Email, &u.FullName, &u.PasswordHash, &u.Capabilities, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, shared.ErrConflict)
	}
	return err
}
