package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/messagely/messagely/internal/apperr"
)

// pgUniqueViolation is the SQLSTATE Postgres reports for a duplicate key.
const pgUniqueViolation = "23505"

// Repository persists identities. Insert must be atomic with respect to the
// username uniqueness constraint.
type Repository interface {
	Insert(ctx context.Context, id Identity) (Identity, error)
	FindByUsername(ctx context.Context, username string) (Identity, error)
	TouchLastLogin(ctx context.Context, username string, at time.Time) error
	All(ctx context.Context) ([]Summary, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert creates a user row.
func (r *PostgresRepository) Insert(ctx context.Context, id Identity) (Identity, error) {
	_, err := r.db.Exec(ctx, `INSERT INTO users (username, password, first_name, last_name, phone, join_at, last_login_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id.Username, id.PasswordHash, id.FirstName, id.LastName, id.Phone, id.JoinedAt.UTC(), id.LastLoginAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return Identity{}, fmt.Errorf("insert %q: %w", id.Username, apperr.ErrDuplicateIdentity)
		}
		return Identity{}, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

// FindByUsername fetches a user by username.
func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (Identity, error) {
	row := r.db.QueryRow(ctx, `SELECT username, password, first_name, last_name, phone, join_at, last_login_at
        FROM users WHERE username = $1`, username)
	var id Identity
	if err := row.Scan(&id.Username, &id.PasswordHash, &id.FirstName, &id.LastName, &id.Phone, &id.JoinedAt, &id.LastLoginAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Identity{}, fmt.Errorf("user %q: %w", username, apperr.ErrNotFound)
		}
		return Identity{}, fmt.Errorf("find user: %w", err)
	}
	id.JoinedAt = id.JoinedAt.UTC()
	id.LastLoginAt = id.LastLoginAt.UTC()
	return id, nil
}

// TouchLastLogin stamps the user's last successful login.
func (r *PostgresRepository) TouchLastLogin(ctx context.Context, username string, at time.Time) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET last_login_at = $1 WHERE username = $2`, at.UTC(), username)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("user %q: %w", username, apperr.ErrNotFound)
	}
	return nil
}

// All lists every user ordered by username.
func (r *PostgresRepository) All(ctx context.Context) ([]Summary, error) {
	rows, err := r.db.Query(ctx, `SELECT username, first_name, last_name, phone FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.Username, &s.FirstName, &s.LastName, &s.Phone); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

var _ Repository = (*PostgresRepository)(nil)
