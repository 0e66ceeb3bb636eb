package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/messagely/messagely/internal/apperr"
)

// SQLiteRepository implements Repository on a SQLite database opened with
// infra.OpenSQLite. Timestamps are stored as unix milliseconds.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository wraps an open SQLite handle.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, id Identity) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, password, first_name, last_name, phone, join_at, last_login_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id.Username, id.PasswordHash, id.FirstName, id.LastName, id.Phone,
		id.JoinedAt.UTC().UnixMilli(), id.LastLoginAt.UTC().UnixMilli())
	if err != nil {
		if isUniqueViolation(err) {
			return Identity{}, fmt.Errorf("insert %q: %w", id.Username, apperr.ErrDuplicateIdentity)
		}
		return Identity{}, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) FindByUsername(ctx context.Context, username string) (Identity, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT username, password, first_name, last_name, phone, join_at, last_login_at
		 FROM users WHERE username = ?`, username)
	var (
		id          Identity
		joinedAt    int64
		lastLoginAt int64
	)
	if err := row.Scan(&id.Username, &id.PasswordHash, &id.FirstName, &id.LastName, &id.Phone, &joinedAt, &lastLoginAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Identity{}, fmt.Errorf("user %q: %w", username, apperr.ErrNotFound)
		}
		return Identity{}, fmt.Errorf("find user: %w", err)
	}
	id.JoinedAt = time.UnixMilli(joinedAt).UTC()
	id.LastLoginAt = time.UnixMilli(lastLoginAt).UTC()
	return id, nil
}

func (r *SQLiteRepository) TouchLastLogin(ctx context.Context, username string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = ? WHERE username = ?`, at.UTC().UnixMilli(), username)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %q: %w", username, apperr.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) All(ctx context.Context) ([]Summary, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT username, first_name, last_name, phone FROM users ORDER BY username`)
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

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}

var _ Repository = (*SQLiteRepository)(nil)
