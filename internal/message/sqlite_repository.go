package message

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

// SQLiteRepository implements Repository on SQLite. Timestamps are unix
// milliseconds.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository wraps an open SQLite handle.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, from, to, body string, sentAt time.Time) (Message, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (from_username, to_username, body, sent_at) VALUES (?, ?, ?, ?)`,
		from, to, body, sentAt.UTC().UnixMilli())
	if err != nil {
		var sqliteErr *msqlite.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY {
			return Message{}, fmt.Errorf("send %q -> %q: %w", from, to, apperr.ErrNotFound)
		}
		return Message{}, fmt.Errorf("insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Message{}, fmt.Errorf("insert message: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *SQLiteRepository) Get(ctx context.Context, id int64) (Message, error) {
	m, err := scanSQLite(r.db.QueryRowContext(ctx, selectMessages+` WHERE m.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Message{}, fmt.Errorf("message %d: %w", id, apperr.ErrNotFound)
		}
		return Message{}, fmt.Errorf("get message: %w", err)
	}
	return m, nil
}

func (r *SQLiteRepository) MarkRead(ctx context.Context, id int64, at time.Time) (Message, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET read_at = COALESCE(read_at, ?) WHERE id = ?`, at.UTC().UnixMilli(), id)
	if err != nil {
		return Message{}, fmt.Errorf("mark read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Message{}, fmt.Errorf("mark read: %w", err)
	}
	if n == 0 {
		return Message{}, fmt.Errorf("message %d: %w", id, apperr.ErrNotFound)
	}
	return r.Get(ctx, id)
}

func (r *SQLiteRepository) From(ctx context.Context, username string) ([]Message, error) {
	return r.list(ctx, selectMessages+` WHERE m.from_username = ? ORDER BY m.id`, username)
}

func (r *SQLiteRepository) To(ctx context.Context, username string) ([]Message, error) {
	return r.list(ctx, selectMessages+` WHERE m.to_username = ? ORDER BY m.id`, username)
}

func (r *SQLiteRepository) list(ctx context.Context, query, username string) ([]Message, error) {
	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		m, err := scanSQLite(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanSQLite(row scanner) (Message, error) {
	var (
		m      Message
		sentAt int64
		readAt sql.NullInt64
	)
	if err := row.Scan(&m.ID, &m.Body, &sentAt, &readAt,
		&m.From.Username, &m.From.FirstName, &m.From.LastName, &m.From.Phone,
		&m.To.Username, &m.To.FirstName, &m.To.LastName, &m.To.Phone); err != nil {
		return Message{}, err
	}
	m.SentAt = time.UnixMilli(sentAt).UTC()
	if readAt.Valid {
		t := time.UnixMilli(readAt.Int64).UTC()
		m.ReadAt = &t
	}
	return m, nil
}

var _ Repository = (*SQLiteRepository)(nil)
