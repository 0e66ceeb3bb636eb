package message

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

// pgForeignKeyViolation is reported when a sender or recipient does not exist.
const pgForeignKeyViolation = "23503"

// Repository persists messages. MarkRead must converge under concurrent
// calls: the first timestamp wins and is returned to every caller.
type Repository interface {
	Create(ctx context.Context, from, to, body string, sentAt time.Time) (Message, error)
	Get(ctx context.Context, id int64) (Message, error)
	MarkRead(ctx context.Context, id int64, at time.Time) (Message, error)
	From(ctx context.Context, username string) ([]Message, error)
	To(ctx context.Context, username string) ([]Message, error)
}

const selectMessages = `SELECT m.id, m.body, m.sent_at, m.read_at,
        f.username, f.first_name, f.last_name, f.phone,
        t.username, t.first_name, t.last_name, t.phone
    FROM messages AS m
    JOIN users AS f ON f.username = m.from_username
    JOIN users AS t ON t.username = m.to_username`

type scanner interface {
	Scan(dest ...any) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed message repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a message and returns it with both users resolved.
func (r *PostgresRepository) Create(ctx context.Context, from, to, body string, sentAt time.Time) (Message, error) {
	var id int64
	err := r.db.QueryRow(ctx, `INSERT INTO messages (from_username, to_username, body, sent_at)
        VALUES ($1, $2, $3, $4) RETURNING id`, from, to, body, sentAt.UTC()).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return Message{}, fmt.Errorf("send %q -> %q: %w", from, to, apperr.ErrNotFound)
		}
		return Message{}, fmt.Errorf("insert message: %w", err)
	}
	return r.Get(ctx, id)
}

// Get fetches one message.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (Message, error) {
	m, err := scanPostgres(r.db.QueryRow(ctx, selectMessages+` WHERE m.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Message{}, fmt.Errorf("message %d: %w", id, apperr.ErrNotFound)
		}
		return Message{}, fmt.Errorf("get message: %w", err)
	}
	return m, nil
}

// MarkRead sets read_at once; later calls keep the original timestamp.
func (r *PostgresRepository) MarkRead(ctx context.Context, id int64, at time.Time) (Message, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE messages SET read_at = COALESCE(read_at, $2) WHERE id = $1`, id, at.UTC())
	if err != nil {
		return Message{}, fmt.Errorf("mark read: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return Message{}, fmt.Errorf("message %d: %w", id, apperr.ErrNotFound)
	}
	return r.Get(ctx, id)
}

// From lists messages sent by username.
func (r *PostgresRepository) From(ctx context.Context, username string) ([]Message, error) {
	return r.list(ctx, selectMessages+` WHERE m.from_username = $1 ORDER BY m.id`, username)
}

// To lists messages received by username.
func (r *PostgresRepository) To(ctx context.Context, username string) ([]Message, error) {
	return r.list(ctx, selectMessages+` WHERE m.to_username = $1 ORDER BY m.id`, username)
}

func (r *PostgresRepository) list(ctx context.Context, query, username string) ([]Message, error) {
	rows, err := r.db.Query(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		m, err := scanPostgres(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanPostgres(row scanner) (Message, error) {
	var (
		m      Message
		readAt *time.Time
	)
	if err := row.Scan(&m.ID, &m.Body, &m.SentAt, &readAt,
		&m.From.Username, &m.From.FirstName, &m.From.LastName, &m.From.Phone,
		&m.To.Username, &m.To.FirstName, &m.To.LastName, &m.To.Phone); err != nil {
		return Message{}, err
	}
	m.SentAt = m.SentAt.UTC()
	if readAt != nil {
		t := readAt.UTC()
		m.ReadAt = &t
	}
	return m, nil
}

var _ Repository = (*PostgresRepository)(nil)
