package identity

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/messagely/messagely/internal/apperr"
	"github.com/messagely/messagely/internal/infra"
)

func TestSQLiteRepository(t *testing.T) {
	ctx := context.Background()
	db, err := infra.OpenSQLite(ctx, filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewSQLiteRepository(db)
	joined := time.Date(2026, 1, 1, 9, 30, 0, 0, time.UTC)
	in := Identity{
		Username: "alice", PasswordHash: "hash", FirstName: "Alice", LastName: "Liddell",
		Phone: "+15550001", JoinedAt: joined, LastLoginAt: joined,
	}

	_, err = repo.Insert(ctx, in)
	require.NoError(t, err)

	_, err = repo.Insert(ctx, in)
	require.ErrorIs(t, err, apperr.ErrDuplicateIdentity)

	got, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, in, got)

	_, err = repo.FindByUsername(ctx, "ghost")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	login := joined.Add(48 * time.Hour)
	require.NoError(t, repo.TouchLastLogin(ctx, "alice", login))
	got, err = repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, login, got.LastLoginAt)
	require.Equal(t, joined, got.JoinedAt)

	require.ErrorIs(t, repo.TouchLastLogin(ctx, "ghost", login), apperr.ErrNotFound)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Equal(t, []Summary{in.Summary()}, all)
}
