package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/messagely/messagely/internal/apperr"
	"github.com/messagely/messagely/internal/identity"
	"github.com/messagely/messagely/internal/password"
)

type recordResult struct {
	username string
	err      error
}

type lostUpdateRepository struct {
	*identity.MemoryRepository
}

func (lostUpdateRepository) TouchLastLogin(context.Context, string, time.Time) error {
	return apperr.ErrNotFound
}

func newTestService(t *testing.T) (*Service, *identity.MemoryRepository, chan recordResult) {
	t.Helper()
	repo := identity.NewMemoryRepository()
	svc, recorded := newTestServiceWith(t, repo)
	return svc, repo, recorded
}

func newTestServiceWith(t *testing.T, repo identity.Repository) (*Service, chan recordResult) {
	t.Helper()
	hasher, err := password.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)
	tokens, err := NewTokens("test-secret")
	require.NoError(t, err)

	svc := NewService(identity.NewService(repo, hasher), tokens, nil)
	recorded := make(chan recordResult, 4)
	svc.recorded = func(username string, err error) { recorded <- recordResult{username, err} }
	return svc, recorded
}

func waitRecorded(t *testing.T, ch chan recordResult) recordResult {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("login was not recorded")
		return recordResult{}
	}
}

var alice = identity.RegisterInput{
	Username: "alice", Password: "pw-alice", FirstName: "Alice", LastName: "Liddell", Phone: "+15550001",
}

func TestRegisterIssuesTokenForUser(t *testing.T) {
	svc, _, recorded := newTestService(t)
	ctx := context.Background()

	token, err := svc.Register(ctx, alice)
	require.NoError(t, err)
	waitRecorded(t, recorded)

	username, err := svc.tokens.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "alice", username)
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _, recorded := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, alice)
	require.NoError(t, err)
	waitRecorded(t, recorded)

	_, err = svc.Register(ctx, alice)
	require.ErrorIs(t, err, apperr.ErrDuplicateIdentity)
}

func TestLoginRecordsLastLogin(t *testing.T) {
	svc, repo, recorded := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, alice)
	require.NoError(t, err)
	waitRecorded(t, recorded)
	before, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	token, err := svc.Login(ctx, "alice", "pw-alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	r := waitRecorded(t, recorded)
	require.NoError(t, r.err)
	require.Equal(t, "alice", r.username)

	after, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.True(t, after.LastLoginAt.After(before.LastLoginAt))
	require.Equal(t, before.JoinedAt, after.JoinedAt)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _, recorded := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, alice)
	require.NoError(t, err)
	waitRecorded(t, recorded)

	_, err = svc.Login(ctx, "alice", "wrong")
	require.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "pw-alice")
	require.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "", "")
	require.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestRecordLoginFailureKeepsToken(t *testing.T) {
	svc, recorded := newTestServiceWith(t, lostUpdateRepository{identity.NewMemoryRepository()})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token, err := svc.Register(ctx, alice)
	require.NoError(t, err)
	cancel()

	r := waitRecorded(t, recorded)
	require.Equal(t, "alice", r.username)
	require.ErrorIs(t, r.err, apperr.ErrNotFound)

	username, err := svc.tokens.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "alice", username)

	_, err = svc.Login(context.Background(), "alice", "pw-alice")
	require.NoError(t, err)
	r = waitRecorded(t, recorded)
	require.ErrorIs(t, r.err, apperr.ErrNotFound)
}
