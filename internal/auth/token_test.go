package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/messagely/messagely/internal/apperr"
)

func TestTokensRoundTrip(t *testing.T) {
	tokens, err := NewTokens("s3cret")
	require.NoError(t, err)

	token, err := tokens.Issue("alice")
	require.NoError(t, err)

	username, err := tokens.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "alice", username)
}

func TestTokensNeverExpire(t *testing.T) {
	tokens, err := NewTokens("s3cret")
	require.NoError(t, err)
	tokens.now = func() time.Time { return time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC) }

	token, err := tokens.Issue("alice")
	require.NoError(t, err)

	username, err := tokens.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "alice", username)
}

func TestTokensRejectOtherSecret(t *testing.T) {
	a, err := NewTokens("secret-a")
	require.NoError(t, err)
	b, err := NewTokens("secret-b")
	require.NoError(t, err)

	token, err := a.Issue("alice")
	require.NoError(t, err)

	_, err = b.Verify(token)
	require.ErrorIs(t, err, apperr.ErrInvalidToken)
}

func TestTokensRejectMalformed(t *testing.T) {
	tokens, err := NewTokens("s3cret")
	require.NoError(t, err)

	for _, token := range []string{"", "garbage", "a.b.c", "a.b"} {
		_, err := tokens.Verify(token)
		require.ErrorIs(t, err, apperr.ErrInvalidToken, "token %q", token)
	}
}

func TestTokensRejectUnsigned(t *testing.T) {
	tokens, err := NewTokens("s3cret")
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "alice"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tokens.Verify(unsigned)
	require.ErrorIs(t, err, apperr.ErrInvalidToken)
}

func TestTokensRejectMissingSubject(t *testing.T) {
	tokens, err := NewTokens("s3cret")
	require.NoError(t, err)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"iat": 1}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = tokens.Verify(token)
	require.ErrorIs(t, err, apperr.ErrInvalidToken)
}

func TestNewTokensRequiresSecret(t *testing.T) {
	_, err := NewTokens("")
	require.Error(t, err)
}
