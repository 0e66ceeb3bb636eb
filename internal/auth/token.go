package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/messagely/messagely/internal/apperr"
)

// Claims is the token payload. Subject carries the username.
type Claims struct {
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 bearer tokens. Tokens carry no expiry;
// a token stays valid for as long as the signing secret does.
type Tokens struct {
	secret []byte
	now    func() time.Time
}

// NewTokens builds a token issuer. The secret must not be empty.
func NewTokens(secret string) (*Tokens, error) {
	if secret == "" {
		return nil, errors.New("auth: signing secret is empty")
	}
	return &Tokens{secret: []byte(secret), now: time.Now}, nil
}

// Issue signs a token whose subject is username.
func (t *Tokens) Issue(username string) (string, error) {
	if username == "" {
		return "", fmt.Errorf("%w: username required", apperr.ErrInvalidInput)
	}
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:  username,
		IssuedAt: jwt.NewNumericDate(t.now()),
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and returns the username the token was issued
// for. Every failure is reported as apperr.ErrInvalidToken.
func (t *Tokens) Verify(token string) (string, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", apperr.ErrInvalidToken)
	}
	return claims.Subject, nil
}
