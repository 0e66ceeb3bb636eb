package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/messagely/messagely/internal/apperr"
	"github.com/messagely/messagely/internal/auth"
)

// TokenVerifier resolves a bearer token to a username. *auth.Tokens satisfies it.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Authenticate reads an optional bearer token and, when it verifies, stores the
// username under auth.LocalUsername. Bad or absent tokens leave the request
// anonymous; RequireUser decides whether that is acceptable.
func Authenticate(tokens TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return c.Next()
		}
		if username, err := tokens.Verify(token); err == nil {
			c.Locals(auth.LocalUsername, username)
		}
		return c.Next()
	}
}

// RequireUser rejects anonymous requests with apperr.ErrInvalidToken.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if auth.CurrentUser(c) == "" {
			return fmt.Errorf("%w: missing or invalid bearer token", apperr.ErrInvalidToken)
		}
		return c.Next()
	}
}

// CorrectUser only lets the user named by the :username path parameter through.
func CorrectUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if auth.CurrentUser(c) != c.Params("username") {
			return fmt.Errorf("%w: not your account", apperr.ErrForbidden)
		}
		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
