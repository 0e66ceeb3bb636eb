package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/messagely/messagely/internal/apperr"
)

// ErrorHandler maps error kinds to HTTP statuses and writes {"error": msg}.
// Unexpected errors are logged and reported as a bare 500.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return func(c *fiber.Ctx, err error) error {
		status, msg := classify(err)
		if status == http.StatusInternalServerError {
			logger.ErrorContext(c.UserContext(), "unhandled error",
				slog.String("method", c.Method()),
				slog.String("path", c.Path()),
				slog.Any("error", err),
			)
		}
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}
}

func classify(err error) (int, string) {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code, fe.Message
	case errors.Is(err, apperr.ErrDuplicateIdentity):
		return http.StatusBadRequest, "username taken, please pick another"
	case errors.Is(err, apperr.ErrInvalidCredentials):
		return http.StatusBadRequest, apperr.ErrInvalidCredentials.Error()
	case errors.Is(err, apperr.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, apperr.ErrInvalidToken):
		return http.StatusUnauthorized, apperr.ErrInvalidToken.Error()
	default:
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}
}
