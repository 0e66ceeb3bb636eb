package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/messagely/messagely/internal/auth"
)

// Audit logs one line per request. Handler errors are rendered through the
// app's error handler first so the logged status is the one the client sees.
func Audit(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		attrs := []slog.Attr{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", c.Response().StatusCode()),
			slog.Duration("duration", time.Since(start)),
		}
		if requestID := CurrentRequestID(c); requestID != "" {
			attrs = append(attrs, slog.String("request_id", requestID))
		}
		if username := auth.CurrentUser(c); username != "" {
			attrs = append(attrs, slog.String("username", username))
		}

		level := slog.LevelInfo
		if err != nil {
			attrs = append(attrs, slog.Any("error", err))
			level = slog.LevelWarn
			if c.Response().StatusCode() >= fiber.StatusInternalServerError {
				level = slog.LevelError
			}
		}
		logger.LogAttrs(c.UserContext(), level, "request completed", attrs...)
		return nil
	}
}
