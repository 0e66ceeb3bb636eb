package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

const statusDisabled = "disabled"

// RegisterHealthRoutes adds a readiness endpoint reporting each configured backend.
func RegisterHealthRoutes(app *fiber.App, d Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		checks := fiber.Map{
			"postgres": probe(d.DB != nil, func() error { return d.DB.Ping(ctx) }),
			"sqlite":   probe(d.SQLite != nil, func() error { return d.SQLite.PingContext(ctx) }),
			"redis":    probe(d.Cache != nil, func() error { return d.Cache.Ping(ctx).Err() }),
		}
		status := http.StatusOK
		for _, v := range checks {
			if v != "ok" && v != statusDisabled {
				status = http.StatusServiceUnavailable
			}
		}
		return c.Status(status).JSON(fiber.Map{
			"status":    checks,
			"storage":   d.Cfg.StorageDriver,
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
}

func probe(enabled bool, ping func() error) string {
	if !enabled {
		return statusDisabled
	}
	if err := ping(); err != nil {
		return err.Error()
	}
	return "ok"
}
