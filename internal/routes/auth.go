package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/messagely/messagely/internal/auth"
)

// RegisterAuthRoutes wires authentication endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler) {
	group := r.Group("/auth")
	group.Post("/login", h.Login)
	group.Post("/register", h.Register)
}
