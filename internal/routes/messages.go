package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/messagely/messagely/internal/message"
	"github.com/messagely/messagely/internal/middleware"
)

// RegisterMessageRoutes wires message endpoints. sendGuards run before the
// send handler only.
func RegisterMessageRoutes(r fiber.Router, h *message.Handler, sendGuards ...fiber.Handler) {
	group := r.Group("/messages", middleware.RequireUser())
	group.Get("/:id", h.Get)
	group.Post("/", append(sendGuards, h.Send)...)
	group.Post("/:id/read", h.MarkRead)
}
