package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/messagely/messagely/internal/identity"
	"github.com/messagely/messagely/internal/message"
	"github.com/messagely/messagely/internal/middleware"
)

// RegisterUserRoutes wires the user directory. Per-user pages are only
// visible to that user.
func RegisterUserRoutes(r fiber.Router, users *identity.Handler, messages *message.Handler) {
	group := r.Group("/users", middleware.RequireUser())
	group.Get("/", users.List)

	own := middleware.CorrectUser()
	group.Get("/:username", own, users.Get)
	group.Get("/:username/to", own, messages.Received)
	group.Get("/:username/from", own, messages.Sent)
}
