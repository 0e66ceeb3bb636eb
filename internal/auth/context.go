package auth

import "github.com/gofiber/fiber/v2"

// LocalUsername is the fiber.Ctx locals key holding the verified username.
const LocalUsername = "username"

// CurrentUser returns the username set by the bearer middleware, or "" for
// anonymous requests.
func CurrentUser(c *fiber.Ctx) string {
	username, _ := c.Locals(LocalUsername).(string)
	return username
}
