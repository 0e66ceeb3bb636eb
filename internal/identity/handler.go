package identity

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes user directory endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs an identity HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// SummaryResponse is the JSON shape of a user summary.
type SummaryResponse struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// NewSummaryResponse maps a Summary to its JSON shape.
func NewSummaryResponse(s Summary) SummaryResponse {
	return SummaryResponse{Username: s.Username, FirstName: s.FirstName, LastName: s.LastName, Phone: s.Phone}
}

type userResponse struct {
	SummaryResponse
	JoinedAt    time.Time `json:"join_at"`
	LastLoginAt time.Time `json:"last_login_at"`
}

// List returns basic info on all users.
func (h *Handler) List(c *fiber.Ctx) error {
	users, err := h.service.All(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]SummaryResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewSummaryResponse(u))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"users": out})
}

// Get returns the profile of the user named in the path.
func (h *Handler) Get(c *fiber.Ctx) error {
	user, err := h.service.Get(c.UserContext(), c.Params("username"))
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"user": userResponse{
		SummaryResponse: NewSummaryResponse(user.Summary()),
		JoinedAt:        user.JoinedAt,
		LastLoginAt:     user.LastLoginAt,
	}})
}
