package message

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/messagely/messagely/internal/apperr"
	"github.com/messagely/messagely/internal/auth"
	"github.com/messagely/messagely/internal/identity"
	"github.com/messagely/messagely/internal/validation"
)

// Handler exposes message endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a message handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type sendRequest struct {
	ToUsername string `json:"to_username" validate:"required"`
	Body       string `json:"body" validate:"required"`
}

type messageResponse struct {
	ID       int64                     `json:"id"`
	Body     string                    `json:"body"`
	SentAt   time.Time                 `json:"sent_at"`
	ReadAt   *time.Time                `json:"read_at"`
	FromUser *identity.SummaryResponse `json:"from_user,omitempty"`
	ToUser   *identity.SummaryResponse `json:"to_user,omitempty"`
}

func newMessageResponse(m Message, withFrom, withTo bool) messageResponse {
	out := messageResponse{ID: m.ID, Body: m.Body, SentAt: m.SentAt, ReadAt: m.ReadAt}
	if withFrom {
		from := identity.NewSummaryResponse(m.From)
		out.FromUser = &from
	}
	if withTo {
		to := identity.NewSummaryResponse(m.To)
		out.ToUser = &to
	}
	return out
}

// Get returns message detail to its sender or recipient.
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := messageID(c)
	if err != nil {
		return err
	}
	m, err := h.service.Get(c.UserContext(), auth.CurrentUser(c), id)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": newMessageResponse(m, true, true)})
}

// Send posts a message from the authenticated user.
func (h *Handler) Send(c *fiber.Ctx) error {
	var req sendRequest
	if err := c.BodyParser(&req); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	if err := validation.Struct(req); err != nil {
		return err
	}
	m, err := h.service.Send(c.UserContext(), auth.CurrentUser(c), req.ToUsername, req.Body)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"message": fiber.Map{
		"id":            m.ID,
		"from_username": m.From.Username,
		"to_username":   m.To.Username,
		"body":          m.Body,
		"sent_at":       m.SentAt,
	}})
}

// MarkRead marks a message read on behalf of its recipient.
func (h *Handler) MarkRead(c *fiber.Ctx) error {
	id, err := messageID(c)
	if err != nil {
		return err
	}
	m, err := h.service.MarkRead(c.UserContext(), auth.CurrentUser(c), id)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": fiber.Map{
		"id":      m.ID,
		"read_at": m.ReadAt,
	}})
}

// Sent lists messages sent by the user named in the path.
func (h *Handler) Sent(c *fiber.Ctx) error {
	msgs, err := h.service.Sent(c.UserContext(), c.Params("username"))
	if err != nil {
		return err
	}
	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, newMessageResponse(m, false, true))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"messages": out})
}

// Received lists messages addressed to the user named in the path.
func (h *Handler) Received(c *fiber.Ctx) error {
	msgs, err := h.service.Received(c.UserContext(), c.Params("username"))
	if err != nil {
		return err
	}
	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, newMessageResponse(m, true, false))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"messages": out})
}

func messageID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: message id must be a positive integer", apperr.ErrInvalidInput)
	}
	return id, nil
}
