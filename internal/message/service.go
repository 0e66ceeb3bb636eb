package message

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/messagely/messagely/internal/apperr"
	"github.com/messagely/messagely/internal/notification"
)

// Service sends messages and enforces who may read or mark them.
type Service struct {
	repo     Repository
	guard    Guard
	notifier notification.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs a message service. notifier may be nil.
func NewService(repo Repository, notifier notification.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Send stores a message from the authenticated sender and notifies the
// recipient. Notification failures are logged and do not fail the send.
func (s *Service) Send(ctx context.Context, from, to, body string) (Message, error) {
	if strings.TrimSpace(to) == "" || strings.TrimSpace(body) == "" {
		return Message{}, fmt.Errorf("%w: to_username and body required", apperr.ErrInvalidInput)
	}

	m, err := s.repo.Create(ctx, from, to, body, s.now())
	if err != nil {
		return Message{}, err
	}

	if s.notifier != nil {
		err := s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindNewMessage,
			Destination: m.To.Username,
			Body:        fmt.Sprintf("New message %d from %s", m.ID, m.From.Username),
		})
		if err != nil {
			s.logger.WarnContext(ctx, "notify recipient failed",
				slog.Int64("message_id", m.ID),
				slog.String("to", m.To.Username),
				slog.Any("error", err),
			)
		}
	}
	return m, nil
}

// Get returns message id if requester sent or received it. A missing
// message is reported before any permission check.
func (s *Service) Get(ctx context.Context, requester string, id int64) (Message, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return Message{}, err
	}
	if _, err := s.guard.Read(requester, m); err != nil {
		return Message{}, err
	}
	return m, nil
}

// MarkRead sets the read marker on message id. Only the recipient may do so;
// repeated calls return the original timestamp.
func (s *Service) MarkRead(ctx context.Context, requester string, id int64) (Message, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return Message{}, err
	}
	if _, err := s.guard.MarkRead(requester, m); err != nil {
		return Message{}, err
	}
	return s.repo.MarkRead(ctx, id, s.now())
}

// Sent lists messages sent by username.
func (s *Service) Sent(ctx context.Context, username string) ([]Message, error) {
	return s.repo.From(ctx, username)
}

// Received lists messages addressed to username.
func (s *Service) Received(ctx context.Context, username string) ([]Message, error) {
	return s.repo.To(ctx, username)
}
