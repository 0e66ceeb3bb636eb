package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/messagely/messagely/internal/apperr"
	"github.com/messagely/messagely/internal/identity"
)

const recordLoginTimeout = 5 * time.Second

// Service turns credential checks into bearer tokens.
type Service struct {
	ids    *identity.Service
	tokens *Tokens
	logger *slog.Logger

	// recorded, when set, is called after each background login stamp.
	recorded func(username string, err error)
}

// NewService wires the identity service and token issuer.
func NewService(ids *identity.Service, tokens *Tokens, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{ids: ids, tokens: tokens, logger: logger}
}

// Login authenticates username/password and returns a token. Unknown users
// and wrong passwords both yield apperr.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	ok, err := s.ids.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperr.ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(username)
	if err != nil {
		return "", err
	}
	s.recordLogin(ctx, username)
	return token, nil
}

// Register creates the identity and returns a token for it.
func (s *Service) Register(ctx context.Context, in identity.RegisterInput) (string, error) {
	user, err := s.ids.Register(ctx, in)
	if err != nil {
		return "", err
	}
	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return "", fmt.Errorf("issue token for %q: %w", user.Username, err)
	}
	s.recordLogin(ctx, user.Username)
	return token, nil
}

// recordLogin stamps the login time without holding up the response. A
// failure is logged; the token already issued stays valid.
func (s *Service) recordLogin(ctx context.Context, username string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordLoginTimeout)
		defer cancel()
		err := s.ids.RecordLogin(ctx, username)
		if err != nil {
			s.logger.WarnContext(ctx, "record login failed",
				slog.String("username", username),
				slog.Any("error", err),
			)
		}
		if s.recorded != nil {
			s.recorded(username, err)
		}
	}()
}
