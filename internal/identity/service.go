package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/messagely/messagely/internal/apperr"
)

// PasswordHasher hashes and checks passwords. *password.Hasher satisfies it.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) (bool, error)
}

// Service manages identity registration and credential checks.
type Service struct {
	repo   Repository
	hasher PasswordHasher
	now    func() time.Time

	decoyOnce sync.Once
	decoy     string
}

// NewService creates a new identity service.
func NewService(repo Repository, hasher PasswordHasher) *Service {
	return &Service{repo: repo, hasher: hasher, now: func() time.Time { return time.Now().UTC() }}
}

// Register validates input, hashes the password and stores a new identity.
// A taken username surfaces as apperr.ErrDuplicateIdentity.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Identity, error) {
	if missing := missingFields(in); len(missing) > 0 {
		return Identity{}, fmt.Errorf("%w: %s required", apperr.ErrInvalidInput, strings.Join(missing, ", "))
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return Identity{}, err
	}

	now := s.now()
	return s.repo.Insert(ctx, Identity{
		Username:     in.Username,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		JoinedAt:     now,
		LastLoginAt:  now,
	})
}

// Authenticate reports whether the password matches the stored hash for
// username. An unknown username returns false, exactly like a wrong password.
func (s *Service) Authenticate(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, fmt.Errorf("%w: username and password required", apperr.ErrInvalidInput)
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			// Pay the same hashing cost as a real check.
			_, _ = s.hasher.Verify(password, s.decoyHash())
			return false, nil
		}
		return false, err
	}

	return s.hasher.Verify(password, user.PasswordHash)
}

// decoyHash is a hash at the configured cost that no submitted password is
// expected to match.
func (s *Service) decoyHash() string {
	s.decoyOnce.Do(func() {
		s.decoy, _ = s.hasher.Hash("decoy-password-never-issued")
	})
	return s.decoy
}

// RecordLogin stamps the last login time. It fails with apperr.ErrNotFound if
// the identity disappeared after authentication.
func (s *Service) RecordLogin(ctx context.Context, username string) error {
	return s.repo.TouchLastLogin(ctx, username, s.now())
}

// Get returns the identity for username.
func (s *Service) Get(ctx context.Context, username string) (Identity, error) {
	return s.repo.FindByUsername(ctx, username)
}

// All lists every registered user.
func (s *Service) All(ctx context.Context) ([]Summary, error) {
	return s.repo.All(ctx)
}

func missingFields(in RegisterInput) []string {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"username", in.Username},
		{"password", in.Password},
		{"first_name", in.FirstName},
		{"last_name", in.LastName},
		{"phone", in.Phone},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}
