package identity

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/messagely/messagely/internal/apperr"
)

// MemoryRepository is an in-memory identity store for development and tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]Identity
}

// NewMemoryRepository builds an empty in-memory identity store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]Identity)}
}

func (r *MemoryRepository) Insert(_ context.Context, id Identity) (Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[id.Username]; exists {
		return Identity{}, fmt.Errorf("insert %q: %w", id.Username, apperr.ErrDuplicateIdentity)
	}
	r.users[id.Username] = id
	return id, nil
}

func (r *MemoryRepository) FindByUsername(_ context.Context, username string) (Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.users[username]
	if !ok {
		return Identity{}, fmt.Errorf("user %q: %w", username, apperr.ErrNotFound)
	}
	return id, nil
}

func (r *MemoryRepository) TouchLastLogin(_ context.Context, username string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.users[username]
	if !ok {
		return fmt.Errorf("user %q: %w", username, apperr.ErrNotFound)
	}
	id.LastLoginAt = at.UTC()
	r.users[username] = id
	return nil
}

func (r *MemoryRepository) All(_ context.Context) ([]Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Summary, 0, len(r.users))
	for _, id := range r.users {
		out = append(out, id.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

var _ Repository = (*MemoryRepository)(nil)
