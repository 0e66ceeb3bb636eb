package message

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/messagely/messagely/internal/apperr"
	"github.com/messagely/messagely/internal/identity"
)

// UserLookup resolves usernames to identities. identity.Repository
// satisfies it.
type UserLookup interface {
	FindByUsername(ctx context.Context, username string) (identity.Identity, error)
}

type storedMessage struct {
	id     int64
	from   string
	to     string
	body   string
	sentAt time.Time
	readAt *time.Time
}

// MemoryRepository keeps messages in memory and resolves users through a
// UserLookup on every read.
type MemoryRepository struct {
	users UserLookup

	mu       sync.RWMutex
	nextID   int64
	messages map[int64]storedMessage
	order    []int64
}

// NewMemoryRepository builds an empty in-memory message store.
func NewMemoryRepository(users UserLookup) *MemoryRepository {
	return &MemoryRepository{users: users, messages: make(map[int64]storedMessage)}
}

func (r *MemoryRepository) Create(ctx context.Context, from, to, body string, sentAt time.Time) (Message, error) {
	for _, u := range []string{from, to} {
		if _, err := r.users.FindByUsername(ctx, u); err != nil {
			return Message{}, err
		}
	}

	r.mu.Lock()
	r.nextID++
	sm := storedMessage{id: r.nextID, from: from, to: to, body: body, sentAt: sentAt.UTC()}
	r.messages[sm.id] = sm
	r.order = append(r.order, sm.id)
	r.mu.Unlock()

	return r.resolve(ctx, sm)
}

func (r *MemoryRepository) Get(ctx context.Context, id int64) (Message, error) {
	r.mu.RLock()
	sm, ok := r.messages[id]
	r.mu.RUnlock()
	if !ok {
		return Message{}, fmt.Errorf("message %d: %w", id, apperr.ErrNotFound)
	}
	return r.resolve(ctx, sm)
}

func (r *MemoryRepository) MarkRead(ctx context.Context, id int64, at time.Time) (Message, error) {
	r.mu.Lock()
	sm, ok := r.messages[id]
	if !ok {
		r.mu.Unlock()
		return Message{}, fmt.Errorf("message %d: %w", id, apperr.ErrNotFound)
	}
	if sm.readAt == nil {
		t := at.UTC()
		sm.readAt = &t
		r.messages[id] = sm
	}
	r.mu.Unlock()
	return r.resolve(ctx, sm)
}

func (r *MemoryRepository) From(ctx context.Context, username string) ([]Message, error) {
	return r.filter(ctx, func(sm storedMessage) bool { return sm.from == username })
}

func (r *MemoryRepository) To(ctx context.Context, username string) ([]Message, error) {
	return r.filter(ctx, func(sm storedMessage) bool { return sm.to == username })
}

func (r *MemoryRepository) filter(ctx context.Context, keep func(storedMessage) bool) ([]Message, error) {
	r.mu.RLock()
	var matched []storedMessage
	for _, id := range r.order {
		if sm := r.messages[id]; keep(sm) {
			matched = append(matched, sm)
		}
	}
	r.mu.RUnlock()

	out := make([]Message, 0, len(matched))
	for _, sm := range matched {
		m, err := r.resolve(ctx, sm)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *MemoryRepository) resolve(ctx context.Context, sm storedMessage) (Message, error) {
	from, err := r.users.FindByUsername(ctx, sm.from)
	if err != nil {
		return Message{}, err
	}
	to, err := r.users.FindByUsername(ctx, sm.to)
	if err != nil {
		return Message{}, err
	}
	m := Message{ID: sm.id, From: from.Summary(), To: to.Summary(), Body: sm.body, SentAt: sm.sentAt}
	if sm.readAt != nil {
		t := *sm.readAt
		m.ReadAt = &t
	}
	return m, nil
}

var _ Repository = (*MemoryRepository)(nil)
