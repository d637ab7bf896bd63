// Package session holds the per-client Session Context: a single slot with a
// snapshot of the currently authenticated user, addressed by a session key.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/AdilMir1433/User-Service/internal/model"
)

var ErrNoSession = errors.New("no_session")

// Store keeps at most one user per session key. Within one key, Set followed
// by Get returns exactly what was set until the next Set or Clear.
type Store interface {
	// Get returns nil without error when the slot is empty.
	Get(ctx context.Context, key string) (*model.User, error)
	Set(ctx context.Context, key string, user model.User) error
	Clear(ctx context.Context, key string) error
	// Reset drops every session. It runs once at process start.
	Reset(ctx context.Context) error
}

type MemoryStore struct {
	mu    sync.Mutex
	slots map[string]model.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: map[string]model.User{}}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*model.User, error) {
	if key == "" {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.slots[key]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, user model.User) error {
	if key == "" {
		return ErrNoSession
	}
	s.mu.Lock()
	s.slots[key] = user
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.slots, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	s.slots = map[string]model.User{}
	s.mu.Unlock()
	return nil
}
