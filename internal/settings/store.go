package settings

import (
	"context"
	"sync"

	"ccc-bridge/internal/ccc"
)

// Settings identifies the active destination platform and its
// connection parameters. Exactly one integration is active per
// deployment; this is single-tenant-per-instance, not routing.
type Settings struct {
	CallbackToken     string            `json:"callbackToken"`
	CallbackURL       string            `json:"callbackURL"`
	IntegrationName   string            `json:"integrationName"`
	IntegrationFields map[string]string `json:"integrationFields"`
}

// Store is the persistence contract for integration settings. Get
// returns ccc.ErrNotFound when nothing has been stored yet.
type Store interface {
	Put(ctx context.Context, s Settings) error
	Get(ctx context.Context) (Settings, error)
}

// MemoryStore holds settings in process memory. Useful for tests and
// single-node dev; production uses the Redis store.
type MemoryStore struct {
	mu      sync.RWMutex
	current *Settings
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Put(ctx context.Context, in Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := in
	s.current = &cp
	return nil
}

func (s *MemoryStore) Get(ctx context.Context) (Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Settings{}, ccc.ErrNotFound
	}
	return *s.current, nil
}
