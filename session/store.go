package session

import (
	"context"
	"sync"
	"time"
)

const DefaultTTL = 24 * time.Hour

// Store persists session state. Implementations are safe for concurrent use and
// concurrent writes to one session are last-writer-wins.
type Store interface {
	Create(ctx context.Context) (*State, error)
	Get(ctx context.Context, id string) (*State, error)
	Put(ctx context.Context, s *State) error
	Delete(ctx context.Context, id string) error
	Close() error
}

type memoryEntry struct {
	state   []byte
	expires time.Time
}

// MemoryStore keeps encoded sessions in process memory. Expired entries are evicted
// when touched.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryStore) Create(ctx context.Context) (*State, error) {
	s := New()
	if err := m.Put(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns a decoded copy so callers cannot mutate stored state without Put.
func (m *MemoryStore) Get(_ context.Context, id string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if m.now().After(e.expires) {
		delete(m.entries, id)
		return nil, ErrSessionNotFound
	}
	return decode(e.state)
}

func (m *MemoryStore) Put(_ context.Context, s *State) error {
	b, err := encode(s)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[s.ID] = memoryEntry{state: b, expires: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.entries, id)
	return nil
}

// Len counts live sessions and evicts expired ones.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, e := range m.entries {
		if now.After(e.expires) {
			delete(m.entries, id)
		}
	}
	return len(m.entries)
}

func (m *MemoryStore) Close() error {
	return nil
}
