package session

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/seronsenapati/STAYLO/internal/domain/gateway"
)

// Memory is a process-local session store for development without Redis.
type Memory struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]memoryItem
	now   func() time.Time
	// lastSweep is when expired items were last purged on Save.
	lastSweep time.Time
}

type memoryItem struct {
	s       gateway.Session
	expires time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	now := time.Now
	return &Memory{ttl: ttl, items: map[string]memoryItem{}, now: now, lastSweep: now()}
}

func (m *Memory) Get(_ context.Context, id string) (*gateway.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok || !m.now().Before(it.expires) {
		delete(m.items, id)
		return nil, gateway.ErrSessionNotFound
	}
	s := it.s
	s.Flash = slices.Clone(s.Flash)
	return &s, nil
}

func (m *Memory) Save(_ context.Context, s *gateway.Session) error {
	if s.ID == "" {
		return errors.New("session id required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if now.Sub(m.lastSweep) >= m.ttl {
		m.sweep(now)
	}
	cp := *s
	cp.Flash = slices.Clone(s.Flash)
	m.items[s.ID] = memoryItem{s: cp, expires: now.Add(m.ttl)}
	return nil
}

func (m *Memory) sweep(now time.Time) {
	for id, it := range m.items {
		if !now.Before(it.expires) {
			delete(m.items, id)
		}
	}
	m.lastSweep = now
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

var _ gateway.SessionStore = (*Memory)(nil)
