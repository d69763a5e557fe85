package reply

import (
	"context"
	"sync"
	"time"
)

// Store keeps sessions by client session id. Update calls for the same id
// never overlap; the session is saved only when fn returns nil.
type Store interface {
	Get(ctx context.Context, id string) (Session, error)
	Update(ctx context.Context, id string, fn func(*Session) error) error
}

type memoryEntry struct {
	mu      sync.Mutex
	session Session
	touched time.Time
	refs    int
}

// MemoryStore is a process-local Store. Sessions idle for longer than ttl
// are forgotten.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*memoryEntry
	ttl      time.Duration
	now      func() time.Time

	lastPrune time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}

	e := m.acquire(id)
	defer m.release(e)

	e.mu.Lock()
	defer e.mu.Unlock()

	if m.expired(e, m.now()) {
		return Session{}, nil
	}
	return e.session, nil
}

func (m *MemoryStore) Update(ctx context.Context, id string, fn func(*Session) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e := m.acquire(id)
	defer m.release(e)

	e.mu.Lock()
	defer e.mu.Unlock()

	now := m.now()
	if m.expired(e, now) {
		e.session = Session{}
	}

	s := e.session
	if err := fn(&s); err != nil {
		return err
	}
	e.session = s
	e.touched = now
	return nil
}

func (m *MemoryStore) acquire(id string) *memoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pruneLocked()

	e, ok := m.sessions[id]
	if !ok {
		e = &memoryEntry{touched: m.now()}
		m.sessions[id] = e
	}
	e.refs++
	return e
}

func (m *MemoryStore) release(e *memoryEntry) {
	m.mu.Lock()
	e.refs--
	m.mu.Unlock()
}

func (m *MemoryStore) expired(e *memoryEntry, now time.Time) bool {
	return m.ttl > 0 && now.Sub(e.touched) > m.ttl
}

// pruneLocked drops expired entries nobody is holding, at most once per ttl.
func (m *MemoryStore) pruneLocked() {
	if m.ttl <= 0 {
		return
	}
	now := m.now()
	if now.Sub(m.lastPrune) < m.ttl {
		return
	}
	m.lastPrune = now

	for id, e := range m.sessions {
		if e.refs > 0 || !e.mu.TryLock() {
			continue
		}
		expired := m.expired(e, now)
		e.mu.Unlock()
		if expired {
			delete(m.sessions, id)
		}
	}
}
