package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown, expired, or revoked records.
var ErrSessionNotFound = errors.New("auth: session not found or expired")

// DefaultTTL is how long an identity record stays valid.
const DefaultTTL = 7 * 24 * time.Hour

// Store keeps identity records server-side, keyed by an opaque id that is
// the only thing placed in the session cookie.
type Store interface {
	Save(ctx context.Context, id Identity, ttl time.Duration) (string, error)
	Lookup(ctx context.Context, sid string) (Identity, error)
	Revoke(ctx context.Context, sid string) error
}

// NewSessionID returns a fresh opaque session id.
func NewSessionID() string {
	return uuid.NewString()
}

type memoryEntry struct {
	identity  Identity
	expiresAt time.Time
}

// MemoryStore is a single-process Store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// WithClock overrides the time source used for expiry.
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	if now != nil {
		m.now = now
	}
	return m
}

func (m *MemoryStore) Save(_ context.Context, id Identity, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	sid := NewSessionID()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()
	m.entries[sid] = memoryEntry{identity: id, expiresAt: m.now().Add(ttl)}
	return sid, nil
}

func (m *MemoryStore) Lookup(_ context.Context, sid string) (Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[sid]
	if !ok {
		return Identity{}, ErrSessionNotFound
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, sid)
		return Identity{}, ErrSessionNotFound
	}
	return e.identity, nil
}

func (m *MemoryStore) Revoke(_ context.Context, sid string) error {
	m.mu.Lock()
	delete(m.entries, sid)
	m.mu.Unlock()
	return nil
}

// Len returns the number of live records.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()
	return len(m.entries)
}

// sweep drops expired entries. Caller holds mu.
func (m *MemoryStore) sweep() {
	now := m.now()
	for sid, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, sid)
		}
	}
}
