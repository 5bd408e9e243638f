// Package conversation persists per-user dialogue history. The orchestrator
// owns turn serialization; stores only hold the ordered message sequence.
package conversation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"
)

var (
	ErrHistoryNotFound = errors.New("conversation history not found")
	ErrInvalidUser     = errors.New("user id is empty")
)

// Store is the persistence contract used by the orchestrator. History is an
// ordered sequence of role-tagged messages, including tool-call and
// tool-result entries.
type Store interface {
	Load(ctx context.Context, userID string) ([]*schema.Message, error)
	Save(ctx context.Context, userID string, history []*schema.Message) error
	Delete(ctx context.Context, userID string) error
}

const defaultIdleTTL = 24 * time.Hour

// MemoryStore keeps histories in process memory with idle-TTL eviction.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

type memoryEntry struct {
	history    []*schema.Message
	lastActive time.Time
}

type MemoryOption func(*MemoryStore)

func WithIdleTTL(ttl time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]*memoryEntry),
		ttl:     defaultIdleTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *MemoryStore) Load(_ context.Context, userID string) ([]*schema.Message, error) {
	if userID == "" {
		return nil, ErrInvalidUser
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[userID]
	if !ok {
		return nil, ErrHistoryNotFound
	}
	entry.lastActive = s.now()
	return append([]*schema.Message(nil), entry.history...), nil
}

func (s *MemoryStore) Save(_ context.Context, userID string, history []*schema.Message) error {
	if userID == "" {
		return ErrInvalidUser
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[userID] = &memoryEntry{
		history:    append([]*schema.Message(nil), history...),
		lastActive: s.now(),
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, userID)
	return nil
}

// EvictIdle drops histories whose last activity is older than the idle TTL
// and returns how many were removed.
func (s *MemoryStore) EvictIdle() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	evicted := 0
	for userID, entry := range s.entries {
		if entry.lastActive.Before(cutoff) {
			delete(s.entries, userID)
			evicted++
		}
	}
	return evicted
}

// Len reports the number of live histories.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
