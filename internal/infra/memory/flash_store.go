package memory

import (
	"context"
	"sync"
	"time"

	"millionaire-service/internal/domain"
)

// FlashStore keeps notices per browser session in memory until popped or expired.
type FlashStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu      sync.Mutex
	entries map[string]flashEntry
}

type flashEntry struct {
	flashes   []domain.Flash
	expiresAt time.Time
}

func NewFlashStore(ttl time.Duration) *FlashStore {
	return &FlashStore{ttl: ttl, clock: time.Now, entries: make(map[string]flashEntry)}
}

func (s *FlashStore) Push(_ context.Context, sessionID string, flash domain.Flash) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	entry := s.entries[sessionID]
	if !entry.expiresAt.IsZero() && !entry.expiresAt.After(now) {
		entry = flashEntry{}
	}
	entry.flashes = append(entry.flashes, flash)
	entry.expiresAt = now.Add(s.ttl)
	s.entries[sessionID] = entry
	return nil
}

func (s *FlashStore) Pop(_ context.Context, sessionID string) ([]domain.Flash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[sessionID]
	if !ok {
		return nil, nil
	}
	delete(s.entries, sessionID)
	if !entry.expiresAt.After(s.clock()) {
		return nil, nil
	}
	return entry.flashes, nil
}
