package repository

import (
	"context"
	"sync"
	"time"
)

const memorySweepThreshold = 1024

type memEntry struct {
	count     int64
	expiresAt time.Time
}

func (e memEntry) isExpired(now time.Time) bool {
	return now.After(e.expiresAt)
}

type memoryAttemptStore struct {
	mu      sync.Mutex
	entries map[string]memEntry
	now     func() time.Time
}

func NewMemoryAttemptStore() AttemptStore {
	return &memoryAttemptStore{
		entries: make(map[string]memEntry),
		now:     time.Now,
	}
}

func (s *memoryAttemptStore) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, ok := s.entries[key]
	if !ok || entry.isExpired(now) {
		entry = memEntry{expiresAt: now.Add(window)}
		if len(s.entries) >= memorySweepThreshold {
			s.sweep(now)
		}
	}
	entry.count++
	s.entries[key] = entry
	return entry.count, nil
}

// sweep drops expired windows.
func (s *memoryAttemptStore) sweep(now time.Time) {
	for k, e := range s.entries {
		if e.isExpired(now) {
			delete(s.entries, k)
		}
	}
}
