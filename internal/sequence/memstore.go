package sequence

import (
	"context"
	"sync"
)

// MemoryStore is an in-process CounterStore for tests and local runs.
type MemoryStore struct {
	mu        sync.Mutex
	day       string
	lastValue int64
}

// Allocate implements CounterStore with mutex-serialized updates.
func (s *MemoryStore) Allocate(_ context.Context, day string, base int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.day != day {
		s.day = day
		s.lastValue = base
		return base, nil
	}
	s.lastValue++
	return s.lastValue, nil
}
