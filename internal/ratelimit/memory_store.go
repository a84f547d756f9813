package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count       int
	windowStart time.Time
}

// MemoryStore is an in-process window store. Under multi-process deployment
// it is advisory only: each process counts independently, so the effective
// limit is per process, not per user. Deployments that need an authoritative
// shared limit should use RedisStore.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
}

// NewMemoryStore creates an in-process store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]*window)}
}

// Reserve checks and consumes one allowance under a single lock
func (s *MemoryStore) Reserve(_ context.Context, key string, policy Policy, now time.Time) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || now.Sub(w.windowStart) > policy.Window {
		w = &window{windowStart: now}
		s.windows[key] = w
	}

	resetAt := w.windowStart.Add(policy.Window)
	if w.count >= policy.Limit {
		return Decision{Allowed: false, Remaining: 0, ResetAt: resetAt}, nil
	}

	w.count++
	return Decision{Allowed: true, Remaining: policy.Limit - w.count, ResetAt: resetAt}, nil
}
