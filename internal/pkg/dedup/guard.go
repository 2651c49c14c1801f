package dedup

import (
	"context"
	"sync"
	"time"
)

// Guard suppresses repeated outbound sends to the same recipient within a
// time window. It is a best-effort suppressor, not an exactly-once guarantee.
type Guard interface {
	// Seen reports whether key was marked within the window.
	Seen(ctx context.Context, key string) (bool, error)
	// Mark records a send to key now.
	Mark(ctx context.Context, key string) error
}

// MemoryGuard is a process-local Guard. It is reset on restart.
type MemoryGuard struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
	entries map[string]time.Time
}

func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	return &MemoryGuard{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]time.Time),
	}
}

// WithClock replaces the time source. Used by tests.
func (g *MemoryGuard) WithClock(now func() time.Time) *MemoryGuard {
	g.now = now
	return g
}

func (g *MemoryGuard) Seen(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.purgeLocked(now)
	_, ok := g.entries[key]
	return ok, nil
}

func (g *MemoryGuard) Mark(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.purgeLocked(now)
	g.entries[key] = now
	return nil
}

// Len is the number of live entries.
func (g *MemoryGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.purgeLocked(g.now())
	return len(g.entries)
}

func (g *MemoryGuard) purgeLocked(now time.Time) {
	for k, at := range g.entries {
		if now.Sub(at) >= g.ttl {
			delete(g.entries, k)
		}
	}
}
