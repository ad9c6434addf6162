package auth

import (
	"context"
	"sync"
	"time"

	"github.com/mlinyun/Peekpa/pkg/kernel"
)

// MemoryBlacklist is the TokenBlacklist used when Redis is disabled. It is
// process local, so revocations are lost on restart.
type MemoryBlacklist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     kernel.Clock
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{revoked: make(map[string]time.Time), now: kernel.SystemClock}
}

func (b *MemoryBlacklist) WithClock(c kernel.Clock) *MemoryBlacklist {
	b.now = c
	return b
}

var _ TokenBlacklist = (*MemoryBlacklist)(nil)

func (b *MemoryBlacklist) Revoke(_ context.Context, tokenID string, until time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	for id, exp := range b.revoked {
		if !exp.After(now) {
			delete(b.revoked, id)
		}
	}
	if until.After(now) {
		b.revoked[tokenID] = until
	}
	return nil
}

func (b *MemoryBlacklist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	exp, ok := b.revoked[tokenID]
	return ok && exp.After(b.now()), nil
}
