package sessionx

import (
	"context"
	"sync"
	"time"
)

// MemoryBackend keeps sessions in process memory. It is meant for tests and
// single-process development setups.
type MemoryBackend struct {
	mu   sync.Mutex
	recs map[string]Record
	now  func() time.Time
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{recs: make(map[string]Record), now: time.Now}
}

func (b *MemoryBackend) LoadSession(_ context.Context, id string) (Record, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.recs[id]
	if !ok || !rec.ExpiresAt.After(b.now()) {
		return Record{}, false, nil
	}
	return rec, true, nil
}

func (b *MemoryBackend) SaveSession(_ context.Context, rec Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recs[rec.ID] = rec
	return nil
}

func (b *MemoryBackend) DeleteSession(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.recs, id)
	return nil
}

// Len returns the number of stored records, expired ones included.
func (b *MemoryBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.recs)
}
