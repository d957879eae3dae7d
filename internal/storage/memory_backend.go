package storage

import (
	"context"
	"sync"
)

var _ Backend = (*MemoryBackend)(nil)

// MemoryBackend keeps values in a map. Nothing survives the process.
type MemoryBackend struct {
	mu    sync.RWMutex
	items map[string][]byte
	quota int64
	used  int64
}

// NewMemoryBackend creates a backend limited to quotaBytes (0 means unlimited).
func NewMemoryBackend(quotaBytes int64) *MemoryBackend {
	return &MemoryBackend{
		items: make(map[string][]byte),
		quota: quotaBytes,
	}
}

func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	if err := checkKey(key); err != nil {
		return nil, false, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	value, ok := b.items[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (b *MemoryBackend) Set(_ context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	used := b.used
	if prev, ok := b.items[key]; ok {
		used -= entrySize(key, prev)
	}
	used += entrySize(key, value)
	if b.quota > 0 && used > b.quota {
		return ErrStorageQuotaExceeded
	}

	b.items[key] = append([]byte(nil), value...)
	b.used = used
	return nil
}

func (b *MemoryBackend) Remove(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if prev, ok := b.items[key]; ok {
		b.used -= entrySize(key, prev)
		delete(b.items, key)
	}
	return nil
}

// Usage returns the bytes currently counted against the quota.
func (b *MemoryBackend) Usage() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.used
}
