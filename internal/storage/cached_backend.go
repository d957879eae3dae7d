package storage

import (
	"context"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

var _ Backend = (*CachedBackend)(nil)

const (
	MinCacheSizeBytes = 512 * 1024
	MaxCacheSizeBytes = 64 * 1024 * 1024

	// freecache splits its buffer into 256 segments and refuses entries
	// larger than a quarter of a segment, header included
	cacheSegments      = 256
	cacheEntryOverhead = 24
	cacheKeyAllowance  = 256
)

// MaxCachedEntryBytes is the largest key plus value a cache of the given size
// accepts. Larger values are always read from the inner backend.
func MaxCachedEntryBytes(cacheSizeBytes int) int {
	cacheSizeBytes = max(cacheSizeBytes, MinCacheSizeBytes)
	return cacheSizeBytes/cacheSegments/4 - cacheEntryOverhead
}

// CacheSizeFor returns a cache size able to hold values of up to
// maxValueBytes, clamped to [MinCacheSizeBytes, MaxCacheSizeBytes].
func CacheSizeFor(maxValueBytes int64) int {
	if maxValueBytes <= 0 {
		return MaxCacheSizeBytes
	}
	size := (maxValueBytes + cacheEntryOverhead + cacheKeyAllowance) * cacheSegments * 4
	return int(min(max(size, MinCacheSizeBytes), MaxCacheSizeBytes))
}

// CachedBackend serves reads from an in-memory freecache in front of a
// durable backend. The inner backend stays the source of truth; the cache may
// drop entries at any time.
type CachedBackend struct {
	inner Backend
	cache *freecache.Cache
}

// NewCachedBackend wraps inner with a cache of cacheSizeBytes; a size of zero
// or less picks MaxCacheSizeBytes.
func NewCachedBackend(inner Backend, cacheSizeBytes int) *CachedBackend {
	if cacheSizeBytes <= 0 {
		cacheSizeBytes = MaxCacheSizeBytes
	}
	return &CachedBackend{
		inner: inner,
		cache: freecache.NewCache(cacheSizeBytes),
	}
}

func (b *CachedBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := checkKey(key); err != nil {
		return nil, false, err
	}
	if value, err := b.cache.Get([]byte(key)); err == nil {
		log.Tracef("storage cache hit: %s", key)
		return value, true, nil
	}

	value, found, err := b.inner.Get(ctx, key)
	if err != nil || !found {
		return value, found, err
	}

	if err := b.cache.Set([]byte(key), value, 0); err != nil {
		log.Debugf("storage cache set %s: %s", key, err)
	}
	return value, true, nil
}

func (b *CachedBackend) Set(ctx context.Context, key string, value []byte) error {
	if err := b.inner.Set(ctx, key, value); err != nil {
		return err
	}
	if err := b.cache.Set([]byte(key), value, 0); err != nil {
		// too large for the cache; make sure a stale copy is not served
		b.cache.Del([]byte(key))
		log.Debugf("storage cache set %s: %s", key, err)
	}
	return nil
}

func (b *CachedBackend) Remove(ctx context.Context, key string) error {
	if err := b.inner.Remove(ctx, key); err != nil {
		return err
	}
	b.cache.Del([]byte(key))
	return nil
}

// CacheStats reports hits and misses since creation.
func (b *CachedBackend) CacheStats() (hits, misses int64) {
	return b.cache.HitCount(), b.cache.MissCount()
}
