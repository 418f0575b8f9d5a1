// internal/cache/cache.go
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Cache stores fetched document bodies keyed by URL.
//
// Box-score and roster pages do not change within a run, so a cached body
// saves one politeness delay per repeated fetch.
type Cache interface {
	// Get returns the cached body and whether the key was present and fresh.
	Get(key string) ([]byte, bool)

	// Set stores body under key for ttl, evicting least recently used
	// entries when the size limit is reached.
	Set(key string, body []byte, ttl time.Duration) error

	// Delete removes key. Missing keys are not an error.
	Delete(key string) error

	// Clear removes everything.
	Clear() error

	// Close stops background cleanup.
	Close()
}

type cacheEntry struct {
	Body      []byte
	ExpiresAt time.Time
	Key       string
}

func (e *cacheEntry) size() int64 {
	return int64(len(e.Body)+len(e.Key)) + entryOverhead
}

// entryOverhead approximates the list element, map slot and struct header
const entryOverhead = 256

// MemoryCache is an in-memory LRU cache with a byte-size bound
type MemoryCache struct {
	store   map[string]*list.Element
	lruList *list.List
	mu      sync.Mutex
	maxSize int64
	size    int64
	ctx     context.Context
	cancel  context.CancelFunc
	hits    uint64
	misses  uint64
}

// NewMemoryCache creates an LRU cache bounded to maxSizeBytes
func NewMemoryCache(maxSizeBytes int64) *MemoryCache {
	if maxSizeBytes <= 0 {
		maxSizeBytes = 64 * 1024 * 1024
	}

	ctx, cancel := context.WithCancel(context.Background())

	mc := &MemoryCache{
		store:   make(map[string]*list.Element),
		lruList: list.New(),
		maxSize: maxSizeBytes,
		ctx:     ctx,
		cancel:  cancel,
	}

	go mc.cleanupExpired()

	return mc
}

// Get retrieves a cached body and marks it most recently used
func (mc *MemoryCache) Get(key string) ([]byte, bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	element, exists := mc.store[key]
	if !exists {
		mc.misses++
		return nil, false
	}

	entry := element.Value.(*cacheEntry)
	if time.Now().After(entry.ExpiresAt) {
		mc.misses++
		mc.remove(element)
		return nil, false
	}

	mc.lruList.MoveToFront(element)
	mc.hits++

	log.Debug().Str("key", key).Msg("Cache hit")
	return entry.Body, true
}

// Set stores body under key with ttl
func (mc *MemoryCache) Set(key string, body []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	entry := &cacheEntry{
		Body:      body,
		ExpiresAt: time.Now().Add(ttl),
		Key:       key,
	}
	size := entry.size()

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if element, exists := mc.store[key]; exists {
		mc.remove(element)
	}

	if size > mc.maxSize {
		log.Debug().
			Str("key", key).
			Int64("size_bytes", size).
			Msg("Entry larger than cache, not caching")
		return nil
	}

	for mc.size+size > mc.maxSize && mc.lruList.Len() > 0 {
		mc.evictLRU()
	}

	mc.store[key] = mc.lruList.PushFront(entry)
	mc.size += size

	log.Debug().
		Str("key", key).
		Dur("ttl", ttl).
		Int64("size_bytes", size).
		Msg("Cached document")

	return nil
}

// Delete removes a cached body
func (mc *MemoryCache) Delete(key string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if element, exists := mc.store[key]; exists {
		mc.remove(element)
	}
	return nil
}

// Clear removes all cached bodies
func (mc *MemoryCache) Clear() error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.store = make(map[string]*list.Element)
	mc.lruList = list.New()
	mc.size = 0
	mc.hits = 0
	mc.misses = 0
	return nil
}

// Close stops the background cleanup goroutine
func (mc *MemoryCache) Close() {
	mc.cancel()
}

// remove must be called with the lock held
func (mc *MemoryCache) remove(element *list.Element) {
	entry := element.Value.(*cacheEntry)
	mc.lruList.Remove(element)
	delete(mc.store, entry.Key)
	mc.size -= entry.size()
}

// evictLRU must be called with the lock held
func (mc *MemoryCache) evictLRU() {
	element := mc.lruList.Back()
	if element == nil {
		return
	}
	entry := element.Value.(*cacheEntry)
	mc.remove(element)

	log.Debug().Str("key", entry.Key).Msg("Evicted from cache (LRU)")
}

func (mc *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mc.mu.Lock()
			now := time.Now()
			var next *list.Element
			for element := mc.lruList.Front(); element != nil; element = next {
				next = element.Next()
				if now.After(element.Value.(*cacheEntry).ExpiresAt) {
					mc.remove(element)
				}
			}
			mc.mu.Unlock()
		case <-mc.ctx.Done():
			return
		}
	}
}

// Stats is a point-in-time view of cache usage
type Stats struct {
	Entries   int
	SizeBytes int64
	MaxSize   int64
	Hits      uint64
	Misses    uint64
}

// HitRate returns hits as a percentage of lookups
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Stats returns cache statistics
func (mc *MemoryCache) Stats() Stats {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	return Stats{
		Entries:   mc.lruList.Len(),
		SizeBytes: mc.size,
		MaxSize:   mc.maxSize,
		Hits:      mc.hits,
		Misses:    mc.misses,
	}
}
