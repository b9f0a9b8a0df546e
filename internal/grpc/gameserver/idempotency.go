package gameserver

import (
	"sync"
	"time"
)

// DefaultIdempotencyTTL is how long a submitted move's response is replayed
const DefaultIdempotencyTTL = 5 * time.Minute

// cleanupThreshold is the cache size above which expired entries are swept
const cleanupThreshold = 1000

// idempotencyKey represents a composite key for idempotent requests
type idempotencyKey struct {
	playerToken    string
	idempotencyKey string
}

type idempotencyEntry struct {
	response  *SubmitMoveResponse
	createdAt time.Time
}

// IdempotencyManager caches SubmitMove responses per player token and key
type IdempotencyManager struct {
	cache map[idempotencyKey]*idempotencyEntry
	ttl   time.Duration
	now   func() time.Time
	mu    sync.RWMutex
}

// NewIdempotencyManager creates a manager. A non-positive ttl selects
// DefaultIdempotencyTTL.
func NewIdempotencyManager(ttl time.Duration) *IdempotencyManager {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &IdempotencyManager{
		cache: make(map[idempotencyKey]*idempotencyEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Check returns the cached response for token and key, or nil
func (im *IdempotencyManager) Check(token, key string) *SubmitMoveResponse {
	if key == "" {
		return nil
	}

	im.mu.RLock()
	defer im.mu.RUnlock()

	entry, exists := im.cache[idempotencyKey{playerToken: token, idempotencyKey: key}]
	if !exists || im.now().Sub(entry.createdAt) > im.ttl {
		return nil
	}
	return entry.response
}

// Store caches resp for token and key. Empty keys are not cached.
func (im *IdempotencyManager) Store(token, key string, resp *SubmitMoveResponse) {
	if key == "" {
		return
	}

	im.mu.Lock()
	defer im.mu.Unlock()

	im.cache[idempotencyKey{playerToken: token, idempotencyKey: key}] = &idempotencyEntry{
		response:  resp,
		createdAt: im.now(),
	}

	if len(im.cache) > cleanupThreshold {
		im.cleanupOldEntriesLocked()
	}
}

// Len returns the number of cached entries, expired or not
func (im *IdempotencyManager) Len() int {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return len(im.cache)
}

// cleanupOldEntriesLocked removes expired entries. Must be called with mu held.
func (im *IdempotencyManager) cleanupOldEntriesLocked() {
	cutoff := im.now().Add(-im.ttl)
	for key, entry := range im.cache {
		if entry.createdAt.Before(cutoff) {
			delete(im.cache, key)
		}
	}
}
