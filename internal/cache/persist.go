package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	kerrors "github.com/secwise/kbsearch/internal/errors"
)

// persistedEntry is the on-disk shape of one cache entry. Creation
// timestamps are persisted so TTL semantics survive restarts: an entry
// loaded with a stale timestamp is already expired, never reset to fresh.
type persistedEntry[K comparable, V any] struct {
	Key       K         `json:"key"`
	Value     V         `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// persistedCache is the on-disk bundle: the configured TTL plus all
// entries in LRU-to-MRU order.
type persistedCache[K comparable, V any] struct {
	TTLSeconds int64                  `json:"ttl_seconds"`
	Entries    []persistedEntry[K, V] `json:"entries"`
}

// Save serializes the full entry set including timestamps. Entries are
// written in LRU-to-MRU order so a later Load reconstructs the same
// recency ordering. Failures are reported as recoverable serialization
// errors; callers degrade to in-memory state.
func (c *Cache[K, V]) Save(path string) error {
	c.mu.Lock()
	bundle := persistedCache[K, V]{
		TTLSeconds: int64(c.ttl / time.Second),
	}
	for _, key := range c.lru.Keys() {
		e, ok := c.lru.Peek(key)
		if !ok {
			continue
		}
		bundle.Entries = append(bundle.Entries, persistedEntry[K, V]{
			Key:       key,
			Value:     e.Value,
			CreatedAt: e.CreatedAt,
		})
	}
	c.mu.Unlock()

	data, err := json.Marshal(bundle)
	if err != nil {
		return kerrors.Serialization("encode cache state", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return kerrors.Serialization(fmt.Sprintf("create cache directory for %s", path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return kerrors.Serialization(fmt.Sprintf("write cache state to %s", path), err)
	}
	return nil
}

// Load restores persisted entries into the cache. Staleness is judged
// against the stricter of the artifact's TTL and this cache's TTL, so
// entries saved under a short TTL do not come back to life in a cache
// configured with a longer one. Returns the number of live entries
// restored. A missing file is not an error; the cache simply starts
// empty.
func (c *Cache[K, V]) Load(path string) (int, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, kerrors.Serialization(fmt.Sprintf("read cache state from %s", path), err)
	}

	var bundle persistedCache[K, V]
	if err := json.Unmarshal(data, &bundle); err != nil {
		return 0, kerrors.Serialization(fmt.Sprintf("decode cache state from %s", path), err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ttl := c.ttl
	if bundle.TTLSeconds > 0 {
		if persisted := time.Duration(bundle.TTLSeconds) * time.Second; persisted < ttl {
			ttl = persisted
		}
	}

	restored := 0
	now := c.now()
	for _, pe := range bundle.Entries {
		if now.Sub(pe.CreatedAt) > ttl {
			continue
		}
		c.lru.Add(pe.Key, &entry[V]{Value: pe.Value, CreatedAt: pe.CreatedAt})
		restored++
	}
	return restored, nil
}
