package http

import (
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

// responseCache memoizes successful prediction responses by request body.
// Inference is deterministic over an immutable registry, so a cached body
// is exact, not approximate.
type responseCache struct {
	entries *lru.Cache[string, []byte]
}

func newResponseCache(size int) *responseCache {
	if size <= 0 {
		return &responseCache{}
	}
	entries, err := lru.New[string, []byte](size)
	if err != nil {
		return &responseCache{}
	}
	return &responseCache{entries: entries}
}

func (c *responseCache) get(key string) ([]byte, bool) {
	if c.entries == nil {
		return nil, false
	}
	return c.entries.Get(key)
}

func (c *responseCache) put(key string, value []byte) {
	if c.entries == nil {
		return
	}
	c.entries.Add(key, value)
}

func cacheKey(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
