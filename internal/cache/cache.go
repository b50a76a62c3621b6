package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a namespaced cache key from an identifier such as a URL
// or a search query. The version segment invalidates old entries when
// the cached format changes.
func Key(identifier string) string {
	hash := sha256.Sum256([]byte(identifier))
	return "claimlens:v1:" + hex.EncodeToString(hash[:])
}
