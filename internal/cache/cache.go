package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Retention classes for verification results. A zero TTL means the entry
// never expires: confirmed existence is a permanent fact, while confirmed
// absence is kept only 24 hours to tolerate source indexing lag.
const (
	Permanent    time.Duration = 0
	Transient24h               = 24 * time.Hour
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key builds a namespaced cache key: one namespace per source adapter,
// entries keyed by the normalized citation string.
func Key(source, normalized string) string {
	hash := sha256.Sum256([]byte(normalized))
	return source + "/" + hex.EncodeToString(hash[:])
}
