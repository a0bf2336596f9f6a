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

// Key generates a cache key from a claim's text. Fact-check verdicts are
// keyed by text, not claim id, so the same statement made in two sessions
// (or by two speakers) hits the same entry.
func Key(claimText string) string {
	hash := sha256.Sum256([]byte(claimText))
	return "arguegraph:v1:" + hex.EncodeToString(hash[:])
}
