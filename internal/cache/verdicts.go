package cache

import (
	"encoding/json"
	"time"

	"github.com/debatelab/arguegraph/internal/model"
)

// VerdictCache is a typed fact-check cache over any Cache backend. Entries
// are stored by claim text (see Key), so the cached verdict carries no claim
// id and the caller rebinds it to the claim at hand.
type VerdictCache struct {
	backend Cache
	ttl     time.Duration
}

// NewVerdictCache creates a verdict cache with the given backend and default TTL
func NewVerdictCache(backend Cache, ttl time.Duration) *VerdictCache {
	return &VerdictCache{backend: backend, ttl: ttl}
}

// NewVerdictCacheFromConfig builds the cache the configuration asks for:
// nil when caching is disabled, memory-only when no directory is set, and
// layered memory+disk otherwise so verdicts survive across runs.
func NewVerdictCacheFromConfig(cfg model.CacheConfig) *VerdictCache {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Dir != "" {
		return NewVerdictCache(NewLayeredCache(cfg.TTL, cfg.Dir, cfg.TTL), cfg.TTL)
	}
	return NewVerdictCache(NewMemoryCache(cfg.TTL, cfg.TTL), cfg.TTL)
}

// cachedVerdict is the stored form, without the claim id
type cachedVerdict struct {
	Verdict     model.Verdict `json:"verdict"`
	Confidence  float64       `json:"confidence"`
	Explanation string        `json:"explanation,omitempty"`
	Sources     []string      `json:"sources,omitempty"`
}

// Get returns the cached fact-check for a claim text, rebound to claimID
func (c *VerdictCache) Get(claimID, claimText string) (model.FactCheck, bool) {
	data, found := c.backend.Get(Key(claimText))
	if !found {
		return model.FactCheck{}, false
	}

	var entry cachedVerdict
	if err := json.Unmarshal(data, &entry); err != nil {
		// A corrupt entry is treated as a miss and dropped
		_ = c.backend.Delete(Key(claimText))
		return model.FactCheck{}, false
	}

	return model.FactCheck{
		ClaimID:     claimID,
		Verdict:     entry.Verdict,
		Confidence:  entry.Confidence,
		Explanation: entry.Explanation,
		Sources:     entry.Sources,
	}, true
}

// Set stores a fact-check result under the claim's text
func (c *VerdictCache) Set(claimText string, fc model.FactCheck) error {
	entry := cachedVerdict{
		Verdict:     fc.Verdict,
		Confidence:  fc.Confidence,
		Explanation: fc.Explanation,
		Sources:     fc.Sources,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.backend.Set(Key(claimText), data, c.ttl)
}
