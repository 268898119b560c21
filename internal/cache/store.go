package cache

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ndlegal/citecheck/internal/model"
)

// Store is the typed verification-result cache shared by the orchestrator
// and the source adapters. It is the only cross-task synchronization
// point: concurrent callers resolving the same (source, key) pair observe
// at most one in-flight producer; the rest wait and share its result.
type Store struct {
	cache  Cache
	flight singleflight.Group
}

// NewStore creates a Store over the given cache backend
func NewStore(c Cache) *Store {
	return &Store{cache: c}
}

// Get returns the cached result for (source, key), if present and not
// expired.
func (s *Store) Get(source, key string) (*model.VerificationResult, bool) {
	data, ok := s.cache.Get(Key(source, key))
	if !ok {
		return nil, false
	}

	var res model.VerificationResult
	if err := json.Unmarshal(data, &res); err != nil {
		// Corrupt entry: drop it and treat as a miss.
		_ = s.cache.Delete(Key(source, key))
		return nil, false
	}
	return &res, true
}

// GetOrResolve returns the cached result for (source, key) or invokes
// produce exactly once across concurrent callers. Retention follows the
// result status: confirmed existence and non-verifiability are permanent
// facts, confirmed absence expires after 24 hours, and source errors are
// never cached so the next run retries them.
func (s *Store) GetOrResolve(ctx context.Context, source, key string, produce func(context.Context) model.VerificationResult) model.VerificationResult {
	if cached, ok := s.Get(source, key); ok {
		return *cached
	}

	v, _, _ := s.flight.Do(source+"\x00"+key, func() (interface{}, error) {
		// Re-check under the flight: another caller may have filled
		// the cache between our miss and acquiring the flight.
		if cached, ok := s.Get(source, key); ok {
			return *cached, nil
		}

		res := produce(ctx)
		if ttl, cacheable := retention(res.Status); cacheable {
			if data, err := json.Marshal(res); err == nil {
				_ = s.cache.Set(Key(source, key), data, ttl)
			}
		}
		return res, nil
	})

	return v.(model.VerificationResult)
}

// retention maps a result status to its cache retention class
func retention(status model.Status) (time.Duration, bool) {
	switch status {
	case model.StatusVerified, model.StatusNotVerifiable:
		return Permanent, true
	case model.StatusNotFound:
		return Transient24h, true
	default:
		// SourceError denotes a transient fault, not a data fact.
		return 0, false
	}
}
