package store

import (
	"context"

	"github.com/wonny/trendscreen/internal/contracts"
	"github.com/wonny/trendscreen/pkg/logger"
	"github.com/wonny/trendscreen/pkg/redis"
)

// CachedStore keeps the latest result in Redis in front of another store.
// Get always goes to the wrapped store.
type CachedStore struct {
	next   contracts.ResultStore
	cache  *redis.Cache
	logger *logger.Logger
}

// NewCachedStore wraps next with a latest-result cache
func NewCachedStore(next contracts.ResultStore, cache *redis.Cache, log *logger.Logger) *CachedStore {
	return &CachedStore{
		next:   next,
		cache:  cache,
		logger: log,
	}
}

// Save persists r and replaces the cached latest result.
func (s *CachedStore) Save(ctx context.Context, r *contracts.ScreeningResult) error {
	if err := s.next.Save(ctx, r); err != nil {
		return err
	}
	if err := s.cache.Set(ctx, redis.LatestResultKey(), r, redis.TTLDaily); err != nil {
		s.logger.WithError(err).Warn("Latest result cache write failed")
	}
	return nil
}

// Latest serves the cached result when present.
func (s *CachedStore) Latest(ctx context.Context) (*contracts.ScreeningResult, error) {
	var cached contracts.ScreeningResult
	hit, err := s.cache.Get(ctx, redis.LatestResultKey(), &cached)
	if err != nil {
		s.logger.WithError(err).Warn("Latest result cache read failed")
	}
	if hit {
		return &cached, nil
	}

	r, err := s.next.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, redis.LatestResultKey(), r, redis.TTLDaily); err != nil {
		s.logger.WithError(err).Warn("Latest result cache write failed")
	}
	return r, nil
}

// Get loads a run from the wrapped store.
func (s *CachedStore) Get(ctx context.Context, runID string) (*contracts.ScreeningResult, error) {
	return s.next.Get(ctx, runID)
}
