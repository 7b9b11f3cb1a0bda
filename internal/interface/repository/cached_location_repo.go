package repository

import (
	"context"
	"sync"

	"flightbot-service/internal/domain/entity"
	"flightbot-service/internal/domain/repository"
	"flightbot-service/pkg/logger"
	"flightbot-service/pkg/utils"

	"golang.org/x/sync/singleflight"
)

// CachedLocationRepository memoizes successful lookups for the life of the process.
// Misses and failures are not cached.
type CachedLocationRepository struct {
	next   repository.LocationRepository
	mu     sync.RWMutex
	cache  map[string]entity.Location
	group  singleflight.Group
	logger logger.Logger
}

// NewCachedLocationRepository wraps next with an in-memory cache
func NewCachedLocationRepository(next repository.LocationRepository, logger logger.Logger) *CachedLocationRepository {
	return &CachedLocationRepository{
		next:   next,
		cache:  make(map[string]entity.Location),
		logger: logger,
	}
}

// Resolve answers from the cache, collapsing concurrent misses for the same key into one lookup
func (c *CachedLocationRepository) Resolve(ctx context.Context, query string) (*entity.Location, error) {
	key := utils.NormalizeKey(query)
	if key == "" {
		return nil, nil
	}

	if location, ok := c.lookup(key); ok {
		return location, nil
	}

	// The shared lookup outlives any single caller, so one cancelled turn
	// does not fail the others waiting on the same key.
	lookupCtx := context.WithoutCancel(ctx)
	v, err, shared := c.group.Do(key, func() (interface{}, error) {
		location, err := c.next.Resolve(lookupCtx, query)
		if err != nil || location == nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[key] = *location
		c.mu.Unlock()

		return *location, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("Shared in-flight location lookup", "key", key)
	}

	location, ok := v.(entity.Location)
	if !ok {
		return nil, nil
	}
	return &location, nil
}

// Len returns the number of cached locations
func (c *CachedLocationRepository) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func (c *CachedLocationRepository) lookup(key string) (*entity.Location, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	location, ok := c.cache[key]
	if !ok {
		return nil, false
	}
	return &location, true
}
