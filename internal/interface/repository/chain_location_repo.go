package repository

import (
	"context"

	"flightbot-service/internal/domain/entity"
	"flightbot-service/internal/domain/repository"
	"flightbot-service/pkg/logger"
)

// ChainLocationRepository asks each source in order and returns the first match
type ChainLocationRepository struct {
	sources []repository.LocationRepository
	logger  logger.Logger
}

// NewChainLocationRepository creates a chain over the non-nil sources
func NewChainLocationRepository(logger logger.Logger, sources ...repository.LocationRepository) repository.LocationRepository {
	chain := &ChainLocationRepository{logger: logger}
	for _, source := range sources {
		if source != nil {
			chain.sources = append(chain.sources, source)
		}
	}
	return chain
}

// Resolve skips failing sources. The last error is returned only when no source matched.
func (c *ChainLocationRepository) Resolve(ctx context.Context, query string) (*entity.Location, error) {
	var lastErr error
	for _, source := range c.sources {
		location, err := source.Resolve(ctx, query)
		if err != nil {
			c.logger.Warn("Location source failed", "query", query, "error", err)
			lastErr = err
			continue
		}
		if location != nil {
			return location, nil
		}
	}
	return nil, lastErr
}
