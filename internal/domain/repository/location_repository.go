package repository

import (
	"context"

	"flightbot-service/internal/domain/entity"
)

// LocationRepository maps free-text place names to locations.
// Resolve returns (nil, nil) when nothing matches.
type LocationRepository interface {
	Resolve(ctx context.Context, query string) (*entity.Location, error)
}
