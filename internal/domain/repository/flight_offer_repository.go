package repository

import (
	"context"

	"flightbot-service/internal/domain/entity"
)

// FlightOfferRepository searches a flight offers provider
type FlightOfferRepository interface {
	Search(ctx context.Context, params entity.FlightSearchParams) (*entity.FlightSearchResult, error)
}
