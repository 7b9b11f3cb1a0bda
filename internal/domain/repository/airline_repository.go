package repository

import (
	"context"

	"flightbot-service/internal/domain/entity"
)

// AirlineRepository defines the interface for airline operations
type AirlineRepository interface {
	// GetByCode returns nil when the code is unknown
	GetByCode(ctx context.Context, code string) (*entity.Airline, error)
	// NamesByCodes maps each known code to its airline name
	NamesByCodes(ctx context.Context, codes []string) (map[string]string, error)
}
