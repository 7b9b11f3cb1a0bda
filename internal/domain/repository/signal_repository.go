package repository

import (
	"context"

	"flightbot-service/internal/domain/entity"
)

// SignalRepository persists abuse signals
type SignalRepository interface {
	Save(ctx context.Context, signal *entity.Signal) error
}
