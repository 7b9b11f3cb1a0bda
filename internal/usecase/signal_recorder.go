package usecase

import (
	"context"
	"time"

	"flightbot-service/internal/domain/entity"
	"flightbot-service/internal/domain/repository"
	"flightbot-service/pkg/logger"
)

// SignalRecorder logs abuse signals and, when a repository is configured, stores them.
// Failures are logged and never surfaced.
type SignalRecorder struct {
	signalRepo repository.SignalRepository
	timeout    time.Duration
	logger     logger.Logger
}

// NewSignalRecorder creates a recorder. signalRepo may be nil.
func NewSignalRecorder(signalRepo repository.SignalRepository, logger logger.Logger) *SignalRecorder {
	return &SignalRecorder{
		signalRepo: signalRepo,
		timeout:    2 * time.Second,
		logger:     logger,
	}
}

// Record emits one signal
func (r *SignalRecorder) Record(ctx context.Context, signalType, user, requestID string, payload map[string]interface{}) {
	if r == nil {
		return
	}

	r.logger.Info("Abuse signal",
		"signal", signalType,
		"user", user,
		"requestId", requestID,
		"payload", payload)

	if r.signalRepo == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	signal := &entity.Signal{
		Type:      signalType,
		User:      user,
		RequestID: requestID,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
	if err := r.signalRepo.Save(ctx, signal); err != nil {
		r.logger.Warn("Failed to store signal", "signal", signalType, "error", err)
	}
}
