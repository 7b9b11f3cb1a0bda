package whatsapp

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"flightbot-service/internal/domain/entity"
	"flightbot-service/internal/usecase"
	"flightbot-service/pkg/logger"
	"flightbot-service/pkg/metrics"
)

// RateLimiter watches per-user message rates. It never blocks a message,
// it only reports users that go over the limit.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*userLimiter
	limit    rate.Limit
	burst    int
	idle     time.Duration
	signals  *usecase.SignalRecorder
	metrics  *metrics.Metrics
	logger   logger.Logger
}

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perMinute messages per user with a burst of the same size
func NewRateLimiter(perMinute int, signals *usecase.SignalRecorder, metrics *metrics.Metrics, logger logger.Logger) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*userLimiter),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		idle:     10 * time.Minute,
		signals:  signals,
		metrics:  metrics,
		logger:   logger,
	}
}

// Observe counts one message from user and reports whether it was within the limit
func (r *RateLimiter) Observe(ctx context.Context, user string) bool {
	now := time.Now()

	r.mu.Lock()
	entry, ok := r.limiters[user]
	if !ok {
		entry = &userLimiter{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.limiters[user] = entry
	}
	entry.lastSeen = now
	allowed := entry.limiter.AllowN(now, 1)
	r.mu.Unlock()

	if allowed {
		return true
	}

	r.metrics.RateLimited.Inc()
	r.logger.Warn("User over message rate", "user", user, "burst", r.burst)
	r.signals.Record(ctx, entity.SignalRateLimited, user, "", map[string]interface{}{
		"burst": r.burst,
	})
	return false
}

// Prune forgets users idle for longer than the refill window
func (r *RateLimiter) Prune() int {
	cutoff := time.Now().Add(-r.idle)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for user, entry := range r.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(r.limiters, user)
			removed++
		}
	}
	return removed
}

// StartPruner runs Prune every interval until ctx is done
func (r *RateLimiter) StartPruner(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := r.Prune(); removed > 0 {
				r.logger.Debug("Pruned idle rate limiters", "removed", removed)
			}
		}
	}
}
