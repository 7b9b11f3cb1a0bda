package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"flightbot-service/internal/domain/entity"
	"flightbot-service/pkg/logger"
)

type conversationRecord struct {
	conversation *entity.Conversation
	lastActivity time.Time
}

// MemoryConversationRepository keeps one conversation per user in process memory.
// Everything is lost on restart.
type MemoryConversationRepository struct {
	mu      sync.RWMutex
	records map[string]conversationRecord
	locks   *keyedMutex
	ttl     time.Duration
	now     func() time.Time
	logger  logger.Logger
}

// NewMemoryConversationRepository creates a new in-memory store. A ttl of zero disables expiry.
func NewMemoryConversationRepository(ttl time.Duration, logger logger.Logger) *MemoryConversationRepository {
	return &MemoryConversationRepository{
		records: make(map[string]conversationRecord),
		locks:   newKeyedMutex(),
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
	}
}

// Get returns a copy of the user's conversation, or nil
func (r *MemoryConversationRepository) Get(ctx context.Context, userID string) (*entity.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[userID]
	if !ok {
		return nil, nil
	}
	return record.conversation.Clone(), nil
}

// Set replaces the user's conversation after validating it
func (r *MemoryConversationRepository) Set(ctx context.Context, userID string, conversation *entity.Conversation) error {
	if err := conversation.Validate(); err != nil {
		return fmt.Errorf("refusing to store conversation for %s: %w", userID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[userID] = conversationRecord{
		conversation: conversation.Clone(),
		lastActivity: r.now(),
	}
	return nil
}

// Clear removes the user's conversation
func (r *MemoryConversationRepository) Clear(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, userID)
	return nil
}

// Lock serializes turns of the same user
func (r *MemoryConversationRepository) Lock(userID string) func() {
	return r.locks.Lock(userID)
}

// Len returns the number of stored conversations
func (r *MemoryConversationRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// ExpireIdle removes conversations untouched for longer than the ttl
func (r *MemoryConversationRepository) ExpireIdle() int {
	if r.ttl <= 0 {
		return 0
	}

	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	expired := 0
	for userID, record := range r.records {
		if record.lastActivity.Before(cutoff) {
			delete(r.records, userID)
			expired++
		}
	}
	return expired
}

// StartJanitor expires idle conversations every interval until ctx is done
func (r *MemoryConversationRepository) StartJanitor(ctx context.Context, interval time.Duration) {
	if r.ttl <= 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Conversation janitor stopped")
			return
		case <-ticker.C:
			if expired := r.ExpireIdle(); expired > 0 {
				r.logger.Info("Expired idle conversations", "count", expired, "remaining", r.Len())
			}
		}
	}
}
