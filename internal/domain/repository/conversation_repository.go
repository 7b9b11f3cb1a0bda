package repository

import (
	"context"

	"flightbot-service/internal/domain/entity"
)

// ConversationRepository stores exactly one conversation per user identity.
// Callers that read, transition and write a conversation must hold Lock for that user
// for the whole turn.
type ConversationRepository interface {
	// Get returns a copy of the stored conversation, or nil when there is none
	Get(ctx context.Context, userID string) (*entity.Conversation, error)
	Set(ctx context.Context, userID string, conversation *entity.Conversation) error
	Clear(ctx context.Context, userID string) error
	Lock(userID string) (unlock func())
}
