package usecase

import (
	"context"

	"flightbot-service/internal/domain/entity"
	"flightbot-service/pkg/logger"
)

// Turn is one inbound message together with the state it arrived in
type Turn struct {
	RequestID    string
	From         string
	RawText      string
	Text         string // lowercased with whitespace collapsed
	Command      Command
	Conversation *entity.Conversation // nil when the user has no conversation
	Logger       logger.Logger
}

// StoreAction is what happens to the stored conversation after a turn
type StoreAction int

const (
	ActionKeep StoreAction = iota
	ActionSet
	ActionClear
)

func (a StoreAction) String() string {
	switch a {
	case ActionSet:
		return "set"
	case ActionClear:
		return "clear"
	default:
		return "keep"
	}
}

// Outcome is the result of handling a turn: replies plus exactly one store action
type Outcome struct {
	Messages []string
	Action   StoreAction
	Next     *entity.Conversation
}

// Keep leaves the stored conversation untouched
func Keep(messages ...string) Outcome {
	return Outcome{Messages: messages, Action: ActionKeep}
}

// Set replaces the stored conversation with next
func Set(next *entity.Conversation, messages ...string) Outcome {
	return Outcome{Messages: messages, Action: ActionSet, Next: next}
}

// Clear removes the stored conversation
func Clear(messages ...string) Outcome {
	return Outcome{Messages: messages, Action: ActionClear}
}

// IntentHandler defines the interface for intent handlers
type IntentHandler interface {
	// Name is used for logs and metrics
	Name() string

	// CanHandle determines if this handler takes the turn
	CanHandle(turn *Turn) bool

	// Handle never fails: every path yields an Outcome
	Handle(ctx context.Context, turn *Turn) Outcome
}

// IntentRouter routes turns to the appropriate handler
type IntentRouter interface {
	// Register appends a handler. Handlers are consulted in registration order.
	Register(handler IntentHandler)

	// GetHandler returns the first handler that accepts the turn
	GetHandler(turn *Turn) IntentHandler
}
