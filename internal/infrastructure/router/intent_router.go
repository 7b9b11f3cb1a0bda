package router

import (
	"flightbot-service/internal/usecase"
	"flightbot-service/pkg/logger"
)

// IntentRouter routes turns to handlers in registration order
type IntentRouter struct {
	handlers []usecase.IntentHandler
	logger   logger.Logger
}

// NewIntentRouter creates a new intent router
func NewIntentRouter(logger logger.Logger) *IntentRouter {
	return &IntentRouter{
		handlers: make([]usecase.IntentHandler, 0),
		logger:   logger,
	}
}

// Register appends a handler. Earlier handlers take precedence.
func (r *IntentRouter) Register(handler usecase.IntentHandler) {
	r.handlers = append(r.handlers, handler)
	r.logger.Info("Registered handler", "handler", handler.Name(), "position", len(r.handlers))
}

// GetHandler returns the first handler accepting the turn
func (r *IntentRouter) GetHandler(turn *usecase.Turn) usecase.IntentHandler {
	for _, handler := range r.handlers {
		if handler.CanHandle(turn) {
			return handler
		}
	}
	return nil
}
