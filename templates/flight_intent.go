package templates

import (
	"context"

	"flightbot-service/internal/domain/entity"
	"flightbot-service/internal/usecase"
)

// FlightIntentHandler adapts the flight flow to the IntentHandler interface
type FlightIntentHandler struct {
	flow interface {
		Handle(ctx context.Context, turn *usecase.Turn) usecase.Outcome
	}
}

// NewFlightIntentHandler creates a new flight intent handler
func NewFlightIntentHandler(flow interface {
	Handle(ctx context.Context, turn *usecase.Turn) usecase.Outcome
}) *FlightIntentHandler {
	return &FlightIntentHandler{
		flow: flow,
	}
}

func (h *FlightIntentHandler) Name() string {
	return "flight"
}

// CanHandle takes every turn of an ongoing flight search and any text mentioning flights
func (h *FlightIntentHandler) CanHandle(turn *usecase.Turn) bool {
	if turn.Conversation != nil && turn.Conversation.Intent == entity.IntentFlightSearch {
		return true
	}
	return usecase.StartsQuery(turn.Text)
}

// Handle delegates to the flow
func (h *FlightIntentHandler) Handle(ctx context.Context, turn *usecase.Turn) usecase.Outcome {
	return h.flow.Handle(ctx, turn)
}
