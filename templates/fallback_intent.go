package templates

import (
	"context"

	"flightbot-service/internal/usecase"
)

// FallbackIntentHandler catches everything nobody else wanted. Register it last.
type FallbackIntentHandler struct{}

func NewFallbackIntentHandler() *FallbackIntentHandler {
	return &FallbackIntentHandler{}
}

func (h *FallbackIntentHandler) Name() string {
	return "fallback"
}

func (h *FallbackIntentHandler) CanHandle(turn *usecase.Turn) bool {
	return true
}

func (h *FallbackIntentHandler) Handle(ctx context.Context, turn *usecase.Turn) usecase.Outcome {
	return usecase.Keep(usecase.MsgFallback)
}
