package templates

import (
	"context"

	"flightbot-service/internal/usecase"
)

// GreetingIntentHandler answers hi/hello/hey
type GreetingIntentHandler struct{}

func NewGreetingIntentHandler() *GreetingIntentHandler {
	return &GreetingIntentHandler{}
}

func (h *GreetingIntentHandler) Name() string {
	return "greeting"
}

func (h *GreetingIntentHandler) CanHandle(turn *usecase.Turn) bool {
	return turn.Command == usecase.CommandGreeting
}

// Handle introduces the bot. An ongoing search is left as it is.
func (h *GreetingIntentHandler) Handle(ctx context.Context, turn *usecase.Turn) usecase.Outcome {
	return usecase.Keep(usecase.MsgGreeting)
}
