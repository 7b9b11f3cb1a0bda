package templates

import (
	"context"

	"flightbot-service/internal/domain/entity"
	"flightbot-service/internal/usecase"
	"flightbot-service/pkg/logger"
)

// ResetIntentHandler clears the conversation on "cancel" and "reset"
type ResetIntentHandler struct {
	signals *usecase.SignalRecorder
	logger  logger.Logger
}

// NewResetIntentHandler creates a new reset handler
func NewResetIntentHandler(signals *usecase.SignalRecorder, logger logger.Logger) *ResetIntentHandler {
	return &ResetIntentHandler{
		signals: signals,
		logger:  logger,
	}
}

func (h *ResetIntentHandler) Name() string {
	return "reset"
}

// CanHandle accepts cancel and reset from any state
func (h *ResetIntentHandler) CanHandle(turn *usecase.Turn) bool {
	return turn.Command == usecase.CommandCancel || turn.Command == usecase.CommandReset
}

// Handle clears whatever the user had going
func (h *ResetIntentHandler) Handle(ctx context.Context, turn *usecase.Turn) usecase.Outcome {
	if turn.Command == usecase.CommandReset {
		return usecase.Clear(usecase.MsgReset)
	}

	state := "NONE"
	if turn.Conversation != nil {
		state = string(turn.Conversation.State)
	}
	h.signals.Record(ctx, entity.SignalCancelled, turn.From, turn.RequestID, map[string]interface{}{
		"state": state,
	})

	return usecase.Clear(usecase.MsgCancelled)
}
