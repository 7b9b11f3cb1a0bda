package usecase

import (
	"context"
	"fmt"

	"flightbot-service/internal/domain/entity"
	"flightbot-service/internal/domain/repository"
	"flightbot-service/pkg/logger"
	"flightbot-service/pkg/metrics"

	"github.com/google/uuid"
)

// ConversationProcessor runs one inbound message through the intent handlers
type ConversationProcessor struct {
	conversationRepo repository.ConversationRepository
	whatsappRepo     repository.WhatsappRepository
	router           IntentRouter
	metrics          *metrics.Metrics
	logger           logger.Logger
}

// NewConversationProcessor creates a new conversation processor
func NewConversationProcessor(
	conversationRepo repository.ConversationRepository,
	whatsappRepo repository.WhatsappRepository,
	router IntentRouter,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *ConversationProcessor {
	return &ConversationProcessor{
		conversationRepo: conversationRepo,
		whatsappRepo:     whatsappRepo,
		router:           router,
		metrics:          metrics,
		logger:           logger,
	}
}

// ProcessMessage handles one turn. The user's conversation is locked from read to write,
// replies are sent after the new state is stored. When a reply cannot be delivered the
// previous conversation is restored, so an unseen results page does not move the cursor.
func (p *ConversationProcessor) ProcessMessage(ctx context.Context, msg entity.InboundMessage) error {
	requestID := uuid.NewString()
	log := p.logger.With("requestId", requestID, "user", msg.From)

	unlock := p.conversationRepo.Lock(msg.From)
	defer unlock()

	conversation, err := p.conversationRepo.Get(ctx, msg.From)
	if err != nil {
		p.metrics.ErrorsCount.WithLabelValues("conversation_get").Inc()
		return fmt.Errorf("failed to load conversation: %w", err)
	}

	turn := &Turn{
		RequestID:    requestID,
		From:         msg.From,
		RawText:      msg.RawText,
		Text:         NormalizeText(msg.Text),
		Command:      ParseCommand(msg.Text),
		Conversation: conversation,
		Logger:       log,
	}

	handler := p.router.GetHandler(turn)
	if handler == nil {
		log.Warn("No handler found for message", "text", turn.Text)
		return nil
	}

	p.metrics.MessagesReceived.WithLabelValues(handler.Name()).Inc()

	fromState := stateOf(conversation)
	log.Info("Processing message with handler",
		"handler", handler.Name(),
		"state", fromState,
		"command", turn.Command)

	previous := conversation.Clone()
	outcome := handler.Handle(ctx, turn)

	if err := p.apply(ctx, msg.From, outcome); err != nil {
		p.metrics.ErrorsCount.WithLabelValues("conversation_store").Inc()
		log.Error("Failed to store conversation", "action", outcome.Action, "error", err)
		_ = p.send(ctx, msg.From, []string{MsgSomethingWrong})
		return err
	}

	toState := fromState
	switch outcome.Action {
	case ActionSet:
		toState = outcome.Next.State
	case ActionClear:
		toState = "NONE"
	}
	log.Info("Message processed",
		"handler", handler.Name(),
		"action", outcome.Action,
		"from", fromState,
		"to", toState,
		"replies", len(outcome.Messages))

	if err := p.send(ctx, msg.From, outcome.Messages); err != nil {
		if outcome.Action != ActionKeep {
			p.restore(ctx, msg.From, previous, log)
		}
		return err
	}
	return nil
}

func (p *ConversationProcessor) restore(ctx context.Context, userID string, previous *entity.Conversation, log logger.Logger) {
	var err error
	if previous == nil {
		err = p.conversationRepo.Clear(ctx, userID)
	} else {
		err = p.conversationRepo.Set(ctx, userID, previous)
	}
	if err != nil {
		p.metrics.ErrorsCount.WithLabelValues("conversation_store").Inc()
		log.Error("Failed to restore conversation after send failure", "error", err)
		return
	}
	log.Warn("Reply not delivered, conversation restored", "state", stateOf(previous))
}

func (p *ConversationProcessor) apply(ctx context.Context, userID string, outcome Outcome) error {
	switch outcome.Action {
	case ActionSet:
		return p.conversationRepo.Set(ctx, userID, outcome.Next)
	case ActionClear:
		return p.conversationRepo.Clear(ctx, userID)
	}
	return nil
}

func (p *ConversationProcessor) send(ctx context.Context, to string, messages []string) error {
	for _, body := range messages {
		if body == "" {
			continue
		}
		if err := p.whatsappRepo.SendText(ctx, to, body); err != nil {
			p.metrics.ErrorsCount.WithLabelValues("send").Inc()
			return fmt.Errorf("failed to send reply: %w", err)
		}
		p.metrics.RepliesSent.Inc()
	}
	return nil
}

func stateOf(c *entity.Conversation) entity.FlowState {
	if c == nil {
		return "NONE"
	}
	return c.State
}
