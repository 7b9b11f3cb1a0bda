package whatsapp

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"flightbot-service/internal/domain/entity"
	"flightbot-service/pkg/logger"
	"flightbot-service/pkg/metrics"
)

const (
	maxWebhookBody  = 1 << 20
	signatureHeader = "X-Hub-Signature-256"
	signaturePrefix = "sha256="
)

// MessageProcessor handles one inbound user message
type MessageProcessor interface {
	ProcessMessage(ctx context.Context, msg entity.InboundMessage) error
}

// WebhookHandler serves the WhatsApp Cloud API webhook
type WebhookHandler struct {
	processor   MessageProcessor
	rateLimiter *RateLimiter
	validate    *validator.Validate
	verifyToken string
	appSecret   string
	metrics     *metrics.Metrics
	logger      logger.Logger
}

// NewWebhookHandler creates a webhook handler. An empty appSecret disables signature checks.
func NewWebhookHandler(
	processor MessageProcessor,
	rateLimiter *RateLimiter,
	verifyToken string,
	appSecret string,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		processor:   processor,
		rateLimiter: rateLimiter,
		validate:    validator.New(),
		verifyToken: verifyToken,
		appSecret:   appSecret,
		metrics:     metrics,
		logger:      logger,
	}
}

// Register mounts the webhook routes
func (h *WebhookHandler) Register(r chi.Router) {
	r.Get("/webhook", h.Verify)
	r.Post("/webhook", h.Receive)
}

// Verify answers Meta's subscription handshake
func (h *WebhookHandler) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")

	if mode != "subscribe" || token == "" || !hmac.Equal([]byte(token), []byte(h.verifyToken)) {
		h.logger.Warn("Webhook verification rejected", "mode", mode)
		w.WriteHeader(http.StatusForbidden)
		return
	}

	h.logger.Info("Webhook verified")
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(q.Get("hub.challenge")))
}

// Receive processes every text message in the payload before acknowledging it.
// Meta redelivers anything that is not acknowledged with 200, so processing
// failures are logged and still acknowledged.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		h.logger.Warn("Failed to read webhook body", "error", err)
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		return
	}

	if h.appSecret != "" && !h.validSignature(body, r.Header.Get(signatureHeader)) {
		h.logger.Warn("Webhook signature mismatch")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var payload entity.MetaWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.logger.Warn("Failed to decode webhook payload", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	// Keep processing if Meta hangs up mid-request
	ctx := context.WithoutCancel(r.Context())

	for _, msg := range TextMessages(&payload) {
		if err := h.validate.Struct(msg); err != nil {
			h.logger.Warn("Dropping invalid inbound message", "messageId", msg.MessageID, "error", err)
			continue
		}

		if h.rateLimiter != nil {
			h.rateLimiter.Observe(ctx, msg.From)
		}

		if err := h.processor.ProcessMessage(ctx, msg); err != nil {
			h.metrics.ErrorsCount.WithLabelValues("process_message").Inc()
			h.logger.Error("Failed to process message",
				"messageId", msg.MessageID,
				"from", msg.From,
				"error", err)
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("EVENT_RECEIVED"))
}

func (h *WebhookHandler) validSignature(body []byte, header string) bool {
	if !strings.HasPrefix(header, signaturePrefix) {
		return false
	}
	got, err := hex.DecodeString(strings.TrimPrefix(header, signaturePrefix))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(h.appSecret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

// TextMessages extracts the text messages of a webhook payload in delivery order.
// Statuses, media and other message types are skipped.
func TextMessages(payload *entity.MetaWebhookPayload) []entity.InboundMessage {
	var messages []entity.InboundMessage
	for _, e := range payload.Entry {
		for _, change := range e.Changes {
			for _, m := range change.Value.Messages {
				if m.Type != "text" || m.Text == nil {
					continue
				}
				messages = append(messages, entity.NewInboundMessage(m.ID, m.From, m.Text.Body))
			}
		}
	}
	return messages
}
