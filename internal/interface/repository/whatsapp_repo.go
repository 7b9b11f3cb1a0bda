package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"flightbot-service/internal/domain/entity"
	"flightbot-service/internal/domain/repository"
	"flightbot-service/pkg/logger"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-playground/validator/v10"
)

// GraphWhatsappRepository sends text messages through the WhatsApp Cloud API
type GraphWhatsappRepository struct {
	logger        logger.Logger
	client        *http.Client
	validate      *validator.Validate
	baseURL       string
	phoneNumberID string
	bearerToken   string
	maxRetries    uint64
	newBackOff    func() backoff.BackOff
}

// NewGraphWhatsappRepository creates a new WhatsApp repository
func NewGraphWhatsappRepository(baseURL, phoneNumberID, bearerToken string, timeout time.Duration, logger logger.Logger) repository.WhatsappRepository {
	return &GraphWhatsappRepository{
		logger:        logger,
		client:        &http.Client{Timeout: timeout},
		validate:      validator.New(),
		baseURL:       strings.TrimRight(baseURL, "/"),
		phoneNumberID: phoneNumberID,
		bearerToken:   bearerToken,
		maxRetries:    2,
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
}

// SendText delivers body to the given phone number. 5xx and transport errors are retried.
func (r *GraphWhatsappRepository) SendText(ctx context.Context, to, body string) error {
	msg := entity.SendMetaMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text: entity.MetaMessage{
			Body: body,
		},
	}

	if err := r.validate.Struct(msg); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}

	jsonData, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", r.baseURL, r.phoneNumberID)

	var messageID string
	operation := func() error {
		id, err := r.post(ctx, url, jsonData)
		if err != nil {
			return err
		}
		messageID = id
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(r.newBackOff(), r.maxRetries), ctx)
	notify := func(err error, wait time.Duration) {
		r.logger.Warn("Retrying WhatsApp send", "to", to, "wait", wait, "error", err)
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return err
	}

	r.logger.Debug("WhatsApp message sent", "to", to, "messageId", messageID)

	return nil
}

func (r *GraphWhatsappRepository) post(ctx context.Context, url string, jsonData []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Authorization", "Bearer "+r.bearerToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var response entity.SendMetaMessageResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	_ = json.Unmarshal(raw, &response)

	if resp.StatusCode >= 300 {
		reason := strings.TrimSpace(string(raw))
		if response.Error != nil {
			reason = response.Error.Message
		}
		err := fmt.Errorf("WhatsApp API returned status %d: %s", resp.StatusCode, reason)
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return "", err
		}
		return "", backoff.Permanent(err)
	}

	if len(response.Messages) == 0 {
		return "", nil
	}
	return response.Messages[0].ID, nil
}
