package entity

import (
	"strings"
	"time"
)

// InboundMessage is one user message handed to the conversation core
type InboundMessage struct {
	MessageID  string    `json:"messageId"`
	From       string    `json:"from" validate:"required,max=64"`
	RawText    string    `json:"rawText" validate:"max=4096"`
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// NewInboundMessage fills Text with the lowercased raw text
func NewInboundMessage(messageID, from, rawText string) InboundMessage {
	return InboundMessage{
		MessageID:  messageID,
		From:       from,
		RawText:    rawText,
		Text:       strings.ToLower(rawText),
		ReceivedAt: time.Now(),
	}
}
