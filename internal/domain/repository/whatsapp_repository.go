package repository

import (
	"context"
)

// WhatsappRepository defines the interface for outbound WhatsApp messages
type WhatsappRepository interface {
	SendText(ctx context.Context, to, body string) error
}
