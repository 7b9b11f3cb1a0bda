package entity

// SendMetaMessage is the WhatsApp Cloud API text message body
type SendMetaMessage struct {
	MessagingProduct string      `json:"messaging_product" validate:"required,eq=whatsapp"`
	RecipientType    string      `json:"recipient_type,omitempty"`
	To               string      `json:"to" validate:"required"`
	Type             string      `json:"type" validate:"required,oneof=text"`
	Text             MetaMessage `json:"text"`
}

type MetaMessage struct {
	Body       string `json:"body" validate:"required,max=4096"`
	PreviewURL bool   `json:"preview_url,omitempty"`
}

type SendMetaMessageResponse struct {
	MessagingProduct string `json:"messaging_product"`
	Messages         []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error *MetaError `json:"error,omitempty"`
}

type MetaError struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      int    `json:"code"`
	FBTraceID string `json:"fbtrace_id"`
}

// MetaWebhookPayload is the body Meta posts to the webhook
type MetaWebhookPayload struct {
	Object string      `json:"object"`
	Entry  []MetaEntry `json:"entry"`
}

type MetaEntry struct {
	ID      string       `json:"id"`
	Changes []MetaChange `json:"changes"`
}

type MetaChange struct {
	Field string          `json:"field"`
	Value MetaChangeValue `json:"value"`
}

type MetaChangeValue struct {
	MessagingProduct string            `json:"messaging_product"`
	Messages         []MetaInboundText `json:"messages"`
}

type MetaInboundText struct {
	From      string `json:"from"`
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Text      *struct {
		Body string `json:"body"`
	} `json:"text,omitempty"`
}
