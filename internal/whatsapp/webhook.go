package whatsapp

// WebhookPayload mirrors the Cloud API inbound event envelope. Only the
// fields the handler reads are declared.
type WebhookPayload struct {
	Entry []Entry `json:"entry"`
}

// Entry is one webhook entry; events arrive with a single entry in practice.
type Entry struct {
	Changes []Change `json:"changes"`
}

// Change wraps the value object carrying inbound messages.
type Change struct {
	Value Value `json:"value"`
}

// Value holds the messages array for a message event. Status-update events
// arrive with no messages.
type Value struct {
	Messages []InboundMessage `json:"messages"`
}

// InboundMessage is a single user message from the webhook.
type InboundMessage struct {
	From string       `json:"from"`
	Text *MessageText `json:"text"`
}

// MessageText is the text body of an inbound message.
type MessageText struct {
	Body string `json:"body"`
}

// FirstMessage extracts the first message of the payload, or nil when the
// event carries none (delivery receipts, status updates).
func (p *WebhookPayload) FirstMessage() *InboundMessage {
	if len(p.Entry) == 0 || len(p.Entry[0].Changes) == 0 {
		return nil
	}
	msgs := p.Entry[0].Changes[0].Value.Messages
	if len(msgs) == 0 {
		return nil
	}
	return &msgs[0]
}

// Body returns the message text, defaulting to a placeholder greeting when
// the message has no text part.
func (m *InboundMessage) Body() string {
	if m.Text == nil || m.Text.Body == "" {
		return "hello"
	}
	return m.Text.Body
}
