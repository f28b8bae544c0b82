package domain

import "time"

// Message is a single inbound or outbound chat record. Immutable once
// appended to the message log.
type Message struct {
	From      string `json:"from"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// NewMessage creates a message record stamped with the current time in
// ISO-8601 (RFC 3339) format.
func NewMessage(from, text string) Message {
	return Message{
		From:      from,
		Text:      text,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
