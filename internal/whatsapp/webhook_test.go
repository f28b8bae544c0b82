package whatsapp

import (
	"encoding/json"
	"testing"
)

const inboundEvent = `{
  "entry": [{
    "changes": [{
      "value": {
        "messages": [{
          "from": "2348012345678",
          "text": {"body": "What is the price of Widget?"}
        }]
      }
    }]
  }]
}`

func TestFirstMessageExtractsSenderAndText(t *testing.T) {
	t.Parallel()

	var p WebhookPayload
	if err := json.Unmarshal([]byte(inboundEvent), &p); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}

	msg := p.FirstMessage()
	if msg == nil {
		t.Fatal("expected a message")
	}
	if msg.From != "2348012345678" {
		t.Errorf("unexpected sender: %q", msg.From)
	}
	if msg.Body() != "What is the price of Widget?" {
		t.Errorf("unexpected body: %q", msg.Body())
	}
}

func TestFirstMessageNilForStatusEvents(t *testing.T) {
	t.Parallel()

	cases := []string{
		`{}`,
		`{"entry":[]}`,
		`{"entry":[{"changes":[]}]}`,
		`{"entry":[{"changes":[{"value":{}}]}]}`,
		`{"entry":[{"changes":[{"value":{"statuses":[{"status":"delivered"}]}}]}]}`,
	}
	for _, raw := range cases {
		var p WebhookPayload
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			t.Fatalf("unmarshal %q: %v", raw, err)
		}
		if p.FirstMessage() != nil {
			t.Errorf("expected nil message for %q", raw)
		}
	}
}

func TestBodyDefaultsToGreeting(t *testing.T) {
	t.Parallel()

	m := InboundMessage{From: "234"}
	if m.Body() != "hello" {
		t.Errorf("expected placeholder greeting, got %q", m.Body())
	}

	m.Text = &MessageText{Body: ""}
	if m.Body() != "hello" {
		t.Errorf("expected placeholder greeting for empty body, got %q", m.Body())
	}
}
