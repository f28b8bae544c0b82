package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/flowmindhq/flowmind/internal/domain"
	"github.com/flowmindhq/flowmind/internal/knowledge"
	"github.com/flowmindhq/flowmind/internal/whatsapp"
)

// VerifyWebhook answers the Meta subscription handshake: echo the challenge
// when the mode and shared verify token match, 403 otherwise.
func (h *Handler) VerifyWebhook(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode == "subscribe" && token != "" && token == h.verifyToken {
		slog.Info("Webhook verified")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(challenge))
		return
	}
	w.WriteHeader(http.StatusForbidden)
}

// ReceiveWebhook handles an inbound message event. Provider webhooks must
// not be made to retry on application-level failures, so everything past
// payload parsing acknowledges with 200 even when the reply pipeline fails.
func (h *Handler) ReceiveWebhook(w http.ResponseWriter, r *http.Request) {
	var payload whatsapp.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		slog.Error("Webhook payload parse failed", "error", err)
		Error(w, http.StatusInternalServerError, "invalid payload")
		return
	}

	msg := payload.FirstMessage()
	if msg == nil {
		// Status updates and delivery receipts: acknowledged no-op.
		w.WriteHeader(http.StatusOK)
		return
	}

	from := msg.From
	text := msg.Body()
	slog.Info("Incoming message", "from", from, "text", text)

	h.log.Append(domain.NewMessage(from, text))
	if err := h.transcripts.Append(from, "user", text); err != nil {
		slog.Warn("Failed to record user transcript turn", "from", from, "error", err)
	}

	doc := h.know.Load()

	var reply string
	if p := knowledge.MatchProduct(doc, text); p != nil {
		reply = productReply(p)
	} else {
		aiReply, err := h.ai.Reply(r.Context(), doc, text)
		if err != nil {
			// Swallowed: the sender sees silence, the webhook gets 200.
			slog.Error("AI reply failed", "from", from, "error", err)
			w.WriteHeader(http.StatusOK)
			return
		}
		reply = aiReply
	}

	if err := h.wa.Send(r.Context(), from, reply); err != nil {
		slog.Error("WhatsApp send failed", "to", from, "error", err)
	}

	h.log.Append(domain.NewMessage(h.botName, reply))
	if err := h.transcripts.Append(from, "assistant", reply); err != nil {
		slog.Warn("Failed to record assistant transcript turn", "from", from, "error", err)
	}

	w.WriteHeader(http.StatusOK)
}

// productReply composes the fixed catalog reply: name, description, price
// and the payment prompt.
func productReply(p *domain.Product) string {
	price := strconv.FormatFloat(p.Price, 'f', -1, 64)
	return fmt.Sprintf("%s: %s\nPrice: ₦%s\n\nWould you like to pay by bank transfer or card (Paystack link)?",
		p.Name, p.Description, price)
}
