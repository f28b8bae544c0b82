package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/flowmindhq/flowmind/internal/domain"
)

// ListMessages returns the last 200 records in append order.
func (h *Handler) ListMessages(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, h.log.Recent(messagesWindow))
}

// GetKnowledge returns the current knowledge document, re-read from disk so
// external edits to the file show up between dashboard polls.
func (h *Handler) GetKnowledge(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, h.know.Reload())
}

// SaveKnowledge replaces the knowledge document wholesale. Concurrent
// dashboard saves race last-write-wins.
func (h *Handler) SaveKnowledge(w http.ResponseWriter, r *http.Request) {
	var doc domain.Knowledge
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		Error(w, http.StatusBadRequest, "invalid knowledge document")
		return
	}

	if err := h.know.Save(&doc); err != nil {
		slog.Error("Knowledge save failed", "error", err)
		Error(w, http.StatusInternalServerError, "Could not save knowledge.")
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}

type sendReplyRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

// SendReply delivers a manual agent reply. An explicit recipient wins;
// otherwise the most recent sender that is neither the bot nor a previous
// manual reply is targeted.
func (h *Handler) SendReply(w http.ResponseWriter, r *http.Request) {
	var req sendReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		Error(w, http.StatusBadRequest, "Missing text")
		return
	}

	to := req.To
	if to == "" {
		to = h.lastCustomer()
	}
	if to == "" {
		Error(w, http.StatusBadRequest, "No recipient found")
		return
	}

	if err := h.wa.Send(r.Context(), to, req.Text); err != nil {
		slog.Error("Manual reply send failed", "to", to, "error", err)
		Error(w, http.StatusInternalServerError, "Failed to send reply")
		return
	}

	h.log.Append(domain.NewMessage("You", req.Text))
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}

type testSendRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// TestWhatsApp sends an arbitrary message for diagnostics.
func (h *Handler) TestWhatsApp(w http.ResponseWriter, r *http.Request) {
	var req testSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.To == "" || req.Message == "" {
		Error(w, http.StatusBadRequest, "Missing to/message")
		return
	}

	slog.Info("Testing WhatsApp send", "to", req.To)
	if err := h.wa.Send(r.Context(), req.To, req.Message); err != nil {
		Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"to":      req.To,
		"message": req.Message,
	})
}

// lastCustomer returns the most recent sender eligible for a manual reply.
func (h *Handler) lastCustomer() string {
	records := h.log.All()
	for i := len(records) - 1; i >= 0; i-- {
		from := records[i].From
		if from != "" && from != h.botName && from != "You" {
			return from
		}
	}
	return ""
}
