// Package api provides HTTP handlers for the FlowMind backend.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flowmindhq/flowmind/internal/domain"
	"github.com/flowmindhq/flowmind/internal/knowledge"
	"github.com/flowmindhq/flowmind/internal/msglog"
	"github.com/flowmindhq/flowmind/internal/orders"
	"github.com/flowmindhq/flowmind/internal/transcript"
)

// messagesWindow is the maximum number of records returned to the dashboard.
const messagesWindow = 200

// Completer produces an AI reply grounded in the knowledge document.
// *ai.Client satisfies it; tests substitute fakes.
type Completer interface {
	Reply(ctx context.Context, doc *domain.Knowledge, userText string) (string, error)
}

// Dispatcher delivers an outbound message to a recipient, best effort.
// *whatsapp.Client satisfies it.
type Dispatcher interface {
	Send(ctx context.Context, to, text string) error
}

// Handler holds the injected collaborators for all HTTP endpoints.
type Handler struct {
	know        *knowledge.Store
	log         *msglog.Log
	ai          Completer
	wa          Dispatcher
	orders      *orders.Store
	transcripts *transcript.Store
	botName     string
	verifyToken string
}

// NewHandler creates a Handler with its dependencies.
func NewHandler(know *knowledge.Store, log *msglog.Log, ai Completer, wa Dispatcher, ord *orders.Store, tr *transcript.Store, botName, verifyToken string) *Handler {
	return &Handler{
		know:        know,
		log:         log,
		ai:          ai,
		wa:          wa,
		orders:      ord,
		transcripts: tr,
		botName:     botName,
		verifyToken: verifyToken,
	}
}

// RegisterRoutes mounts every endpoint on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Root)
	r.Get("/webhooks/whatsapp", h.VerifyWebhook)
	r.Post("/webhooks/whatsapp", h.ReceiveWebhook)
	r.Get("/api/messages", h.ListMessages)
	r.Get("/api/knowledge", h.GetKnowledge)
	r.Post("/api/knowledge", h.SaveKnowledge)
	r.Post("/send-reply", h.SendReply)
	r.Get("/api/orders", h.ListOrders)
	r.Get("/api/orders/download/{orderID}", h.DownloadReceipt)
	r.Post("/test-whatsapp", h.TestWhatsApp)
	r.Get("/ws/messages", h.MessagesFeed)
}

// Root is a plain-text liveness response.
func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("FlowMind Chat API is live!"))
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
