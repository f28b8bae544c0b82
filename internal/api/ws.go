package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"

	"github.com/flowmindhq/flowmind/internal/domain"
)

// MessagesFeed upgrades to a WebSocket and pushes message records to the
// dashboard: a snapshot of the recent window first, then every append until
// the client goes away. Clients that only poll keep using /api/messages.
func (h *Handler) MessagesFeed(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "feed closed"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr)
		}
	}()

	// CloseRead reads and discards inbound frames, cancelling the context
	// when the client disconnects.
	ctx := ws.CloseRead(r.Context())

	snapshot, sub := h.log.SnapshotAndSubscribe(messagesWindow)
	defer h.log.Unsubscribe(sub)

	for _, m := range snapshot {
		if err := writeRecord(ctx, ws, m); err != nil {
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-sub:
			if !ok {
				return
			}
			if err := writeRecord(ctx, ws, m); err != nil {
				slog.Debug("WebSocket write error", "error", err)
				return
			}
		}
	}
}

func writeRecord(ctx context.Context, ws *websocket.Conn, m domain.Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return ws.Write(ctx, websocket.MessageText, data)
}
