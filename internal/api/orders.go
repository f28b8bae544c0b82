package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flowmindhq/flowmind/internal/receipt"
)

// ListOrders returns the persisted order list verbatim.
func (h *Handler) ListOrders(w http.ResponseWriter, _ *http.Request) {
	list, err := h.orders.List()
	if err != nil {
		slog.Error("Order list read failed", "error", err)
		Error(w, http.StatusInternalServerError, "Unable to load orders.")
		return
	}
	JSON(w, http.StatusOK, list)
}

// DownloadReceipt streams a PDF delivery note for the order.
func (h *Handler) DownloadReceipt(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	order, err := h.orders.Find(orderID)
	if err != nil {
		slog.Error("Order lookup failed", "order_id", orderID, "error", err)
		Error(w, http.StatusInternalServerError, "Unable to load orders.")
		return
	}
	if order == nil {
		Error(w, http.StatusNotFound, "Order not found")
		return
	}

	company := h.know.Load().Company.Name

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+receipt.Filename(orderID)+`"`)

	if err := receipt.Render(w, company, order); err != nil {
		// Headers are already on the wire; the truncated stream is the error.
		slog.Error("Receipt render failed", "order_id", orderID, "error", err)
	}
}
