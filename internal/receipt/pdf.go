// Package receipt renders PDF delivery notes for completed orders.
package receipt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/flowmindhq/flowmind/internal/domain"
)

// Render writes an A4 delivery note for the order to w. Absent fields are
// rendered as "N/A" or "Not set" rather than omitted.
func Render(w io.Writer, company string, order *domain.Order) error {
	if company == "" {
		company = "FlowMind AI"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, fmt.Sprintf("%s - Delivery Note", company), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 12)
	line := func(s string) {
		pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	}
	line("Order ID: " + orderID(order))
	line("Customer: " + order.Customer())
	line("Product: " + orDefault(order.Product, "N/A"))
	line("Amount Paid: NGN " + FormatAmount(order.Amount))
	line("Reference: " + orDefault(order.Reference, "N/A"))
	line("Delivery Date: " + orDefault(order.DeliveryDate, "Not set"))
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(85, 85, 85)
	pdf.CellFormat(0, 6, "Thank you for your purchase!", "", 1, "L", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render receipt: %w", err)
	}
	return nil
}

// Filename returns the attachment name for an order's delivery note.
func Filename(orderID string) string {
	return fmt.Sprintf("delivery_%s.pdf", orderID)
}

// FormatAmount renders an amount with thousands separators, keeping decimal
// places only when present (25000 -> "25,000", 25000.5 -> "25,000.50").
func FormatAmount(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	whole := strconv.FormatFloat(amount, 'f', -1, 64)
	frac := ""
	if i := strings.IndexByte(whole, '.'); i >= 0 {
		frac = whole[i:]
		whole = whole[:i]
		if len(frac) == 2 {
			frac += "0"
		}
	}

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}

func orderID(order *domain.Order) string {
	if order.OrderID != "" {
		return order.OrderID
	}
	return orDefault(order.LegacyID, "N/A")
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
