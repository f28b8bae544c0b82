package domain

// Order is a completed order written by the external payment-completion
// process. This service only ever reads it.
type Order struct {
	OrderID      string  `json:"orderId"`
	LegacyID     string  `json:"id,omitempty"`
	Product      string  `json:"product"`
	Amount       float64 `json:"amount"`
	Reference    string  `json:"reference"`
	Thread       string  `json:"thread,omitempty"`
	CustomerName string  `json:"customerName,omitempty"`
	DeliveryDate string  `json:"deliveryDate,omitempty"`
	CreatedAt    string  `json:"createdAt,omitempty"`
}

// Matches reports whether id equals the order's primary or legacy identifier.
func (o *Order) Matches(id string) bool {
	if o.OrderID != "" {
		return o.OrderID == id
	}
	return o.LegacyID == id
}

// Customer returns the display name for the receipt, preferring the
// conversation thread over the stored customer name.
func (o *Order) Customer() string {
	if o.Thread != "" {
		return o.Thread
	}
	if o.CustomerName != "" {
		return o.CustomerName
	}
	return "N/A"
}
