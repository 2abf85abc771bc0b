package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderDraftItem struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

// OrderDraft is the fully assembled, not-yet-submitted order. It is built once,
// at the final step transition, and not mutated afterwards.
type OrderDraft struct {
	Items           []OrderDraftItem
	ShippingAddress Address
	// PaymentMethod holds the server vocabulary: "cod" or "online".
	PaymentMethod string
	TotalAmount   decimal.Decimal
}

type ConfirmationItem struct {
	ProductID       string          `json:"productId"`
	Name            string          `json:"name"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	Image           string          `json:"image,omitempty"`
}

// ConfirmationPayload is the post-success snapshot shown on the order confirmation display.
type ConfirmationPayload struct {
	OrderID         string             `json:"orderId"`
	OrderNumber     string             `json:"orderNumber"`
	Items           []ConfirmationItem `json:"items"`
	ShippingAddress Address            `json:"shippingAddress"`
	PaymentMethod   string             `json:"paymentMethod"`
	Subtotal        decimal.Decimal    `json:"subtotal"`
	Discount        decimal.Decimal    `json:"discount"`
	TotalAmount     decimal.Decimal    `json:"totalAmount"`
	PlacedAt        time.Time          `json:"placedAt"`
}

const orderNumberLength = 6

// OrderNumber is the human-facing suffix of a server-assigned order id.
func OrderNumber(orderID string) string {
	if len(orderID) <= orderNumberLength {
		return orderID
	}
	return orderID[len(orderID)-orderNumberLength:]
}
