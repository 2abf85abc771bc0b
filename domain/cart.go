package domain

import "github.com/shopspring/decimal"

// CartLineItem is one product entry in the cart with its pricing snapshot.
type CartLineItem struct {
	ProductID       string          `json:"productId"`
	Name            string          `json:"name"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	Quantity        int             `json:"quantity"`
	// Stock is the known stock when the line was last mutated. Zero means untracked.
	Stock int    `json:"stock,omitempty"`
	Image string `json:"image,omitempty"`
}

// LineTotal is unitPrice * quantity.
func (i CartLineItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// LineDiscount is unitPrice * quantity * discountPercent / 100.
func (i CartLineItem) LineDiscount() decimal.Decimal {
	return i.LineTotal().Mul(i.DiscountPercent).Div(decimal.NewFromInt(100))
}

// CartState is the blob persisted after every cart mutation.
type CartState struct {
	Items       []CartLineItem  `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}
