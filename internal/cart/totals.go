package cart

import (
	"github.com/fjod/go_cart/swiftbuyz/domain"
	"github.com/shopspring/decimal"
)

// Totals are the derived amounts of a cart. Nothing is rounded until display.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Grand    decimal.Decimal `json:"grandTotal"`
}

func ComputeSubtotal(items []domain.CartLineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}

func ComputeDiscountTotal(items []domain.CartLineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.LineDiscount())
	}
	return sum
}

// ComputeGrandTotal is subtotal minus discounts. Discounts are clamped to 0..100
// when items enter the cart, so the result is never negative.
func ComputeGrandTotal(items []domain.CartLineItem) decimal.Decimal {
	return ComputeSubtotal(items).Sub(ComputeDiscountTotal(items))
}

func ComputeTotals(items []domain.CartLineItem) Totals {
	subtotal := ComputeSubtotal(items)
	discount := ComputeDiscountTotal(items)
	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Grand:    subtotal.Sub(discount),
	}
}
