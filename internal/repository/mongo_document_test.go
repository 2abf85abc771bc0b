package repository

import (
	"testing"

	"github.com/fjod/go_cart/swiftbuyz/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartDocument_RoundTrip(t *testing.T) {
	state := &domain.CartState{
		Items: []domain.CartLineItem{
			{ProductID: "p1", Name: "Mug", UnitPrice: decimal.RequireFromString("1000.50"), DiscountPercent: decimal.NewFromInt(10), Quantity: 2, Stock: 9, Image: "mug.png"},
		},
		TotalAmount: decimal.RequireFromString("1800.9"),
	}

	doc := newCartDocument("ns:u1", state)
	assert.Equal(t, "ns:u1", doc.Key)
	assert.Equal(t, "1000.5", doc.Items[0].UnitPrice)

	back, err := doc.toState()
	require.NoError(t, err)
	require.Len(t, back.Items, 1)
	assert.True(t, back.Items[0].UnitPrice.Equal(decimal.RequireFromString("1000.50")))
	assert.True(t, back.TotalAmount.Equal(decimal.RequireFromString("1800.9")))
	assert.Equal(t, 9, back.Items[0].Stock)
	assert.Equal(t, "mug.png", back.Items[0].Image)
}

func TestCartDocument_InvalidAmount(t *testing.T) {
	doc := cartDocument{Key: "k", Items: []itemDocument{{ProductID: "p1", UnitPrice: "ten"}}}

	_, err := doc.toState()
	assert.ErrorContains(t, err, "invalid price for product p1")
}

func TestCartDocument_EmptyAmountsAreZero(t *testing.T) {
	doc := cartDocument{Key: "k", Items: []itemDocument{{ProductID: "p1", Quantity: 1}}}

	state, err := doc.toState()
	require.NoError(t, err)
	assert.True(t, state.TotalAmount.IsZero())
	assert.True(t, state.Items[0].UnitPrice.IsZero())
}
