package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/go_cart/swiftbuyz/domain"
	"github.com/fjod/go_cart/swiftbuyz/internal/cart"
	"github.com/fjod/go_cart/swiftbuyz/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const maxQuantity = 99

type CartHandler struct {
	sessions *session.Registry
	timeout  time.Duration
}

func NewCartHandler(sessions *session.Registry, timeout time.Duration) *CartHandler {
	return &CartHandler{
		sessions: sessions,
		timeout:  timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID       string          `json:"productId"`
	Name            string          `json:"name"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	Quantity        int             `json:"quantity"`
	Stock           int             `json:"stock"`
	Image           string          `json:"image"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartResponse struct {
	Items  []domain.CartLineItem `json:"items"`
	Totals cart.Totals           `json:"totals"`
}

func newCartResponse(store *cart.Store) CartResponse {
	items := store.Items()
	if items == nil {
		items = []domain.CartLineItem{}
	}
	return CartResponse{Items: items, Totals: cart.ComputeTotals(items)}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := h.sessions.Get(ctx, getUserIDFromContext(r.Context()))
	respondJSON(w, http.StatusOK, newCartResponse(sess.Cart))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity <= 0 || req.Quantity > maxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	sess := h.sessions.Get(ctx, getUserIDFromContext(r.Context()))
	err := sess.Cart.Add(ctx, domain.CartLineItem{
		ProductID:       req.ProductID,
		Name:            req.Name,
		UnitPrice:       req.UnitPrice,
		DiscountPercent: req.DiscountPercent,
		Quantity:        req.Quantity,
		Stock:           req.Stock,
		Image:           req.Image,
	})
	if err != nil {
		handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, newCartResponse(sess.Cart))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity > maxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	sess := h.sessions.Get(ctx, getUserIDFromContext(r.Context()))
	if err := sess.Cart.SetQuantity(ctx, productID, req.Quantity); err != nil {
		handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newCartResponse(sess.Cart))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := h.sessions.Get(ctx, getUserIDFromContext(r.Context()))
	if err := sess.Cart.Remove(ctx, chi.URLParam(r, "product_id")); err != nil {
		handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newCartResponse(sess.Cart))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := h.sessions.Get(ctx, getUserIDFromContext(r.Context()))
	sess.Cart.Clear(ctx)

	respondJSON(w, http.StatusOK, newCartResponse(sess.Cart))
}
