package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/go_cart/swiftbuyz/domain"
	"github.com/fjod/go_cart/swiftbuyz/internal/addressbook"
	"github.com/fjod/go_cart/swiftbuyz/internal/cache"
	"github.com/fjod/go_cart/swiftbuyz/internal/checkout"
	"github.com/fjod/go_cart/swiftbuyz/internal/orders"
	"github.com/fjod/go_cart/swiftbuyz/internal/publisher"
	"github.com/fjod/go_cart/swiftbuyz/internal/session"
	"github.com/fjod/go_cart/swiftbuyz/pkg/logger"
	"go.uber.org/zap"
)

type CheckoutDeps struct {
	Sessions            *session.Registry
	Addresses           addressbook.Reader
	Orders              orders.Creator
	Confirmations       cache.ConfirmationStore
	Events              publisher.Publisher
	NewAnimator         func() checkout.Animator
	ConfirmationTimeout time.Duration
	Timeout             time.Duration
	Logger              *zap.Logger
}

type CheckoutHandler struct {
	deps CheckoutDeps
}

func NewCheckoutHandler(deps CheckoutDeps) *CheckoutHandler {
	if deps.NewAnimator == nil {
		deps.NewAnimator = func() checkout.Animator { return checkout.NewTimedAnimator() }
	}
	if deps.Events == nil {
		deps.Events = publisher.Nop{}
	}
	return &CheckoutHandler{deps: deps}
}

type SelectAddressRequestDTO struct {
	Index int `json:"index"`
}

type SelectPaymentRequestDTO struct {
	Method string               `json:"method"`
	UPIID  string               `json:"upiId"`
	Card   checkout.CardDetails `json:"card"`
}

func (h *CheckoutHandler) StartCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.deps.Timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	log := logger.WithContext(r.Context(), h.deps.Logger)
	sess := h.deps.Sessions.Get(ctx, userID)

	addresses, err := h.deps.Addresses.ListByUser(ctx, userID)
	if err != nil {
		log.Error("failed to load addresses", zap.String("user_id", userID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "address_lookup_failed", "could not load saved addresses")
		return
	}

	c, err := checkout.New(checkout.Params{
		UserID:              userID,
		Token:               getToken(r.Context()),
		Cart:                sess.Cart,
		Addresses:           addresses,
		Orders:              h.deps.Orders,
		Confirmations:       h.deps.Confirmations,
		Events:              h.deps.Events,
		Navigator:           sess,
		Animator:            h.deps.NewAnimator(),
		ConfirmationTimeout: h.deps.ConfirmationTimeout,
		Logger:              log,
	})
	if err != nil {
		handleCheckoutError(w, err)
		return
	}
	sess.StartCheckout(c)

	respondJSON(w, http.StatusCreated, c.View())
}

func (h *CheckoutHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	c, ok := h.current(w, r)
	if !ok {
		return
	}
	if err := c.Guard(); err != nil {
		handleCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c.View())
}

func (h *CheckoutHandler) SelectAddress(w http.ResponseWriter, r *http.Request) {
	c, ok := h.current(w, r)
	if !ok {
		return
	}

	var req SelectAddressRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := c.SelectAddress(req.Index); err != nil {
		handleCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c.View())
}

func (h *CheckoutHandler) SelectPayment(w http.ResponseWriter, r *http.Request) {
	c, ok := h.current(w, r)
	if !ok {
		return
	}

	var req SelectPaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	method, err := domain.ParsePaymentMethod(req.Method)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_payment_method", err.Error())
		return
	}
	if err := c.SelectPayment(checkout.PaymentForm{Method: method, UPIID: req.UPIID, Card: req.Card}); err != nil {
		handleCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c.View())
}

// Next advances the checkout. From the review step it places the order; a
// failed order is reported in the returned view, not as an error status.
func (h *CheckoutHandler) Next(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.deps.Timeout)
	defer cancel()

	c, ok := h.current(w, r)
	if !ok {
		return
	}
	c.SetToken(getToken(r.Context()))

	if err := c.Next(ctx); err != nil {
		handleCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c.View())
}

func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	c, ok := h.current(w, r)
	if !ok {
		return
	}

	if err := c.Back(); err != nil {
		var redirect *checkout.RedirectError
		if errors.As(err, &redirect) {
			h.deps.Sessions.Get(r.Context(), getUserIDFromContext(r.Context())).EndCheckout()
		}
		handleCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c.View())
}

func (h *CheckoutHandler) CancelCheckout(w http.ResponseWriter, r *http.Request) {
	sess := h.deps.Sessions.Get(r.Context(), getUserIDFromContext(r.Context()))
	sess.EndCheckout()
	w.WriteHeader(http.StatusNoContent)
}

func (h *CheckoutHandler) current(w http.ResponseWriter, r *http.Request) (*checkout.Controller, bool) {
	sess := h.deps.Sessions.Get(r.Context(), getUserIDFromContext(r.Context()))
	c, ok := sess.Checkout()
	if !ok {
		respondError(w, http.StatusNotFound, "no_checkout", "no checkout in progress")
		return nil, false
	}
	return c, true
}
