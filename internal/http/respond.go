package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/go_cart/swiftbuyz/internal/cart"
	"github.com/fjod/go_cart/swiftbuyz/internal/checkout"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error      string `json:"error"`
	Code       string `json:"code,omitempty"`
	Details    string `json:"details,omitempty"`
	RedirectTo string `json:"redirect_to,omitempty"`
	ReturnTo   string `json:"return_to,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func respondRedirect(w http.ResponseWriter, redirect *checkout.RedirectError) {
	status, code := http.StatusConflict, "redirect"
	if redirect.To == checkout.LoginPath {
		status, code = http.StatusUnauthorized, "login_required"
	}
	respondJSON(w, status, ErrorResponse{
		Error:      redirect.Reason,
		Code:       code,
		RedirectTo: redirect.To,
		ReturnTo:   redirect.ReturnTo,
	})
}

func handleCheckoutError(w http.ResponseWriter, err error) {
	var redirect *checkout.RedirectError
	if errors.As(err, &redirect) {
		respondRedirect(w, redirect)
		return
	}

	var validation *checkout.ValidationError
	if errors.As(err, &validation) {
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   validation.Message,
			Code:    "validation_failed",
			Details: validation.Field,
		})
		return
	}

	switch {
	case errors.Is(err, checkout.ErrSubmissionInFlight):
		respondError(w, http.StatusConflict, "submission_in_flight", err.Error())
	case errors.Is(err, checkout.ErrCheckoutCompleted):
		respondError(w, http.StatusConflict, "checkout_completed", err.Error())
	case errors.Is(err, checkout.ErrNotOnReviewStep):
		respondError(w, http.StatusConflict, "not_on_review_step", err.Error())
	case errors.Is(err, checkout.ErrInvalidAddressIndex):
		respondError(w, http.StatusBadRequest, "invalid_address_index", err.Error())
	case errors.Is(err, checkout.ErrUnknownPaymentMethod):
		respondError(w, http.StatusBadRequest, "invalid_payment_method", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func handleCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrInvalidItem):
		respondError(w, http.StatusBadRequest, "invalid_item", err.Error())
	case errors.Is(err, cart.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
	case errors.Is(err, cart.ErrExceedsStock):
		respondError(w, http.StatusConflict, "exceeds_stock", err.Error())
	case errors.Is(err, cart.ErrItemNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
