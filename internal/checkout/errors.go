package checkout

import (
	"errors"
	"fmt"
)

const (
	LoginPath        = "/login"
	CartPath         = "/cart"
	CheckoutPath     = "/checkout"
	ConfirmationPath = "/order-confirmation"
)

const (
	msgSelectAddress = "Please select a shipping address"
	msgInvalidUPI    = "Please enter a valid UPI ID"
	msgLoginAgain    = "Your session has expired. Please log in again to place your order."
)

var (
	ErrSubmissionInFlight   = errors.New("an order submission is already in progress")
	ErrCheckoutCompleted    = errors.New("checkout already completed")
	ErrInvalidAddressIndex  = errors.New("address index out of range")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
	ErrNotOnReviewStep      = errors.New("order can only be submitted from the review step")
	ErrMissingDependency    = errors.New("checkout dependency missing")
)

// ValidationError blocks a step transition. Message is shown inline.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// RedirectError is raised by a guard that wants the user taken elsewhere.
type RedirectError struct {
	To       string
	ReturnTo string
	Reason   string
}

func (e *RedirectError) Error() string {
	if e.ReturnTo != "" {
		return fmt.Sprintf("redirect to %s (return to %s): %s", e.To, e.ReturnTo, e.Reason)
	}
	return fmt.Sprintf("redirect to %s: %s", e.To, e.Reason)
}
