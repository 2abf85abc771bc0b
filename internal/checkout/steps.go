package checkout

import (
	"context"
	"strings"

	"github.com/fjod/go_cart/swiftbuyz/domain"
)

// Next advances one step. From review, or after a failed attempt, it submits
// the order.
func (c *Controller) Next(ctx context.Context) error {
	c.mu.Lock()
	if err := c.checkMutableLocked(); err != nil {
		c.mu.Unlock()
		return err
	}

	switch c.phase {
	case domain.PhaseAddress:
		defer c.mu.Unlock()
		if c.addressIndex == unsetAddress {
			return c.failValidationLocked("address", msgSelectAddress)
		}
		c.errMsg = ""
		c.moveLocked(domain.PhasePayment)
		return nil

	case domain.PhasePayment:
		defer c.mu.Unlock()
		if c.payment.Method == domain.PaymentUPI && !strings.Contains(c.payment.UPIID, "@") {
			return c.failValidationLocked("upiId", msgInvalidUPI)
		}
		c.errMsg = ""
		c.moveLocked(domain.PhaseReview)
		return nil

	default:
		c.mu.Unlock()
		return c.Submit(ctx)
	}
}

// Back goes one step back and clears the error. Back from the first step
// leaves checkout for the cart.
func (c *Controller) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkMutableLocked(); err != nil {
		return err
	}

	switch c.phase {
	case domain.PhaseAddress:
		return &RedirectError{To: CartPath, Reason: "left checkout"}
	case domain.PhasePayment:
		c.moveLocked(domain.PhaseAddress)
	case domain.PhaseReview, domain.PhaseFailed:
		c.moveLocked(domain.PhasePayment)
	}
	c.errMsg = ""
	return nil
}

func (c *Controller) failValidationLocked(field, msg string) error {
	c.errMsg = msg
	return &ValidationError{Field: field, Message: msg}
}
