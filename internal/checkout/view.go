package checkout

import (
	"github.com/fjod/go_cart/swiftbuyz/domain"
	"github.com/fjod/go_cart/swiftbuyz/internal/cart"
)

// View is a read-only snapshot of the controller for rendering.
type View struct {
	ID           string                      `json:"id"`
	Phase        domain.Phase                `json:"phase"`
	Step         domain.Step                 `json:"step"`
	Addresses    []domain.Address            `json:"addresses"`
	AddressIndex int                         `json:"addressIndex"`
	Payment      PaymentForm                 `json:"payment"`
	Items        []domain.CartLineItem       `json:"items"`
	Totals       cart.Totals                 `json:"totals"`
	Error        string                      `json:"error,omitempty"`
	Submitting   bool                        `json:"submitting"`
	Animation    AnimationStage              `json:"animation"`
	Confirmation *domain.ConfirmationPayload `json:"confirmation,omitempty"`
	// Navigation is how the confirmation was reached: pending, animation,
	// timeout or canceled. Empty until an order is placed.
	Navigation   string                      `json:"navigation,omitempty"`
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := c.cart.Items()
	if items == nil {
		items = []domain.CartLineItem{}
	}
	payment := c.payment
	payment.Card.Number = maskCard(payment.Card.Number)
	var navigation string
	if c.relay != nil {
		navigation = c.relay.Source().String()
	}

	return View{
		ID:           c.id,
		Phase:        c.phase,
		Step:         c.phase.Step(),
		Addresses:    append([]domain.Address{}, c.addresses...),
		AddressIndex: c.addressIndex,
		Payment:      payment,
		Items:        items,
		Totals:       cart.ComputeTotals(items),
		Error:        c.errMsg,
		Submitting:   c.inFlight,
		Animation:    c.animation,
		Confirmation: c.confirmation,
		Navigation:   navigation,
	}
}

func maskCard(number string) string {
	digits := []rune(number)
	if len(digits) <= 4 {
		return number
	}
	for i := range digits[:len(digits)-4] {
		digits[i] = '*'
	}
	return string(digits)
}
