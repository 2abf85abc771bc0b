package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_cart/swiftbuyz/domain"
	"github.com/fjod/go_cart/swiftbuyz/internal/cart"
	"github.com/fjod/go_cart/swiftbuyz/internal/orders"
	"github.com/fjod/go_cart/swiftbuyz/internal/publisher"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Submit places the order. Only one submission may be outstanding; a second
// call while one is in flight returns ErrSubmissionInFlight and sends nothing.
// Failures of the order call itself are not returned: they move the controller
// to the failed phase with a message for the user, and leave the cart intact.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if err := c.checkMutableLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.phase != domain.PhaseReview && c.phase != domain.PhaseFailed {
		c.mu.Unlock()
		return ErrNotOnReviewStep
	}
	if c.addressIndex == unsetAddress {
		err := c.failValidationLocked("address", msgSelectAddress)
		c.mu.Unlock()
		return err
	}

	items := c.cart.Items()
	if len(items) == 0 {
		c.mu.Unlock()
		return &RedirectError{To: CartPath, Reason: "cart is empty"}
	}

	if c.token == "" {
		c.moveLocked(domain.PhaseFailed)
		c.errMsg = msgLoginAgain
		c.mu.Unlock()
		c.logger.Warn("order submission without bearer token")
		c.publish(ctx, publisher.EventOrderFailed, "", msgLoginAgain, cart.ComputeGrandTotal(items))
		return nil
	}

	address := c.addresses[c.addressIndex]
	method := c.payment.Method
	token := c.token
	draft := buildDraft(items, address, method)

	c.inFlight = true
	c.errMsg = ""
	c.moveLocked(domain.PhaseSubmitting)
	c.mu.Unlock()

	c.logger.Info("submitting order",
		zap.Int("items", len(draft.Items)),
		zap.String("payment_method", draft.PaymentMethod),
		zap.Stringer("total", draft.TotalAmount))

	result, err := c.orders.CreateOrder(ctx, draft, token)
	if err != nil {
		c.fail(ctx, err, draft)
		return nil
	}

	c.complete(ctx, result, items, address, method)
	return nil
}

func buildDraft(items []domain.CartLineItem, address domain.Address, method domain.PaymentMethod) *domain.OrderDraft {
	draftItems := make([]domain.OrderDraftItem, 0, len(items))
	for _, item := range items {
		draftItems = append(draftItems, domain.OrderDraftItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return &domain.OrderDraft{
		Items:           draftItems,
		ShippingAddress: address,
		PaymentMethod:   method.ServerValue(),
		TotalAmount:     cart.ComputeGrandTotal(items),
	}
}

func (c *Controller) fail(ctx context.Context, err error, draft *domain.OrderDraft) {
	msg := orders.GenericFailureMessage
	var orderErr *orders.Error
	if errors.As(err, &orderErr) && orderErr.Message != "" {
		msg = orderErr.Message
	}
	c.logger.Warn("order submission failed", zap.String("message", msg), zap.Error(err))

	c.mu.Lock()
	c.inFlight = false
	c.errMsg = msg
	c.moveLocked(domain.PhaseFailed)
	c.mu.Unlock()

	c.publish(ctx, publisher.EventOrderFailed, "", msg, draft.TotalAmount)
}

func (c *Controller) complete(ctx context.Context, result *orders.Result, items []domain.CartLineItem, address domain.Address, method domain.PaymentMethod) {
	c.mu.Lock()
	c.orderPlaced = true
	c.mu.Unlock()

	c.cart.Clear(ctx)

	payload := buildConfirmation(result.OrderID, items, address, method, time.Now())
	c.saveHandoff(ctx, &payload)

	animCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	relay := NewRelay(c.confirmationTimeout, func(src Source) {
		stop()
		c.logger.Info("navigating to order confirmation",
			zap.String("order_id", payload.OrderID),
			zap.Stringer("source", src))
		c.navigator.NavigateToConfirmation(payload)
	})

	c.mu.Lock()
	c.inFlight = false
	c.confirmation = &payload
	c.relay = relay
	c.stopAnim = stop
	c.moveLocked(domain.PhaseCompleted)
	closed := c.closed
	c.mu.Unlock()

	c.logger.Info("order placed", zap.String("order_id", payload.OrderID), zap.String("order_number", payload.OrderNumber))
	c.publish(ctx, publisher.EventOrderPlaced, payload.OrderID, "", payload.TotalAmount)

	if closed {
		stop()
		relay.Cancel()
		return
	}
	c.animator.Start(animCtx, c.setAnimation, relay.AnimationDone)
}

func buildConfirmation(orderID string, items []domain.CartLineItem, address domain.Address, method domain.PaymentMethod, placedAt time.Time) domain.ConfirmationPayload {
	confirmed := make([]domain.ConfirmationItem, 0, len(items))
	for _, item := range items {
		confirmed = append(confirmed, domain.ConfirmationItem{
			ProductID:       item.ProductID,
			Name:            item.Name,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			DiscountPercent: item.DiscountPercent,
			Image:           item.Image,
		})
	}
	totals := cart.ComputeTotals(items)
	return domain.ConfirmationPayload{
		OrderID:         orderID,
		OrderNumber:     domain.OrderNumber(orderID),
		Items:           confirmed,
		ShippingAddress: address,
		PaymentMethod:   method.Label(),
		Subtotal:        totals.Subtotal,
		Discount:        totals.Discount,
		TotalAmount:     totals.Grand,
		PlacedAt:        placedAt,
	}
}

// saveHandoff writes the confirmation to session storage as a fallback for a
// lost navigation state. Errors are logged only.
func (c *Controller) saveHandoff(ctx context.Context, payload *domain.ConfirmationPayload) {
	if c.confirmations == nil {
		return
	}
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), handoffTimeout)
	defer cancel()
	if err := c.confirmations.SaveConfirmation(saveCtx, c.userID, payload); err != nil {
		c.logger.Warn("failed to save confirmation handoff", zap.String("order_id", payload.OrderID), zap.Error(err))
	}
}

// publish sends a telemetry event in the background.
func (c *Controller) publish(ctx context.Context, eventType publisher.EventType, orderID, message string, total decimal.Decimal) {
	event := publisher.NewEvent(eventType, c.userID)
	event.OrderID = orderID
	event.Message = message
	event.TotalAmount = total

	go func() {
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := c.events.Publish(pubCtx, event); err != nil {
			c.logger.Warn("failed to publish checkout event", zap.String("event_type", string(eventType)), zap.Error(err))
		}
	}()
}
