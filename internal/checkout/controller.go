package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/go_cart/swiftbuyz/domain"
	"github.com/fjod/go_cart/swiftbuyz/internal/orders"
	"github.com/fjod/go_cart/swiftbuyz/internal/publisher"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultConfirmationTimeout = 5 * time.Second
	handoffTimeout             = 2 * time.Second
	publishTimeout             = 5 * time.Second
	unsetAddress               = -1
)

// Cart is the part of the cart store the controller reads and clears.
type Cart interface {
	Items() []domain.CartLineItem
	Len() int
	Clear(ctx context.Context)
}

type ConfirmationSaver interface {
	SaveConfirmation(ctx context.Context, userID string, payload *domain.ConfirmationPayload) error
}

// Navigator takes the user to the confirmation display. It is called at most
// once per placed order.
type Navigator interface {
	NavigateToConfirmation(payload domain.ConfirmationPayload)
}

type CardDetails struct {
	Number string `json:"number,omitempty"`
	Holder string `json:"holder,omitempty"`
	Expiry string `json:"expiry,omitempty"`
	CVV    string `json:"-"`
}

// PaymentForm is the step-local payment selection. Card fields are collected
// but not validated.
type PaymentForm struct {
	Method domain.PaymentMethod `json:"method"`
	UPIID  string               `json:"upiId,omitempty"`
	Card   CardDetails          `json:"card"`
}

type Params struct {
	UserID        string
	Token         string
	Cart          Cart
	Addresses     []domain.Address
	Orders        orders.Creator
	Confirmations ConfirmationSaver
	Events        publisher.Publisher
	Navigator     Navigator
	Animator      Animator
	// ConfirmationTimeout is the safety net for a stalled animation.
	ConfirmationTimeout time.Duration
	Logger              *zap.Logger
}

// Controller is the checkout step state machine for one user session.
type Controller struct {
	mu sync.Mutex

	id           string
	userID       string
	token        string
	phase        domain.Phase
	addresses    []domain.Address
	addressIndex int
	payment      PaymentForm
	errMsg       string
	inFlight     bool
	orderPlaced  bool
	confirmation *domain.ConfirmationPayload
	animation    AnimationStage
	relay        *Relay
	stopAnim     context.CancelFunc
	closed       bool

	cart                Cart
	orders              orders.Creator
	confirmations       ConfirmationSaver
	events              publisher.Publisher
	navigator           Navigator
	animator            Animator
	confirmationTimeout time.Duration
	logger              *zap.Logger
}

// New enters checkout. It refuses unauthenticated users and empty carts with a
// RedirectError.
func New(p Params) (*Controller, error) {
	if p.Cart == nil || p.Orders == nil || p.Navigator == nil {
		return nil, ErrMissingDependency
	}
	if p.UserID == "" {
		return nil, &RedirectError{To: LoginPath, ReturnTo: CheckoutPath, Reason: "not authenticated"}
	}
	if p.Cart.Len() == 0 {
		return nil, &RedirectError{To: CartPath, Reason: "cart is empty"}
	}

	c := &Controller{
		id:                  uuid.NewString(),
		userID:              p.UserID,
		token:               p.Token,
		phase:               domain.PhaseAddress,
		addresses:           append([]domain.Address(nil), p.Addresses...),
		addressIndex:        preselectAddress(p.Addresses),
		payment:             PaymentForm{Method: domain.PaymentCashOnDelivery},
		animation:           AnimationIdle,
		cart:                p.Cart,
		orders:              p.Orders,
		confirmations:       p.Confirmations,
		events:              p.Events,
		navigator:           p.Navigator,
		animator:            p.Animator,
		confirmationTimeout: p.ConfirmationTimeout,
		logger:              p.Logger,
	}
	if c.confirmationTimeout <= 0 {
		c.confirmationTimeout = DefaultConfirmationTimeout
	}
	if c.animator == nil {
		c.animator = NewTimedAnimator()
	}
	if c.events == nil {
		c.events = publisher.Nop{}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	c.logger = c.logger.With(zap.String("checkout_id", c.id), zap.String("user_id", c.userID))
	c.logger.Info("checkout started", zap.Int("addresses", len(c.addresses)), zap.Int("items", p.Cart.Len()))

	return c, nil
}

// preselectAddress picks the default address, else the first one.
func preselectAddress(addresses []domain.Address) int {
	for i, a := range addresses {
		if a.IsDefault {
			return i
		}
	}
	if len(addresses) > 0 {
		return 0
	}
	return unsetAddress
}

func (c *Controller) ID() string {
	return c.id
}

// Guard re-evaluates the entry guard. The empty cart redirect is suppressed
// once an order has been placed, since the cart is cleared by then.
func (c *Controller) Guard() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.orderPlaced {
		return nil
	}
	if c.cart.Len() == 0 {
		return &RedirectError{To: CartPath, Reason: "cart is empty"}
	}
	return nil
}

// SetToken replaces the bearer credential used for submission.
func (c *Controller) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Controller) SelectAddress(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkMutableLocked(); err != nil {
		return err
	}
	if index < 0 || index >= len(c.addresses) {
		return ErrInvalidAddressIndex
	}
	c.addressIndex = index
	c.errMsg = ""
	return nil
}

func (c *Controller) SelectPayment(form PaymentForm) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkMutableLocked(); err != nil {
		return err
	}
	if _, err := domain.ParsePaymentMethod(string(form.Method)); err != nil {
		return fmt.Errorf("%w: %v", ErrUnknownPaymentMethod, err)
	}
	c.payment = form
	c.errMsg = ""
	return nil
}

// Close tears the controller down. A pending confirmation navigation is
// canceled and the animation stopped.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	relay, stop := c.relay, c.stopAnim
	c.mu.Unlock()

	if stop != nil {
		stop()
	}
	if relay != nil {
		relay.Cancel()
	}
}

// Relay returns the confirmation relay of the placed order, or nil.
func (c *Controller) Relay() *Relay {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.relay
}

func (c *Controller) checkMutableLocked() error {
	if c.inFlight {
		return ErrSubmissionInFlight
	}
	if c.phase == domain.PhaseCompleted {
		return ErrCheckoutCompleted
	}
	return nil
}

func (c *Controller) setAnimation(stage AnimationStage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.animation = stage
}

func (c *Controller) moveLocked(to domain.Phase) {
	if !domain.CanTransitionTo(c.phase, to) {
		c.logger.Error("illegal checkout transition", zap.Stringer("from", c.phase), zap.Stringer("to", to))
		return
	}
	c.logger.Debug("checkout transition", zap.Stringer("from", c.phase), zap.Stringer("to", to))
	c.phase = to
}
