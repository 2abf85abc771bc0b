package orders

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/go_cart/swiftbuyz/domain"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const unavailableMessage = "Order service is temporarily unavailable. Please try again shortly."

type BreakerSettings struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

var DefaultBreakerSettings = BreakerSettings{
	ConsecutiveFailures: 5,
	OpenTimeout:         30 * time.Second,
}

// BreakingCreator fails fast while the order endpoint is down. Only network
// errors and 5xx responses count as failures; a rejected order does not.
type BreakingCreator struct {
	next Creator
	cb   *gobreaker.CircuitBreaker[*Result]
}

func NewBreakingCreator(next Creator, settings BreakerSettings, logger *zap.Logger) *BreakingCreator {
	cb := gobreaker.NewCircuitBreaker[*Result](gobreaker.Settings{
		Name:        "orders-api",
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !isUpstreamFailure(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return &BreakingCreator{next: next, cb: cb}
}

func (b *BreakingCreator) CreateOrder(ctx context.Context, draft *domain.OrderDraft, token string) (*Result, error) {
	result, err := b.cb.Execute(func() (*Result, error) {
		return b.next.CreateOrder(ctx, draft, token)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &Error{Message: unavailableMessage, Kind: KindNetwork, Err: err}
	}
	return result, err
}

func isUpstreamFailure(err error) bool {
	var orderErr *Error
	if !errors.As(err, &orderErr) {
		return true
	}
	return orderErr.Kind == KindNetwork || orderErr.Status >= http.StatusInternalServerError
}
