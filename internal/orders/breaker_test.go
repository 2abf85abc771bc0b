package orders

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/fjod/go_cart/swiftbuyz/domain"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockCreator struct {
	calls  int
	result *Result
	err    error
}

func (m *MockCreator) CreateOrder(context.Context, *domain.OrderDraft, string) (*Result, error) {
	m.calls++
	return m.result, m.err
}

func testSettings() BreakerSettings {
	return BreakerSettings{ConsecutiveFailures: 3, OpenTimeout: time.Minute}
}

func TestBreaker_OpensAfterNetworkFailures(t *testing.T) {
	next := &MockCreator{err: &Error{Message: GenericFailureMessage, Kind: KindNetwork}}
	b := NewBreakingCreator(next, testSettings(), zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := b.CreateOrder(ctx, testDraft(), "tok")
		require.Error(t, err)
	}

	_, err := b.CreateOrder(ctx, testDraft(), "tok")

	var orderErr *Error
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, unavailableMessage, orderErr.Message)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, next.calls)
}

func TestBreaker_RejectionsDoNotTrip(t *testing.T) {
	next := &MockCreator{err: &Error{Status: http.StatusBadRequest, Message: "Insufficient stock"}}
	b := NewBreakingCreator(next, testSettings(), zap.NewNop())

	for i := 0; i < 5; i++ {
		_, err := b.CreateOrder(context.Background(), testDraft(), "tok")

		var orderErr *Error
		require.ErrorAs(t, err, &orderErr)
		assert.Equal(t, "Insufficient stock", orderErr.Message)
	}
	assert.Equal(t, 5, next.calls)
}

func TestBreaker_ServerErrorsTrip(t *testing.T) {
	next := &MockCreator{err: &Error{Status: http.StatusBadGateway, Message: GenericFailureMessage}}
	b := NewBreakingCreator(next, testSettings(), zap.NewNop())

	for i := 0; i < 4; i++ {
		_, _ = b.CreateOrder(context.Background(), testDraft(), "tok")
	}

	assert.Equal(t, 3, next.calls)
}

func TestBreaker_PassesSuccess(t *testing.T) {
	next := &MockCreator{result: &Result{OrderID: "abc123456789"}}
	b := NewBreakingCreator(next, testSettings(), zap.NewNop())

	result, err := b.CreateOrder(context.Background(), testDraft(), "tok")

	require.NoError(t, err)
	assert.Equal(t, "abc123456789", result.OrderID)
}

func TestIsUpstreamFailure(t *testing.T) {
	assert.True(t, isUpstreamFailure(errors.New("boom")))
	assert.True(t, isUpstreamFailure(&Error{Kind: KindNetwork}))
	assert.True(t, isUpstreamFailure(&Error{Status: 503}))
	assert.False(t, isUpstreamFailure(&Error{Status: 401, Kind: KindAuth}))
	assert.False(t, isUpstreamFailure(&Error{Status: 200, Kind: KindResponse}))
}
