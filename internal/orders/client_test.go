package orders

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fjod/go_cart/swiftbuyz/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDraft() *domain.OrderDraft {
	return &domain.OrderDraft{
		Items: []domain.OrderDraftItem{
			{ProductID: "p1", Quantity: 2, UnitPrice: decimal.NewFromInt(1000)},
		},
		ShippingAddress: domain.Address{Street: "1 Main", City: "Pune", State: "MH", ZipCode: "411001", Country: "IN"},
		PaymentMethod:   domain.ServerPaymentCOD,
		TotalAmount:     decimal.NewFromInt(1800),
	}
}

func TestCreateOrder_Success(t *testing.T) {
	var got createOrderRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/orders", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"order":{"_id":"abc123456789","status":"pending"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", time.Second)
	result, err := client.CreateOrder(context.Background(), testDraft(), "tok")

	require.NoError(t, err)
	assert.Equal(t, "abc123456789", result.OrderID)
	assert.Contains(t, string(result.Body), "pending")

	require.Len(t, got.Items, 1)
	assert.Equal(t, "p1", got.Items[0].Product)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.Equal(t, 1000.0, got.Items[0].Price)
	assert.Equal(t, "cod", got.PaymentMethod)
	assert.Equal(t, 1800.0, got.TotalAmount)
	assert.Equal(t, "411001", got.ShippingAddress.ZipCode)
}

func TestCreateOrder_ServerRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Insufficient stock","details":"p1 has 1 left"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).CreateOrder(context.Background(), testDraft(), "tok")

	var orderErr *Error
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, http.StatusBadRequest, orderErr.Status)
	assert.Equal(t, "Insufficient stock", orderErr.Message)
	assert.Equal(t, "p1 has 1 left", orderErr.Details)
	assert.Equal(t, KindServer, orderErr.Kind)
}

func TestCreateOrder_UnparseableErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).CreateOrder(context.Background(), testDraft(), "tok")

	var orderErr *Error
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, GenericFailureMessage, orderErr.Message)
	assert.ErrorIs(t, err, ErrUnexpectedBody)
}

func TestCreateOrder_StructuredDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"details":{"field":"items"}}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).CreateOrder(context.Background(), testDraft(), "tok")

	var orderErr *Error
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, GenericFailureMessage, orderErr.Message)
	assert.JSONEq(t, `{"field":"items"}`, orderErr.Details)
}

func TestCreateOrder_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Token expired"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).CreateOrder(context.Background(), testDraft(), "tok")

	var orderErr *Error
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, KindAuth, orderErr.Kind)
	assert.Equal(t, "Token expired", orderErr.Message)
}

func TestCreateOrder_MissingTokenMakesNoCall(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).CreateOrder(context.Background(), testDraft(), "")

	assert.ErrorIs(t, err, ErrMissingToken)
	assert.Zero(t, calls.Load())
}

func TestCreateOrder_SuccessWithoutOrderID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).CreateOrder(context.Background(), testDraft(), "tok")

	var orderErr *Error
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, KindResponse, orderErr.Kind)
	assert.Equal(t, GenericFailureMessage, orderErr.Message)
	assert.ErrorIs(t, err, ErrMissingOrderID)
}

func TestCreateOrder_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(url, time.Second).CreateOrder(context.Background(), testDraft(), "tok")

	var orderErr *Error
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, KindNetwork, orderErr.Kind)
	assert.Equal(t, GenericFailureMessage, orderErr.Message)
}

func TestCreateOrder_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	_, err := NewClient(server.URL, 50*time.Millisecond).CreateOrder(context.Background(), testDraft(), "tok")

	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
