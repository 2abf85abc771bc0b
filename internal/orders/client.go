package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/go_cart/swiftbuyz/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	ordersPath      = "/api/orders"
	maxResponseSize = 1 << 20
)

type Creator interface {
	CreateOrder(ctx context.Context, draft *domain.OrderDraft, token string) (*Result, error)
}

type Result struct {
	OrderID string
	Body    []byte
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		timeout: timeout,
	}
}

type requestItem struct {
	Product  string  `json:"product"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type requestAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

type createOrderRequest struct {
	Items           []requestItem  `json:"items"`
	ShippingAddress requestAddress `json:"shippingAddress"`
	PaymentMethod   string         `json:"paymentMethod"`
	TotalAmount     float64        `json:"totalAmount"`
}

type createOrderResponse struct {
	Order *struct {
		ID string `json:"_id"`
	} `json:"order"`
}

type errorResponse struct {
	Message string          `json:"message"`
	Details json.RawMessage `json:"details"`
}

// CreateOrder posts draft once. It never retries.
func (c *Client) CreateOrder(ctx context.Context, draft *domain.OrderDraft, token string) (*Result, error) {
	if token == "" {
		return nil, &Error{
			Status:  http.StatusUnauthorized,
			Message: "You are not logged in. Please log in again to place your order.",
			Kind:    KindAuth,
			Err:     ErrMissingToken,
		}
	}

	payload, err := json.Marshal(newCreateOrderRequest(draft))
	if err != nil {
		return nil, fmt.Errorf("failed to encode order: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+ordersPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Message: GenericFailureMessage, Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &Error{Status: resp.StatusCode, Message: GenericFailureMessage, Kind: KindNetwork, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseFailure(resp.StatusCode, body)
	}

	var created createOrderResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, &Error{Status: resp.StatusCode, Message: GenericFailureMessage, Kind: KindResponse, Err: fmt.Errorf("%w: %v", ErrUnexpectedBody, err)}
	}
	if created.Order == nil || created.Order.ID == "" {
		return nil, &Error{Status: resp.StatusCode, Message: GenericFailureMessage, Kind: KindResponse, Err: ErrMissingOrderID}
	}

	return &Result{OrderID: created.Order.ID, Body: body}, nil
}

func parseFailure(status int, body []byte) *Error {
	e := &Error{Status: status, Message: GenericFailureMessage, Kind: KindServer}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		e.Kind = KindAuth
	}

	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		e.Err = fmt.Errorf("%w: %v", ErrUnexpectedBody, err)
		return e
	}
	if msg := strings.TrimSpace(parsed.Message); msg != "" {
		e.Message = msg
	}
	e.Details = detailsText(parsed.Details)
	return e
}

// detailsText accepts details as a string or any other JSON value.
func detailsText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func newCreateOrderRequest(draft *domain.OrderDraft) createOrderRequest {
	items := make([]requestItem, 0, len(draft.Items))
	for _, item := range draft.Items {
		items = append(items, requestItem{
			Product:  item.ProductID,
			Quantity: item.Quantity,
			Price:    item.UnitPrice.InexactFloat64(),
		})
	}
	a := draft.ShippingAddress
	return createOrderRequest{
		Items: items,
		ShippingAddress: requestAddress{
			Street:  a.Street,
			City:    a.City,
			State:   a.State,
			ZipCode: a.ZipCode,
			Country: a.Country,
		},
		PaymentMethod: draft.PaymentMethod,
		TotalAmount:   draft.TotalAmount.InexactFloat64(),
	}
}
