package orders

import (
	"errors"
	"fmt"
)

const GenericFailureMessage = "Failed to place order. Please try again."

var (
	ErrMissingToken   = errors.New("missing bearer token")
	ErrUnexpectedBody = errors.New("unexpected response body")
	ErrMissingOrderID = errors.New("response has no order id")
)

type Kind int

const (
	KindServer Kind = iota
	KindNetwork
	KindAuth
	KindResponse
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindResponse:
		return "response"
	default:
		return "server"
	}
}

// Error is a failed order creation. Message is always safe to show to the user.
type Error struct {
	Status  int
	Message string
	Details string
	Kind    Kind
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("order creation failed (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("order creation failed: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}
