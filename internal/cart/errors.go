package cart

import "errors"

var (
	ErrInvalidItem     = errors.New("cart item must have a product id and a non-negative price")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrExceedsStock    = errors.New("quantity exceeds available stock")
	ErrItemNotFound    = errors.New("item not found in cart")
)
