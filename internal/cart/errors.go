package cart

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrItemNotFound    = errors.New("item not found in cart")
)
