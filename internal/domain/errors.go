package domain

import "errors"

var (
	// ErrItemNotFound means a free-text item name matched nothing on the
	// menu. It is surfaced to the voice agent so it can ask the customer
	// to clarify, never silently swallowed.
	ErrItemNotFound = errors.New("item not found in menu")

	// ErrUnknownOrder means a kitchen action referenced an order id that
	// is not in the working list.
	ErrUnknownOrder = errors.New("unknown order")

	// ErrEmptyCart means confirmOrder was called with nothing in the cart.
	ErrEmptyCart = errors.New("cart is empty")
)
