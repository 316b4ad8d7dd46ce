package orders

import "errors"

var (
	// ErrOrderNotFound indicates no order matched the id within the org.
	ErrOrderNotFound = errors.New("orders: not found")
	// ErrMissingCustomer indicates the contact details were incomplete.
	ErrMissingCustomer = errors.New("orders: customer information incomplete")
	// ErrCheckoutFailed indicates the payment provider rejected the session.
	ErrCheckoutFailed = errors.New("orders: checkout session failed")
)
