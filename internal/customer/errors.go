package customer

import "errors"

var (
	// ErrNotFound indicates no saved contact record for the customer.
	ErrNotFound = errors.New("customer: not found")
	// ErrIncomplete indicates neither the live form nor the saved record
	// covers all required fields.
	ErrIncomplete = errors.New("customer: contact information incomplete")
)
