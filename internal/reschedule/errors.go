package reschedule

import "errors"

// MsgLinkExpired is the customer-facing message for a missing or invalid
// token. The only remedy is requesting a new link.
const MsgLinkExpired = "Link expired or invalid. Request a new link."

var (
	// ErrInvalidToken covers missing, malformed, expired, or badly signed
	// tokens.
	ErrInvalidToken = errors.New("reschedule: invalid token")
	// ErrAppointmentNotFound indicates the id does not belong to the
	// token's order.
	ErrAppointmentNotFound = errors.New("reschedule: appointment not found")
	// ErrRowBusy indicates the row already has a confirmation in flight.
	ErrRowBusy = errors.New("reschedule: confirmation already in flight")
	// ErrBadState indicates the session is not in a state that allows the
	// requested action.
	ErrBadState = errors.New("reschedule: action not allowed in current state")
)
