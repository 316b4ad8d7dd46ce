package cart

import (
	"errors"
	"fmt"
)

// ErrEmptyCart is returned when slot validation runs against an empty cart.
var ErrEmptyCart = errors.New("cart: no items to book")

// ErrCartNotFound is returned when no stored cart exists for the customer.
var ErrCartNotFound = errors.New("cart: not found")

// IncompleteSlotsError reports how many slots the customer has picked so far.
type IncompleteSlotsError struct {
	Selected int
	Total    int
}

func (e *IncompleteSlotsError) Error() string {
	return fmt.Sprintf("cart: selected %d of %d appointment slots", e.Selected, e.Total)
}
