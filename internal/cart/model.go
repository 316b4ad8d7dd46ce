// Package cart models purchased prep packages and their appointment slots.
package cart

import (
	"time"
)

// Item is one purchasable package in the cart. DateTime carries one entry per
// bookable slot: Sessions × Quantity entries in total, nil until the customer
// picks a date. Slot index i belongs to package i / SlotsPerPackage().
type Item struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	PriceCents int64        `json:"price"`
	Quantity   int          `json:"quantity"`
	Sessions   int          `json:"sessions"`
	// DurationMinutes is the length of one session, carried through to the
	// appointment rows created at checkout.
	DurationMinutes int          `json:"duration,omitempty"`
	DateTime        []*time.Time `json:"DateTime"`
}

// Cart is the per-customer selection persisted between visits.
type Cart struct {
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SlotTotal returns how many slots the item requires.
func (it Item) SlotTotal() int {
	if it.Sessions <= 0 || it.Quantity <= 0 {
		return 0
	}
	return it.Sessions * it.Quantity
}

// SlotsPerPackage returns ceil(len(DateTime)/Quantity). The last package may
// own fewer slots when the division is not exact; that remainder is accepted,
// not rebalanced.
func (it Item) SlotsPerPackage() int {
	if it.Quantity <= 0 || len(it.DateTime) == 0 {
		return 0
	}
	return (len(it.DateTime) + it.Quantity - 1) / it.Quantity
}

// PackageForSlot maps a slot index to its package index.
func (it Item) PackageForSlot(slot int) int {
	spp := it.SlotsPerPackage()
	if spp == 0 {
		return 0
	}
	return slot / spp
}

// Complete reports whether every required slot has a picked date.
func (it Item) Complete() bool {
	if len(it.DateTime) != it.SlotTotal() {
		return false
	}
	for _, dt := range it.DateTime {
		if dt == nil {
			return false
		}
	}
	return true
}

// Progress counts picked vs required slots across all items, for the
// "Selected N of M" banner.
func Progress(items []Item) (selected, total int) {
	for _, it := range items {
		total += it.SlotTotal()
		for _, dt := range it.DateTime {
			if dt != nil {
				selected++
			}
		}
	}
	return selected, total
}

// Validate checks that the cart can proceed past slot selection. An empty
// cart is rejected outright rather than passing vacuously.
func Validate(items []Item) error {
	if len(items) == 0 {
		return ErrEmptyCart
	}
	for _, it := range items {
		if !it.Complete() {
			selected, total := Progress(items)
			return &IncompleteSlotsError{Selected: selected, Total: total}
		}
	}
	return nil
}

// TotalCents projects items, quantities, and prices into an order total.
func TotalCents(items []Item) int64 {
	var total int64
	for _, it := range items {
		total += it.PriceCents * int64(it.Quantity)
	}
	return total
}
