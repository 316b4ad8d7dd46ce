package cart

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ts(h int) *time.Time {
	t := time.Date(2026, 9, 1, h, 0, 0, 0, time.UTC)
	return &t
}

func completeItem(id string, quantity, sessions int) Item {
	it := Item{
		ID:         id,
		Name:       "LSAT Tutoring Package",
		PriceCents: 25000,
		Quantity:   quantity,
		Sessions:   sessions,
	}
	for i := 0; i < quantity*sessions; i++ {
		it.DateTime = append(it.DateTime, ts(9+i))
	}
	return it
}

func TestValidateAllSlotsPicked(t *testing.T) {
	items := []Item{completeItem("pkg-1", 2, 2), completeItem("pkg-2", 1, 3)}

	assert.NoError(t, Validate(items))
}

func TestValidateReportsExactCounts(t *testing.T) {
	it := completeItem("pkg-1", 2, 2)
	it.DateTime[1] = nil
	it.DateTime[3] = nil

	err := Validate([]Item{it})

	var incomplete *IncompleteSlotsError
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected IncompleteSlotsError, got %v", err)
	}
	assert.Equal(t, 2, incomplete.Selected)
	assert.Equal(t, 4, incomplete.Total)
}

func TestValidateMissingDateTimeArray(t *testing.T) {
	it := Item{ID: "pkg-1", Quantity: 1, Sessions: 2}

	err := Validate([]Item{it})

	var incomplete *IncompleteSlotsError
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected IncompleteSlotsError, got %v", err)
	}
	assert.Equal(t, 0, incomplete.Selected)
	assert.Equal(t, 2, incomplete.Total)
}

// An empty cart used to pass validation vacuously (every() over an empty
// collection is true). It is now an explicit precondition failure.
func TestValidateEmptyCartRejected(t *testing.T) {
	assert.ErrorIs(t, Validate(nil), ErrEmptyCart)
	assert.ErrorIs(t, Validate([]Item{}), ErrEmptyCart)
}

func TestSlotsPerPackageUnevenSplit(t *testing.T) {
	it := Item{Quantity: 2, DateTime: make([]*time.Time, 5)}

	assert.Equal(t, 3, it.SlotsPerPackage())

	// Package 0 owns slots 0..2, package 1 owns the remaining two.
	for slot, want := range []int{0, 0, 0, 1, 1} {
		assert.Equal(t, want, it.PackageForSlot(slot), "slot %d", slot)
	}
}

func TestSlotsPerPackageExactSplit(t *testing.T) {
	it := Item{Quantity: 2, DateTime: make([]*time.Time, 4)}

	assert.Equal(t, 2, it.SlotsPerPackage())
	assert.Equal(t, 1, it.PackageForSlot(3))
}

func TestProgress(t *testing.T) {
	a := completeItem("a", 1, 2)
	b := completeItem("b", 2, 2)
	b.DateTime[0] = nil

	selected, total := Progress([]Item{a, b})
	assert.Equal(t, 5, selected)
	assert.Equal(t, 6, total)
}

func TestTotalCents(t *testing.T) {
	items := []Item{
		{PriceCents: 25000, Quantity: 2},
		{PriceCents: 10000, Quantity: 1},
	}

	assert.Equal(t, int64(60000), TotalCents(items))
}
