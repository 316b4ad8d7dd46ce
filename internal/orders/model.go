// Package orders owns booking orders and their appointment rows.
package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/faraz-lgtm/lsat-booking-platform/internal/cart"
	"github.com/faraz-lgtm/lsat-booking-platform/internal/customer"
)

// Status tracks an order through checkout.
type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusPaid           Status = "paid"
	StatusExpired        Status = "expired"
	StatusCancelled      Status = "cancelled"
)

// AppointmentStatus tracks a single reserved slot.
type AppointmentStatus string

const (
	AppointmentReserved  AppointmentStatus = "reserved"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentReleased  AppointmentStatus = "released"
)

// Order is one checkout submission: the cart snapshot, the customer, and the
// hosted checkout session it produced.
type Order struct {
	ID                   uuid.UUID
	OrgID                string
	CustomerID           string
	Customer             customer.Information
	Items                []cart.Item
	TotalCents           int64
	Status               Status
	CheckoutSessionID    string
	ReservationExpiresAt *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Appointment is one reserved slot belonging to an order. OriginalDateTime
// keeps the first booked time even after reschedules.
type Appointment struct {
	ID               uuid.UUID
	OrderID          uuid.UUID
	OrgID            string
	PackageName      string
	SlotDateTime     time.Time
	OriginalDateTime time.Time
	DurationMinutes  int
	Status           AppointmentStatus
	Rescheduled      bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CreateOrderRequest is the createOrder operation payload.
type CreateOrderRequest struct {
	Items    []cart.Item          `json:"items"`
	Customer customer.Information `json:"user"`
	// SkipSlotReservation defers slot picking to the reschedule flow: the
	// customer pays first and times are chosen through the emailed link.
	SkipSlotReservation      bool `json:"skipSlotReservation,omitempty"`
	ReservationExpiryMinutes int  `json:"reservationExpiryMinutes,omitempty"`
}

// CreateOrderResponse carries the hosted checkout redirect and the
// reschedule link minted for the order.
type CreateOrderResponse struct {
	URL              string `json:"url,omitempty"`
	SessionID        string `json:"sessionId,omitempty"`
	RescheduleURL    string `json:"rescheduleUrl,omitempty"`
	IsRescheduleFlow bool   `json:"isRescheduleFlow,omitempty"`
}
