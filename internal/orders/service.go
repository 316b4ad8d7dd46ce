package orders

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/faraz-lgtm/lsat-booking-platform/internal/cart"
	"github.com/faraz-lgtm/lsat-booking-platform/internal/observability/metrics"
	"github.com/faraz-lgtm/lsat-booking-platform/internal/payments"
	"github.com/faraz-lgtm/lsat-booking-platform/pkg/logging"
)

var ordersTracer = otel.Tracer("lsatprep.internal.orders")

const defaultSessionMinutes = 60

// orderStore persists orders; satisfied by *Store.
type orderStore interface {
	Create(ctx context.Context, o *Order, appts []Appointment) error
}

// checkoutCreator opens hosted checkout sessions; satisfied by
// *payments.CheckoutClient.
type checkoutCreator interface {
	CreateSession(ctx context.Context, params payments.CheckoutParams) (*payments.CheckoutSession, error)
}

// tokenMinter issues reschedule link tokens; satisfied by *reschedule.TokenIssuer.
type tokenMinter interface {
	Mint(orderID string) (string, error)
}

// notifier delivers the reschedule link to the customer. Failures are logged
// and never fail the order.
type notifier interface {
	OrderCreated(ctx context.Context, o *Order, rescheduleURL string) error
}

// Service implements the createOrder operation.
type Service struct {
	store         orderStore
	checkout      checkoutCreator
	tokens        tokenMinter
	notify        notifier
	publicBaseURL string
	defaultExpiry int
	metrics       *metrics.BookingMetrics
	logger        *logging.Logger
}

// NewService constructs an orders service. tokens, notify, and m are optional.
func NewService(store orderStore, checkout checkoutCreator, tokens tokenMinter, notify notifier, publicBaseURL string, defaultExpiryMinutes int, m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if store == nil {
		panic("orders: store required")
	}
	if checkout == nil {
		panic("orders: checkout client required")
	}
	if defaultExpiryMinutes <= 0 {
		defaultExpiryMinutes = 30
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:         store,
		checkout:      checkout,
		tokens:        tokens,
		notify:        notify,
		publicBaseURL: publicBaseURL,
		defaultExpiry: defaultExpiryMinutes,
		metrics:       m,
		logger:        logger,
	}
}

// CreateOrder validates the cart and customer, persists the order with its
// reserved appointment slots, and opens a hosted checkout session. The
// returned URL ends the booking flow client-side with a hard redirect.
func (s *Service) CreateOrder(ctx context.Context, orgID, customerID string, req CreateOrderRequest) (*CreateOrderResponse, error) {
	ctx, span := ordersTracer.Start(ctx, "orders.create")
	defer span.End()
	span.SetAttributes(
		attribute.String("lsatprep.org_id", orgID),
		attribute.Int("lsatprep.item_count", len(req.Items)),
	)

	if req.SkipSlotReservation {
		// Slot picking happens later through the reschedule link; only a
		// non-empty cart is required here.
		if len(req.Items) == 0 {
			return nil, cart.ErrEmptyCart
		}
	} else if err := cart.Validate(req.Items); err != nil {
		return nil, err
	}
	if !req.Customer.Complete() {
		return nil, ErrMissingCustomer
	}

	o := &Order{
		OrgID:      orgID,
		CustomerID: customerID,
		Customer:   req.Customer,
		Items:      req.Items,
		TotalCents: cart.TotalCents(req.Items),
		Status:     StatusPendingPayment,
	}
	if !req.SkipSlotReservation {
		expiry := req.ReservationExpiryMinutes
		if expiry <= 0 {
			expiry = s.defaultExpiry
		}
		deadline := time.Now().UTC().Add(time.Duration(expiry) * time.Minute)
		o.ReservationExpiresAt = &deadline
	}

	appts := buildAppointments(req.Items)
	if err := s.store.Create(ctx, o, appts); err != nil {
		span.RecordError(err)
		return nil, err
	}

	checkoutStart := time.Now()
	session, err := s.checkout.CreateSession(ctx, payments.CheckoutParams{
		OrgID:         orgID,
		OrderID:       o.ID.String(),
		CustomerEmail: req.Customer.Email,
		LineItems:     lineItems(req.Items),
	})
	if err != nil {
		s.metrics.ObserveCheckoutLatency("error", time.Since(checkoutStart).Seconds())
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %v", ErrCheckoutFailed, err)
	}
	s.metrics.ObserveCheckoutLatency("ok", time.Since(checkoutStart).Seconds())
	o.CheckoutSessionID = session.SessionID

	resp := &CreateOrderResponse{
		URL:              session.URL,
		SessionID:        session.SessionID,
		IsRescheduleFlow: req.SkipSlotReservation,
	}

	if s.tokens != nil {
		token, err := s.tokens.Mint(o.ID.String())
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("orders: mint reschedule token: %w", err)
		}
		resp.RescheduleURL = s.publicBaseURL + "/reschedule?token=" + url.QueryEscape(token)
	}

	if s.notify != nil && resp.RescheduleURL != "" {
		if err := s.notify.OrderCreated(ctx, o, resp.RescheduleURL); err != nil {
			s.logger.Error("order notification failed", "error", err, "order_id", o.ID)
		}
	}

	s.logger.Info("order created",
		"org_id", orgID,
		"order_id", o.ID,
		"total_cents", o.TotalCents,
		"appointments", len(appts),
		"reschedule_flow", resp.IsRescheduleFlow,
	)
	return resp, nil
}

// buildAppointments creates one row per picked slot, labelled with the
// item's package index.
func buildAppointments(items []cart.Item) []Appointment {
	var appts []Appointment
	for _, it := range items {
		duration := it.DurationMinutes
		if duration <= 0 {
			duration = defaultSessionMinutes
		}
		for slot, dt := range it.DateTime {
			if dt == nil {
				continue
			}
			name := it.Name
			if it.Quantity > 1 {
				name = fmt.Sprintf("%s #%d", it.Name, it.PackageForSlot(slot)+1)
			}
			appts = append(appts, Appointment{
				PackageName:      name,
				SlotDateTime:     dt.UTC(),
				OriginalDateTime: dt.UTC(),
				DurationMinutes:  duration,
				Status:           AppointmentReserved,
			})
		}
	}
	return appts
}

func lineItems(items []cart.Item) []payments.LineItem {
	out := make([]payments.LineItem, 0, len(items))
	for _, it := range items {
		out = append(out, payments.LineItem{
			Name:        it.Name,
			AmountCents: it.PriceCents,
			Quantity:    it.Quantity,
		})
	}
	return out
}
