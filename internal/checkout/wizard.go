// Package checkout drives the three-stage booking flow: pick appointment
// slots, supply contact information, then open a payment session. The wizard
// validates each stage before letting the customer advance.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/faraz-lgtm/lsat-booking-platform/internal/banner"
	"github.com/faraz-lgtm/lsat-booking-platform/internal/cart"
	"github.com/faraz-lgtm/lsat-booking-platform/internal/customer"
	"github.com/faraz-lgtm/lsat-booking-platform/internal/observability/metrics"
	"github.com/faraz-lgtm/lsat-booking-platform/internal/orders"
	"github.com/faraz-lgtm/lsat-booking-platform/pkg/logging"
)

// Stage is one step of the linear booking flow.
type Stage string

const (
	StageAppointments Stage = "appointments"
	StageInformation  Stage = "information"
	StagePayments     Stage = "payments"
	StageDone         Stage = "done"
)

// ErrStageIncomplete signals that the current stage's validation failed and
// the wizard stayed put. Details are on the banner.
var ErrStageIncomplete = errors.New("checkout: stage incomplete")

// orderCreator is satisfied by *orders.Service.
type orderCreator interface {
	CreateOrder(ctx context.Context, orgID, customerID string, req orders.CreateOrderRequest) (*orders.CreateOrderResponse, error)
}

// Result is what a completed wizard hands back to the caller: the payment
// redirect URL and the order's checkout session.
type Result struct {
	URL           string `json:"url"`
	SessionID     string `json:"sessionId"`
	RescheduleURL string `json:"rescheduleUrl,omitempty"`
	IsReschedule  bool   `json:"isRescheduleFlow"`
}

// Wizard owns one customer's checkout session. The caller feeds it the cart
// and live form state; Advance runs the active stage's action and either
// moves forward or flashes a banner and stays.
type Wizard struct {
	mu    sync.Mutex
	stage Stage

	orgID      string
	customerID string
	items      []cart.Item
	live       customer.Information
	result     *Result

	customers customer.Repository
	orders    orderCreator
	banner    *banner.Presenter
	bannerTTL time.Duration
	metrics   *metrics.BookingMetrics
	logger    *logging.Logger
}

// NewWizard starts a session at the appointments stage. m may be nil.
func NewWizard(orgID, customerID string, customers customer.Repository, creator orderCreator, bannerTTL time.Duration, m *metrics.BookingMetrics, logger *logging.Logger) *Wizard {
	if customers == nil {
		panic("checkout: customer repository required")
	}
	if creator == nil {
		panic("checkout: order creator required")
	}
	if bannerTTL <= 0 {
		bannerTTL = 3 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Wizard{
		stage:      StageAppointments,
		orgID:      orgID,
		customerID: customerID,
		customers:  customers,
		orders:     creator,
		banner:     banner.New(),
		bannerTTL:  bannerTTL,
		metrics:    m,
		logger:     logger,
	}
}

// SetItems replaces the cart snapshot the wizard validates against.
func (w *Wizard) SetItems(items []cart.Item) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.items = items
}

// SetInformation records the live form snapshot. Read at submit time, not on
// keystroke; saved info fills any gaps when the stage runs.
func (w *Wizard) SetInformation(info customer.Information) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.live = info
}

// Advance runs the active stage's primary action. Each stage validates before
// the wizard moves; a failed stage flashes a banner and returns an error
// rather than advancing.
func (w *Wizard) Advance(ctx context.Context) error {
	w.mu.Lock()
	stage := w.stage
	w.mu.Unlock()

	var err error
	switch stage {
	case StageAppointments:
		err = w.advanceAppointments()
	case StageInformation:
		err = w.advanceInformation(ctx)
	case StagePayments:
		err = w.advancePayments(ctx)
	case StageDone:
		return fmt.Errorf("checkout: flow already complete")
	default:
		return fmt.Errorf("checkout: unknown stage %q", stage)
	}

	outcome := "advanced"
	if err != nil {
		outcome = "rejected"
	}
	w.metrics.ObserveStage(string(stage), outcome)
	return err
}

func (w *Wizard) advanceAppointments() error {
	w.mu.Lock()
	items := w.items
	w.mu.Unlock()

	if err := cart.Validate(items); err != nil {
		var incomplete *cart.IncompleteSlotsError
		switch {
		case errors.As(err, &incomplete):
			w.banner.Flash(fmt.Sprintf("Selected %d of %d appointment slots.", incomplete.Selected, incomplete.Total), w.bannerTTL)
		case errors.Is(err, cart.ErrEmptyCart):
			w.banner.Flash("Your cart is empty. Add a package to continue.", w.bannerTTL)
		default:
			w.banner.Flash("Please complete your appointment selection.", w.bannerTTL)
		}
		return fmt.Errorf("%w: %v", ErrStageIncomplete, err)
	}

	w.mu.Lock()
	w.stage = StageInformation
	w.mu.Unlock()
	return nil
}

func (w *Wizard) advanceInformation(ctx context.Context) error {
	w.mu.Lock()
	live := w.live
	w.mu.Unlock()

	var saved customer.Information
	if stored, err := w.customers.Get(ctx, w.orgID, w.customerID); err == nil {
		saved = *stored
	} else if !errors.Is(err, customer.ErrNotFound) {
		w.logger.Error("saved contact lookup failed", "error", err, "customer_id", w.customerID)
	}

	// Either the submitted form or the saved record must stand on its own;
	// stitching a complete contact out of two partial ones is not accepted.
	if !live.Complete() && !saved.Complete() {
		w.banner.Flash("Please fill in your name, email, and phone number.", w.bannerTTL)
		return fmt.Errorf("%w: %v", ErrStageIncomplete, customer.ErrIncomplete)
	}

	merged := customer.Merge(live, saved)

	if err := w.customers.Upsert(ctx, w.orgID, w.customerID, merged); err != nil {
		w.logger.Error("persist contact info failed", "error", err, "customer_id", w.customerID)
		w.banner.Flash("Could not save your information. Please try again.", w.bannerTTL)
		return fmt.Errorf("checkout: persist contact info: %w", err)
	}

	w.mu.Lock()
	w.live = merged
	w.stage = StagePayments
	w.mu.Unlock()
	return nil
}

func (w *Wizard) advancePayments(ctx context.Context) error {
	w.mu.Lock()
	req := orders.CreateOrderRequest{Items: w.items, Customer: w.live}
	w.mu.Unlock()

	resp, err := w.orders.CreateOrder(ctx, w.orgID, w.customerID, req)
	if err != nil {
		w.logger.Error("checkout submission failed", "error", err, "customer_id", w.customerID)
		w.banner.Flash("Checkout failed. Please try again.", w.bannerTTL)
		return fmt.Errorf("checkout: submit order: %w", err)
	}

	w.mu.Lock()
	w.result = &Result{
		URL:           resp.URL,
		SessionID:     resp.SessionID,
		RescheduleURL: resp.RescheduleURL,
		IsReschedule:  resp.IsRescheduleFlow,
	}
	w.stage = StageDone
	w.mu.Unlock()
	return nil
}

// Back steps to the previous stage. It is explicit: there is no skipping, and
// a completed flow cannot be reopened.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.stage {
	case StageInformation:
		w.stage = StageAppointments
	case StagePayments:
		w.stage = StageInformation
	default:
		return fmt.Errorf("checkout: cannot go back from %s", w.stage)
	}
	return nil
}

// Stage returns the active stage.
func (w *Wizard) Stage() Stage {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stage
}

// Result returns the payment redirect once the flow is done.
func (w *Wizard) Result() (*Result, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.result == nil {
		return nil, false
	}
	out := *w.result
	return &out, true
}

// Banner returns the active transient message, if any.
func (w *Wizard) Banner() (string, bool) {
	return w.banner.Current()
}

// Progress reports selected and total slot counts for the current cart.
func (w *Wizard) Progress() (selected, total int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return cart.Progress(w.items)
}

// Close releases the wizard's banner timers.
func (w *Wizard) Close() {
	w.banner.Close()
}
