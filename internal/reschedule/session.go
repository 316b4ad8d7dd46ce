package reschedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/faraz-lgtm/lsat-booking-platform/internal/banner"
	"github.com/faraz-lgtm/lsat-booking-platform/pkg/logging"
)

// slotStore is satisfied by *Store.
type slotStore interface {
	ListByOrder(ctx context.Context, orderID string) ([]AppointmentSlot, error)
	Reschedule(ctx context.Context, orderID, appointmentID string, newDateTime time.Time) error
}

// tokenVerifier is satisfied by *TokenIssuer.
type tokenVerifier interface {
	Verify(token string) (string, error)
}

// Summary is the outcome of a bulk confirmation.
type Summary struct {
	Confirmed int `json:"confirmed"`
	Failed    int `json:"failed"`
}

// Session drives one customer's reschedule flow. All methods are safe for
// concurrent use; per-row IsConfirming flags serialize submissions for a row
// rather than a global lock across remote calls.
type Session struct {
	mu      sync.Mutex
	state   State
	orderID string
	slots   []*AppointmentSlot
	errMsg  string

	store         slotStore
	tokens        tokenVerifier
	maxConcurrent int
	bannerTTL     time.Duration
	banner        *banner.Presenter
	logger        *logging.Logger
}

// NewSession creates a session in the loading state.
func NewSession(store slotStore, tokens tokenVerifier, maxConcurrent int, bannerTTL time.Duration, logger *logging.Logger) *Session {
	if store == nil {
		panic("reschedule: store required")
	}
	if tokens == nil {
		panic("reschedule: token verifier required")
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	if bannerTTL <= 0 {
		bannerTTL = 5 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Session{
		state:         StateLoading,
		store:         store,
		tokens:        tokens,
		maxConcurrent: maxConcurrent,
		bannerTTL:     bannerTTL,
		banner:        banner.New(),
		logger:        logger,
	}
}

// Load verifies the token and fetches the order's appointments. A missing or
// invalid token moves straight to the error state without any fetch.
func (s *Session) Load(ctx context.Context, token string) error {
	s.mu.Lock()
	if s.state != StateLoading {
		s.mu.Unlock()
		return fmt.Errorf("%w: load from %s", ErrBadState, s.state)
	}
	s.mu.Unlock()

	orderID, err := s.tokens.Verify(token)
	if err != nil {
		s.fail(MsgLinkExpired)
		return ErrInvalidToken
	}

	slots, err := s.store.ListByOrder(ctx, orderID)
	if err != nil {
		s.logger.Error("reschedule load failed", "error", err, "order_id", orderID)
		s.fail(MsgLinkExpired)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderID = orderID
	s.slots = make([]*AppointmentSlot, len(slots))
	for i := range slots {
		slot := slots[i]
		s.slots[i] = &slot
	}
	s.state = StateReady
	return nil
}

// Propose records a local edit for one row. The row becomes pending until a
// confirmation succeeds.
func (s *Session) Propose(id string, newDateTime time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return fmt.Errorf("%w: propose in %s", ErrBadState, s.state)
	}
	row := s.find(id)
	if row == nil {
		return ErrAppointmentNotFound
	}
	if row.IsConfirming {
		return ErrRowBusy
	}
	if row.IsRescheduled {
		return fmt.Errorf("%w: already rescheduled", ErrBadState)
	}
	t := newDateTime.UTC()
	row.NewDateTime = &t
	row.HasChanged = true
	return nil
}

// ConfirmOne submits a single row's change. A row with no local edit is a
// no-op: no remote call is issued.
func (s *Session) ConfirmOne(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return fmt.Errorf("%w: confirm in %s", ErrBadState, s.state)
	}
	row := s.find(id)
	if row == nil {
		s.mu.Unlock()
		return ErrAppointmentNotFound
	}
	if !row.HasChanged || row.IsRescheduled {
		s.mu.Unlock()
		return nil
	}
	if row.IsConfirming {
		s.mu.Unlock()
		return ErrRowBusy
	}
	row.IsConfirming = true
	newDT := *row.NewDateTime
	orderID := s.orderID
	s.mu.Unlock()

	err := s.store.Reschedule(ctx, orderID, id, newDT)

	s.mu.Lock()
	defer s.mu.Unlock()
	row.IsConfirming = false
	if err != nil {
		s.logger.Error("reschedule confirm failed", "error", err, "appointment_id", id)
		s.banner.Flash("Could not reschedule this appointment. Please try again.", s.bannerTTL)
		return err
	}
	row.IsRescheduled = true
	row.SlotDateTime = newDT
	return nil
}

// ConfirmAll submits every pending row. Requests run concurrently under the
// session's concurrency cap and all are waited for; failed rows stay pending
// and retryable while the rest are frozen as rescheduled. Any failure returns
// the session to ready with an aggregate banner; a clean sweep is terminal
// success.
func (s *Session) ConfirmAll(ctx context.Context) (Summary, error) {
	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return Summary{}, fmt.Errorf("%w: confirm all in %s", ErrBadState, s.state)
	}

	type change struct {
		id  string
		dt  time.Time
		row *AppointmentSlot
	}
	var changes []change
	for _, row := range s.slots {
		if row.Pending() && !row.IsConfirming {
			row.IsConfirming = true
			changes = append(changes, change{id: row.ID, dt: *row.NewDateTime, row: row})
		}
	}
	if len(changes) == 0 {
		s.mu.Unlock()
		return Summary{}, nil
	}
	s.state = StateConfirming
	orderID := s.orderID
	s.mu.Unlock()

	// Fan out with a semaphore; no ordering guarantee between rows.
	sem := make(chan struct{}, s.maxConcurrent)
	errs := make([]error, len(changes))
	var wg sync.WaitGroup
	for i, ch := range changes {
		wg.Add(1)
		go func(i int, ch change) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			errs[i] = s.store.Reschedule(ctx, orderID, ch.id, ch.dt)
		}(i, ch)
	}
	wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	var summary Summary
	for i, ch := range changes {
		ch.row.IsConfirming = false
		if errs[i] != nil {
			s.logger.Error("bulk reschedule row failed", "error", errs[i], "appointment_id", ch.id)
			summary.Failed++
			continue
		}
		ch.row.IsRescheduled = true
		ch.row.SlotDateTime = ch.dt
		summary.Confirmed++
	}

	if summary.Failed > 0 {
		s.state = StateReady
		s.banner.Flash(fmt.Sprintf("%d appointment(s) could not be rescheduled.", summary.Failed), s.bannerTTL)
		return summary, nil
	}
	s.state = StateSuccess
	return summary, nil
}

// Footer returns the primary action the page should offer and the pending
// count backing a "Confirm All (N)" label.
func (s *Session) Footer() (FooterAction, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := 0
	completed := 0
	for _, row := range s.slots {
		if row.Pending() {
			pending++
		}
		if row.IsRescheduled {
			completed++
		}
	}
	switch {
	case pending > 0:
		return FooterConfirmAll, pending
	case len(s.slots) > 0 && completed == len(s.slots):
		return FooterDone, 0
	default:
		return FooterDisabled, 0
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ErrorMessage returns the terminal error message, if any.
func (s *Session) ErrorMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Banner returns the active transient message, if any.
func (s *Session) Banner() (string, bool) {
	return s.banner.Current()
}

// Slots returns a copy of the current rows.
func (s *Session) Slots() []AppointmentSlot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AppointmentSlot, len(s.slots))
	for i, row := range s.slots {
		out[i] = *row
	}
	return out
}

// Close releases the session's banner timers.
func (s *Session) Close() {
	s.banner.Close()
}

func (s *Session) fail(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateError
	s.errMsg = msg
}

// find assumes s.mu is held.
func (s *Session) find(id string) *AppointmentSlot {
	for _, row := range s.slots {
		if row.ID == id {
			return row
		}
	}
	return nil
}
