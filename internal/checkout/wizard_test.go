package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faraz-lgtm/lsat-booking-platform/internal/cart"
	"github.com/faraz-lgtm/lsat-booking-platform/internal/customer"
	"github.com/faraz-lgtm/lsat-booking-platform/internal/observability/metrics"
	"github.com/faraz-lgtm/lsat-booking-platform/internal/orders"
	"github.com/faraz-lgtm/lsat-booking-platform/pkg/logging"
)

type fakeCreator struct {
	resp    *orders.CreateOrderResponse
	err     error
	calls   int
	lastReq orders.CreateOrderRequest
}

func (f *fakeCreator) CreateOrder(_ context.Context, _, _ string, req orders.CreateOrderRequest) (*orders.CreateOrderResponse, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func packageWithSlots(sessions, picked int) cart.Item {
	item := cart.Item{
		ID:         "pkg-1",
		Name:       "LSAT Tutoring Package",
		PriceCents: 120000,
		Quantity:   1,
		Sessions:   sessions,
		DateTime:   make([]*time.Time, sessions),
	}
	for i := 0; i < picked; i++ {
		t := time.Date(2026, 9, 1+i, 9, 0, 0, 0, time.UTC)
		item.DateTime[i] = &t
	}
	return item
}

func completeInfo() customer.Information {
	return customer.Information{
		FirstName: "Alice",
		LastName:  "Nguyen",
		Email:     "alice@example.com",
		Phone:     "+15550001111",
	}
}

func newWizard(t *testing.T, creator *fakeCreator, repo customer.Repository) *Wizard {
	t.Helper()
	if repo == nil {
		repo = customer.NewInMemoryRepository()
	}
	w := NewWizard("org-1", "cust-1", repo, creator, 50*time.Millisecond, nil, logging.Default())
	t.Cleanup(w.Close)
	return w
}

func TestWizardStartsAtAppointments(t *testing.T) {
	w := newWizard(t, &fakeCreator{}, nil)
	assert.Equal(t, StageAppointments, w.Stage())
}

func TestAppointmentsStageRejectsIncompleteSlots(t *testing.T) {
	w := newWizard(t, &fakeCreator{}, nil)
	w.SetItems([]cart.Item{packageWithSlots(4, 2)})

	err := w.Advance(context.Background())

	assert.ErrorIs(t, err, ErrStageIncomplete)
	assert.Equal(t, StageAppointments, w.Stage())

	msg, ok := w.Banner()
	require.True(t, ok)
	assert.Equal(t, "Selected 2 of 4 appointment slots.", msg)
}

func TestAppointmentsStageRejectsEmptyCart(t *testing.T) {
	w := newWizard(t, &fakeCreator{}, nil)

	err := w.Advance(context.Background())

	assert.ErrorIs(t, err, ErrStageIncomplete)
	assert.Equal(t, StageAppointments, w.Stage())
	_, ok := w.Banner()
	assert.True(t, ok)
}

func TestAppointmentsBannerAutoDismisses(t *testing.T) {
	w := newWizard(t, &fakeCreator{}, nil)
	w.SetItems([]cart.Item{packageWithSlots(4, 2)})

	require.Error(t, w.Advance(context.Background()))
	_, ok := w.Banner()
	require.True(t, ok)

	time.Sleep(120 * time.Millisecond)
	_, ok = w.Banner()
	assert.False(t, ok, "banner clears after its ttl")
}

func TestAppointmentsStageAdvancesWhenComplete(t *testing.T) {
	w := newWizard(t, &fakeCreator{}, nil)
	w.SetItems([]cart.Item{packageWithSlots(3, 3)})

	require.NoError(t, w.Advance(context.Background()))
	assert.Equal(t, StageInformation, w.Stage())
}

func TestInformationStageFallsBackToSavedInfo(t *testing.T) {
	repo := customer.NewInMemoryRepository()
	require.NoError(t, repo.Upsert(context.Background(), "org-1", "cust-1", completeInfo()))

	w := newWizard(t, &fakeCreator{}, repo)
	w.SetItems([]cart.Item{packageWithSlots(2, 2)})
	require.NoError(t, w.Advance(context.Background()))

	// Empty live form; the persisted record satisfies the stage.
	require.NoError(t, w.Advance(context.Background()))
	assert.Equal(t, StagePayments, w.Stage())
}

func TestInformationStageLiveFieldsWin(t *testing.T) {
	repo := customer.NewInMemoryRepository()
	require.NoError(t, repo.Upsert(context.Background(), "org-1", "cust-1", completeInfo()))

	w := newWizard(t, &fakeCreator{}, repo)
	w.SetItems([]cart.Item{packageWithSlots(2, 2)})
	require.NoError(t, w.Advance(context.Background()))

	w.SetInformation(customer.Information{Email: "new@example.com"})
	require.NoError(t, w.Advance(context.Background()))

	stored, err := repo.Get(context.Background(), "org-1", "cust-1")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", stored.Email)
	assert.Equal(t, "Alice", stored.FirstName, "untouched fields come from the saved record")
}

func TestInformationStageRejectsIncomplete(t *testing.T) {
	w := newWizard(t, &fakeCreator{}, nil)
	w.SetItems([]cart.Item{packageWithSlots(2, 2)})
	require.NoError(t, w.Advance(context.Background()))

	w.SetInformation(customer.Information{FirstName: "Alice"})
	err := w.Advance(context.Background())

	assert.ErrorIs(t, err, ErrStageIncomplete)
	assert.Equal(t, StageInformation, w.Stage())
	_, ok := w.Banner()
	assert.True(t, ok)
}

func TestInformationStageRejectsPartialRecordsEvenWhenUnionIsComplete(t *testing.T) {
	repo := customer.NewInMemoryRepository()
	require.NoError(t, repo.Upsert(context.Background(), "org-1", "cust-1", customer.Information{
		LastName: "Nguyen",
		Email:    "alice@example.com",
		Phone:    "+15550001111",
	}))

	w := newWizard(t, &fakeCreator{}, repo)
	w.SetItems([]cart.Item{packageWithSlots(2, 2)})
	require.NoError(t, w.Advance(context.Background()))

	// Live form and saved record are each missing fields; their union covers
	// all four, which is not enough to pass the stage.
	w.SetInformation(customer.Information{FirstName: "Alice"})
	err := w.Advance(context.Background())

	assert.ErrorIs(t, err, ErrStageIncomplete)
	assert.Equal(t, StageInformation, w.Stage())
	msg, ok := w.Banner()
	require.True(t, ok)
	assert.Equal(t, "Please fill in your name, email, and phone number.", msg)
}

func TestAdvanceRecordsStageOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewBookingMetrics(reg)
	w := NewWizard("org-1", "cust-1", customer.NewInMemoryRepository(), &fakeCreator{}, 50*time.Millisecond, m, logging.Default())
	t.Cleanup(w.Close)

	require.Error(t, w.Advance(context.Background()), "empty cart is rejected")
	w.SetItems([]cart.Item{packageWithSlots(2, 2)})
	require.NoError(t, w.Advance(context.Background()))

	counts := map[string]float64{}
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "lsatprep_checkout_stage_outcomes_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			var stage, outcome string
			for _, label := range metric.GetLabel() {
				switch label.GetName() {
				case "stage":
					stage = label.GetValue()
				case "outcome":
					outcome = label.GetValue()
				}
			}
			counts[stage+"/"+outcome] = metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 1.0, counts["appointments/rejected"])
	assert.Equal(t, 1.0, counts["appointments/advanced"])
}

func TestPaymentsStageSurfacesCheckoutFailure(t *testing.T) {
	creator := &fakeCreator{err: errors.New("payment backend unavailable")}
	w := newWizard(t, creator, nil)
	w.SetItems([]cart.Item{packageWithSlots(2, 2)})
	w.SetInformation(completeInfo())
	require.NoError(t, w.Advance(context.Background()))
	require.NoError(t, w.Advance(context.Background()))

	err := w.Advance(context.Background())

	require.Error(t, err)
	assert.Equal(t, StagePayments, w.Stage(), "failed checkout does not complete the flow")
	msg, ok := w.Banner()
	require.True(t, ok)
	assert.Equal(t, "Checkout failed. Please try again.", msg)
	_, done := w.Result()
	assert.False(t, done)
}

func TestFullFlowEndsWithRedirect(t *testing.T) {
	creator := &fakeCreator{resp: &orders.CreateOrderResponse{
		URL:           "https://pay.example.com/s/abc",
		SessionID:     "cs_123",
		RescheduleURL: "https://book.example.com/reschedule?token=tok",
	}}
	w := newWizard(t, creator, nil)
	w.SetItems([]cart.Item{packageWithSlots(2, 2)})
	w.SetInformation(completeInfo())

	for i := 0; i < 3; i++ {
		require.NoError(t, w.Advance(context.Background()))
	}

	assert.Equal(t, StageDone, w.Stage())
	result, ok := w.Result()
	require.True(t, ok)
	assert.Equal(t, "https://pay.example.com/s/abc", result.URL)
	assert.Equal(t, "cs_123", result.SessionID)

	require.Equal(t, 1, creator.calls)
	assert.Equal(t, "alice@example.com", creator.lastReq.Customer.Email)
	require.Len(t, creator.lastReq.Items, 1)

	// Done is terminal.
	assert.Error(t, w.Advance(context.Background()))
}

func TestBackNavigation(t *testing.T) {
	w := newWizard(t, &fakeCreator{}, nil)
	w.SetItems([]cart.Item{packageWithSlots(2, 2)})
	w.SetInformation(completeInfo())

	assert.Error(t, w.Back(), "nothing before the first stage")

	require.NoError(t, w.Advance(context.Background()))
	require.NoError(t, w.Advance(context.Background()))
	require.NoError(t, w.Back())
	assert.Equal(t, StageInformation, w.Stage())
	require.NoError(t, w.Back())
	assert.Equal(t, StageAppointments, w.Stage())
}

func TestProgressCounts(t *testing.T) {
	w := newWizard(t, &fakeCreator{}, nil)
	w.SetItems([]cart.Item{packageWithSlots(4, 1), packageWithSlots(2, 2)})

	selected, total := w.Progress()
	assert.Equal(t, 3, selected)
	assert.Equal(t, 6, total)
}
