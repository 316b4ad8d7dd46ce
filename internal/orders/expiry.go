package orders

import (
	"context"
	"time"

	"github.com/faraz-lgtm/lsat-booking-platform/internal/observability/metrics"
	"github.com/faraz-lgtm/lsat-booking-platform/pkg/logging"
)

// reservationExpirer is satisfied by *Store.
type reservationExpirer interface {
	ExpireReservations(ctx context.Context, asOf time.Time) (int64, error)
}

// ExpiryWorker releases slot holds for unpaid orders on an interval.
type ExpiryWorker struct {
	store    reservationExpirer
	interval time.Duration
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
}

// NewExpiryWorker creates a reservation expiry worker. m may be nil.
func NewExpiryWorker(store reservationExpirer, interval time.Duration, m *metrics.BookingMetrics, logger *logging.Logger) *ExpiryWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ExpiryWorker{store: store, interval: interval, metrics: m, logger: logger}
}

// Run sweeps until ctx is cancelled.
func (w *ExpiryWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.Sweep(ctx); err != nil {
				w.logger.Error("reservation sweep failed", "error", err)
			}
		}
	}
}

// Sweep expires overdue reservations once and returns how many orders lapsed.
func (w *ExpiryWorker) Sweep(ctx context.Context) (int64, error) {
	expired, err := w.store.ExpireReservations(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		w.metrics.ObserveReservationsSwept(int(expired))
		w.logger.Info("released expired slot reservations", "orders", expired)
	}
	return expired, nil
}
