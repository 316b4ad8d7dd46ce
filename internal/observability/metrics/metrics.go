package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the checkout and reschedule
// flows.
type BookingMetrics struct {
	stageOutcomes      *prometheus.CounterVec
	ordersCreated      *prometheus.CounterVec
	checkoutLatency    *prometheus.HistogramVec
	rescheduleConfirms *prometheus.CounterVec
	reservationsSwept  prometheus.Counter
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		stageOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lsatprep",
			Subsystem: "checkout",
			Name:      "stage_outcomes_total",
			Help:      "Checkout wizard stage advances by outcome",
		}, []string{"stage", "outcome"}),
		ordersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lsatprep",
			Subsystem: "orders",
			Name:      "created_total",
			Help:      "Orders created by flow",
		}, []string{"flow"}),
		checkoutLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lsatprep",
			Subsystem: "payments",
			Name:      "checkout_session_latency_seconds",
			Help:      "Latency of opening a payment checkout session",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		rescheduleConfirms: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lsatprep",
			Subsystem: "reschedule",
			Name:      "confirms_total",
			Help:      "Reschedule confirmation attempts by mode and outcome",
		}, []string{"mode", "outcome"}),
		reservationsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lsatprep",
			Subsystem: "orders",
			Name:      "reservations_expired_total",
			Help:      "Slot reservations released by the expiry sweeper",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.stageOutcomes, m.ordersCreated, m.checkoutLatency, m.rescheduleConfirms, m.reservationsSwept)
	return m
}

func (m *BookingMetrics) ObserveStage(stage, outcome string) {
	if m == nil {
		return
	}
	m.stageOutcomes.WithLabelValues(stage, outcome).Inc()
}

func (m *BookingMetrics) ObserveOrderCreated(rescheduleFlow bool) {
	if m == nil {
		return
	}
	flow := "standard"
	if rescheduleFlow {
		flow = "reschedule"
	}
	m.ordersCreated.WithLabelValues(flow).Inc()
}

func (m *BookingMetrics) ObserveCheckoutLatency(status string, seconds float64) {
	if m == nil {
		return
	}
	m.checkoutLatency.WithLabelValues(status).Observe(seconds)
}

func (m *BookingMetrics) ObserveRescheduleConfirm(mode, outcome string) {
	if m == nil {
		return
	}
	m.rescheduleConfirms.WithLabelValues(mode, outcome).Inc()
}

func (m *BookingMetrics) ObserveReservationsSwept(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.reservationsSwept.Add(float64(n))
}
