package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestBookingMetricsObserve(t *testing.T) {
	m := NewBookingMetrics(prometheus.NewRegistry())
	m.ObserveStage("appointments", "rejected")
	m.ObserveOrderCreated(false)
	m.ObserveCheckoutLatency("ok", 0.25)
	m.ObserveRescheduleConfirm("bulk", "failed")
	m.ObserveReservationsSwept(3)
}

func TestBookingMetricsCounterValues(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)
	m.ObserveOrderCreated(true)
	m.ObserveOrderCreated(true)
	m.ObserveOrderCreated(false)

	var metric dto.Metric
	counter, err := m.ordersCreated.GetMetricWithLabelValues("reschedule")
	if err != nil {
		t.Fatalf("get counter: %v", err)
	}
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	if got := metric.GetCounter().GetValue(); got != 2 {
		t.Errorf("expected 2 reschedule-flow orders, got %v", got)
	}
}

func TestBookingMetricsNilSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveStage("payments", "ok")
	m.ObserveOrderCreated(false)
	m.ObserveCheckoutLatency("error", 0.1)
	m.ObserveRescheduleConfirm("single", "ok")
	m.ObserveReservationsSwept(1)
}
