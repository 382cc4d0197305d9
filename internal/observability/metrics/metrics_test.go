package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveBooking(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveBooking("created")
	m.ObserveBooking("created")
	m.ObserveBooking("slot_taken")

	if got := testutil.ToFloat64(m.bookingsTotal.WithLabelValues("created")); got != 2 {
		t.Fatalf("expected 2 created bookings, got %v", got)
	}
	if got := testutil.ToFloat64(m.bookingsTotal.WithLabelValues("slot_taken")); got != 1 {
		t.Fatalf("expected 1 slot_taken booking, got %v", got)
	}
}

func TestObserveEventPublished(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveEventPublished("appointmentCreated")
	if got := testutil.ToFloat64(m.eventsPublished.WithLabelValues("appointmentCreated")); got != 1 {
		t.Fatalf("expected 1 published event, got %v", got)
	}
}

func TestNilReceiverSafe(t *testing.T) {
	var m *BookingMetrics
	// Must not panic.
	m.ObserveBooking("created")
	m.ObserveEventPublished("appointmentDeleted")
	m.ObserveScanLatency("next_available", 0.01)
}
