package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking and
// availability flows.
type BookingMetrics struct {
	bookingsTotal   *prometheus.CounterVec
	eventsPublished *prometheus.CounterVec
	scanLatency     *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dentalcal",
			Subsystem: "bookings",
			Name:      "total",
			Help:      "Booking attempts by outcome",
		}, []string{"status"}),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dentalcal",
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Calendar events pushed to subscribers",
		}, []string{"type"}),
		scanLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dentalcal",
			Subsystem: "availability",
			Name:      "scan_seconds",
			Help:      "Latency of slot-availability scans",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.eventsPublished, m.scanLatency)
	return m
}

func (m *BookingMetrics) ObserveBooking(status string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(status).Inc()
}

func (m *BookingMetrics) ObserveEventPublished(eventType string) {
	if m == nil {
		return
	}
	m.eventsPublished.WithLabelValues(eventType).Inc()
}

func (m *BookingMetrics) ObserveScanLatency(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.scanLatency.WithLabelValues(operation).Observe(seconds)
}
