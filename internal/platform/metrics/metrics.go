package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the reservation core. All
// methods are nil-safe so services can run without metrics in tests.
type Metrics struct {
	ReservationsCreated *prometheus.CounterVec
	Cancellations       prometheus.Counter
	CascadeCancels      prometheus.Counter
	Rejections          *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		ReservationsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rsvp_reservations_created_total",
			Help: "Reservations created, by attendee type",
		}, []string{"attendee_type"}),

		Cancellations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rsvp_cancellations_total",
			Help: "Reservations cancelled directly by a requester",
		}),

		CascadeCancels: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rsvp_cascade_cancellations_total",
			Help: "Minor reservations cancelled by a guardian cancellation cascade",
		}),

		Rejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rsvp_rejections_total",
			Help: "Rejected submissions and cancellations, by reason",
		}, []string{"reason"}), // reason: capacity, duplicate, past_event, window, validation

		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rsvp_http_request_duration_seconds",
			Help:    "HTTP request latency by method and status",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "status"}),
	}
}

// IncReservationsCreated records n created reservations for one attendee type.
func (m *Metrics) IncReservationsCreated(attendeeType string, n int) {
	if m != nil {
		m.ReservationsCreated.WithLabelValues(attendeeType).Add(float64(n))
	}
}

// IncCancellations records one requester-initiated cancellation.
func (m *Metrics) IncCancellations() {
	if m != nil {
		m.Cancellations.Inc()
	}
}

// AddCascadeCancels records minors swept up by a guardian cancellation.
func (m *Metrics) AddCascadeCancels(n int) {
	if m != nil && n > 0 {
		m.CascadeCancels.Add(float64(n))
	}
}

// IncRejections records one rejected request with its reason.
func (m *Metrics) IncRejections(reason string) {
	if m != nil {
		m.Rejections.WithLabelValues(reason).Inc()
	}
}

// ObserveRequest records one HTTP request's latency.
func (m *Metrics) ObserveRequest(method, status string, d time.Duration) {
	if m != nil {
		m.RequestDuration.WithLabelValues(method, status).Observe(d.Seconds())
	}
}
