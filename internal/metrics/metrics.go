package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymmanager_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gymmanager_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	CheckInsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymmanager_checkins_total",
			Help: "Total number of reception check-ins",
		},
		[]string{"result"},
	)

	CheckOutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymmanager_checkouts_total",
			Help: "Total number of reception check-outs",
		},
	)

	StaleVisitsClosedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymmanager_stale_visits_closed_total",
			Help: "Total number of open visits force-closed by the staleness sweep",
		},
	)

	MembershipsPurchasedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymmanager_memberships_purchased_total",
			Help: "Total number of memberships purchased",
		},
		[]string{"type"},
	)

	EnrollmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymmanager_class_enrollments_total",
			Help: "Total number of class enrollments",
		},
		[]string{"result"},
	)

	EnrollmentCancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymmanager_class_enrollment_cancellations_total",
			Help: "Total number of class enrollment cancellations",
		},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymmanager_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gymmanager_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordCheckIn(result string) {
	CheckInsTotal.WithLabelValues(result).Inc()
}

func RecordCheckOut() {
	CheckOutsTotal.Inc()
}

func RecordStaleVisitsClosed(n int) {
	StaleVisitsClosedTotal.Add(float64(n))
}

func RecordMembershipPurchase(membershipType string) {
	MembershipsPurchasedTotal.WithLabelValues(membershipType).Inc()
}

func RecordEnrollment(result string) {
	EnrollmentsTotal.WithLabelValues(result).Inc()
}

func RecordEnrollmentCancellation() {
	EnrollmentCancellationsTotal.Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}
