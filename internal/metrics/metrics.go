package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "kestrel",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kestrel",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kestrel",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	logins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kestrel",
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Total number of login attempts.",
		},
		[]string{"outcome"},
	)

	registrations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "kestrel",
			Subsystem: "auth",
			Name:      "registrations_total",
			Help:      "Total number of completed registrations.",
		},
	)

	sessionsRevoked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kestrel",
			Subsystem: "sessions",
			Name:      "revoked_total",
			Help:      "Total number of sessions revoked.",
		},
		[]string{"reason"},
	)

	sessionsPurged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "kestrel",
			Subsystem: "sessions",
			Name:      "purged_total",
			Help:      "Total number of expired sessions removed by the purge job.",
		},
	)

	eventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kestrel",
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Total number of events published to Redis streams.",
		},
		[]string{"stream", "type"},
	)

	notificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kestrel",
			Subsystem: "notifier",
			Name:      "messages_total",
			Help:      "Total number of notification messages dispatched.",
		},
		[]string{"channel", "outcome"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		logins,
		registrations,
		sessionsRevoked,
		sessionsPurged,
		eventsPublished,
		notificationsSent,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one handled HTTP request. path should be the route
// template, not the raw URL, to keep cardinality bounded.
func ObserveRequest(method, path string, status int, duration time.Duration) {
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// IncInFlight marks the start of an HTTP request.
func IncInFlight() {
	httpInFlight.Inc()
}

// DecInFlight marks the end of an HTTP request.
func DecInFlight() {
	httpInFlight.Dec()
}

// RecordLogin records a login attempt.
func RecordLogin(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	logins.WithLabelValues(outcome).Inc()
}

// RecordRegistration records a completed registration.
func RecordRegistration() {
	registrations.Inc()
}

// RecordSessionsRevoked records count session revocations for one reason.
func RecordSessionsRevoked(reason string, count int64) {
	if reason == "" {
		reason = "unknown"
	}
	if count > 0 {
		sessionsRevoked.WithLabelValues(reason).Add(float64(count))
	}
}

// RecordSessionsPurged records how many expired sessions a purge run removed.
func RecordSessionsPurged(count int64) {
	if count > 0 {
		sessionsPurged.Add(float64(count))
	}
}

// RecordEventPublished records a successfully published stream event.
func RecordEventPublished(stream, eventType string) {
	eventsPublished.WithLabelValues(stream, eventType).Inc()
}

// RecordNotification records a dispatched notification message.
func RecordNotification(channel string, err error) {
	outcome := "sent"
	if err != nil {
		outcome = "failed"
	}
	notificationsSent.WithLabelValues(channel, outcome).Inc()
}
