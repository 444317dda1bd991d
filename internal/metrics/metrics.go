package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "couchage",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	reservations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "couchage",
			Name:      "reservations_total",
			Help:      "Successful reservations.",
		},
	)

	conflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "couchage",
			Name:      "reservation_conflicts_total",
			Help:      "Reservations rejected because the slot was taken.",
		},
	)

	cancellations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "couchage",
			Name:      "cancellations_total",
			Help:      "Successful cancellations.",
		},
	)

	malformedRows = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "couchage",
			Name:      "malformed_rows_total",
			Help:      "Stored booking rows skipped because they did not parse.",
		},
	)

	syncTasks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "couchage",
			Name:      "sheet_sync_tasks_total",
			Help:      "Sheet sync tasks by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, reservations, conflicts, cancellations, malformedRows, syncTasks)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncReservation() { reservations.Inc() }

func IncConflict() { conflicts.Inc() }

func IncCancellation() { cancellations.Inc() }

func IncMalformedRow() { malformedRows.Inc() }

// IncSyncTask records a sheet sync task outcome ("completed", "retry", "failed").
func IncSyncTask(outcome string) {
	syncTasks.WithLabelValues(outcome).Inc()
}
