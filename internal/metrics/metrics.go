package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Data source metrics
	StoreWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskboard_store_writes_total",
			Help: "Writes sent to the data source",
		},
		[]string{"collection", "operation", "result"},
	)

	SnapshotPushesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskboard_snapshot_pushes_total",
			Help: "Full snapshots delivered to live subscribers",
		},
		[]string{"collection"},
	)

	ActiveSubscriptions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "taskboard_active_subscriptions",
			Help: "Open live query subscriptions",
		},
		[]string{"collection"},
	)

	// Deadline notifications
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskboard_deadline_notifications_total",
			Help: "Deadline notifications by outcome",
		},
		[]string{"result"}, // scheduled, duplicate, failed
	)

	// Authentication
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskboard_auth_attempts_total",
			Help: "Authentication attempts",
		},
		[]string{"type", "status"}, // login/register, success/failure code
	)
)

// Result turns an error into a metric label.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
