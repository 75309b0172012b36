package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	activityPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "time_tracker",
		Subsystem: "persistence",
		Name:      "last_activity_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent activity persisted to Postgres.",
	})
	summariesCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "time_tracker",
		Subsystem: "summary",
		Name:      "generated_total",
		Help:      "Count of successful AI summaries.",
	})
	quotaExhaustedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "time_tracker",
		Subsystem: "summary",
		Name:      "quota_exhausted_total",
		Help:      "Count of summary requests rejected for lack of credits.",
	})
)

func init() {
	prometheus.MustRegister(activityPersistGauge, summariesCounter, quotaExhaustedCounter)
}

// RecordActivityPersisted updates the persistence watermark gauge.
func RecordActivityPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	activityPersistGauge.Set(float64(ts.Unix()))
}

// RecordSummaryGenerated counts one successful summarization.
func RecordSummaryGenerated() {
	summariesCounter.Inc()
}

// RecordQuotaExhausted counts one quota rejection.
func RecordQuotaExhausted() {
	quotaExhaustedCounter.Inc()
}
