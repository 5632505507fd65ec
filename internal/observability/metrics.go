// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Ranking metrics
	ScoresComputed     prometheus.Counter
	PayoutsCalculated  prometheus.Counter
	LeaderboardQueries prometheus.Counter
	ResolutionsTotal   *prometheus.CounterVec

	// Bridge metrics
	BridgeCallLatency    *prometheus.HistogramVec
	BridgeCallErrors     prometheus.Counter
	TradesSynced         prometheus.Counter
	TradesSkipped        prometheus.Counter
	StreamEventsReceived prometheus.Counter
	StreamReconnects     prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulSync prometheus.Gauge
	UptimeSeconds      prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "traderank"
	}

	return &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status",
		}, []string{"route", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

		// Ranking metrics
		ScoresComputed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ranking",
			Name:      "scores_computed_total",
			Help:      "Total number of trader scores computed",
		}),
		PayoutsCalculated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ranking",
			Name:      "payouts_calculated_total",
			Help:      "Total number of payout eligibility calculations",
		}),
		LeaderboardQueries: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ranking",
			Name:      "leaderboard_queries_total",
			Help:      "Total number of leaderboard queries served",
		}),
		ResolutionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ranking",
			Name:      "resolutions_total",
			Help:      "Total number of data resolutions by winning source",
		}, []string{"source"}),

		// Bridge metrics
		BridgeCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "bridge",
			Name:      "call_latency_seconds",
			Help:      "MT5 bridge call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		BridgeCallErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bridge",
			Name:      "call_errors_total",
			Help:      "Total number of failed MT5 bridge calls",
		}),
		TradesSynced: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bridge",
			Name:      "trades_synced_total",
			Help:      "Total number of closed trades synced from the bridge",
		}),
		TradesSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bridge",
			Name:      "trades_skipped_total",
			Help:      "Total number of invalid bridge trade payloads skipped",
		}),
		StreamEventsReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bridge",
			Name:      "stream_events_received_total",
			Help:      "Total number of trade events received on the stream",
		}),
		StreamReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bridge",
			Name:      "stream_reconnects_total",
			Help:      "Total number of stream reconnection attempts",
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulSync: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_sync_timestamp",
			Help:      "Unix timestamp of last successful bridge sync",
		}),
		UptimeSeconds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "uptime_seconds_total",
			Help:      "Total uptime in seconds",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordScoreComputed increments the scores computed counter.
func RecordScoreComputed() {
	DefaultMetrics.ScoresComputed.Inc()
}

// RecordPayoutCalculated increments the payouts calculated counter.
func RecordPayoutCalculated() {
	DefaultMetrics.PayoutsCalculated.Inc()
}

// RecordLeaderboardQuery increments the leaderboard queries counter.
func RecordLeaderboardQuery() {
	DefaultMetrics.LeaderboardQueries.Inc()
}

// RecordResolution records which source won a data resolution.
func RecordResolution(source string) {
	DefaultMetrics.ResolutionsTotal.WithLabelValues(source).Inc()
}

// RecordBridgeCall records bridge call latency and errors.
func RecordBridgeCall(method string, seconds float64, err error) {
	DefaultMetrics.BridgeCallLatency.WithLabelValues(method).Observe(seconds)
	if err != nil {
		DefaultMetrics.BridgeCallErrors.Inc()
	}
}

// RecordTradesSynced adds to the trades synced counter.
func RecordTradesSynced(n int) {
	DefaultMetrics.TradesSynced.Add(float64(n))
}

// RecordTradeSkipped increments the skipped trade payloads counter.
func RecordTradeSkipped() {
	DefaultMetrics.TradesSkipped.Inc()
}

// RecordStreamEvent increments the stream events received counter.
func RecordStreamEvent() {
	DefaultMetrics.StreamEventsReceived.Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordHTTPRequest records one served HTTP request.
func RecordHTTPRequest(route, status string, seconds float64) {
	DefaultMetrics.HTTPRequestsTotal.WithLabelValues(route, status).Inc()
	DefaultMetrics.HTTPRequestDuration.WithLabelValues(route).Observe(seconds)
}
