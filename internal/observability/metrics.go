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
	// Simulation metrics
	SimulationsTotal    *prometheus.CounterVec
	SimulationDuration  *prometheus.HistogramVec
	StochasticFallbacks prometheus.Counter
	ReportCacheHits     *prometheus.CounterVec
	GoalPlansTotal      *prometheus.CounterVec

	// Batch refresh metrics
	RefreshRunsTotal  *prometheus.CounterVec
	RefreshDuration   prometheus.Histogram
	UsersRefreshed    prometheus.Counter
	LastRefreshResult prometheus.Gauge

	// Ingestion metrics
	RowsImported *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulRefresh prometheus.Gauge
	UptimeSeconds         prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "robo_advisor_lab"
	}

	return &Metrics{
		// Simulation metrics
		SimulationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "runs_total",
			Help:      "Total number of simulation runs by source and status",
		}, []string{"source", "status"}),
		SimulationDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "duration_seconds",
			Help:      "Simulation duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"source"}),
		StochasticFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "stochastic_fallbacks_total",
			Help:      "Total number of historical runs that fell back to a stochastic projection",
		}),
		ReportCacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "report_cache_hits_total",
			Help:      "Total number of runs served from a stored report",
		}, []string{"source"}),
		GoalPlansTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "goal",
			Name:      "plans_total",
			Help:      "Total number of goal plans built by type",
		}, []string{"goal_type"}),

		// Batch refresh metrics
		RefreshRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "runs_total",
			Help:      "Total number of batch refresh runs by status",
		}, []string{"status"}),
		RefreshDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "duration_seconds",
			Help:      "Batch refresh duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		UsersRefreshed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "users_total",
			Help:      "Total number of users simulated by batch refresh",
		}),
		LastRefreshResult: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "last_failed_users",
			Help:      "Number of users that failed in the last batch refresh",
		}),

		// Ingestion metrics
		RowsImported: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "rows_imported_total",
			Help:      "Total number of rows imported by table",
		}, []string{"table"}),

		// HTTP metrics
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

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
		LastSuccessfulRefresh: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_refresh_timestamp",
			Help:      "Unix timestamp of last successful batch refresh",
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

// RecordSimulation records a finished simulation run.
func RecordSimulation(source, status string, durationSeconds float64) {
	DefaultMetrics.SimulationsTotal.WithLabelValues(source, status).Inc()
	DefaultMetrics.SimulationDuration.WithLabelValues(source).Observe(durationSeconds)
}

// RecordStochasticFallback increments the fallback counter.
func RecordStochasticFallback() {
	DefaultMetrics.StochasticFallbacks.Inc()
}

// RecordReportCacheHit increments the cache hit counter for source.
func RecordReportCacheHit(source string) {
	DefaultMetrics.ReportCacheHits.WithLabelValues(source).Inc()
}

// RecordGoalPlan increments the goal plan counter.
func RecordGoalPlan(goalType string) {
	DefaultMetrics.GoalPlansTotal.WithLabelValues(goalType).Inc()
}

// RecordRefreshRun records a batch refresh run.
func RecordRefreshRun(status string, users, failed int, durationSeconds float64) {
	DefaultMetrics.RefreshRunsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.RefreshDuration.Observe(durationSeconds)
	DefaultMetrics.UsersRefreshed.Add(float64(users))
	DefaultMetrics.LastRefreshResult.Set(float64(failed))
}

// RecordRowsImported adds n imported rows for table.
func RecordRowsImported(table string, n int) {
	DefaultMetrics.RowsImported.WithLabelValues(table).Add(float64(n))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(route, code string, durationSeconds float64) {
	DefaultMetrics.HTTPRequestsTotal.WithLabelValues(route, code).Inc()
	DefaultMetrics.HTTPRequestDuration.WithLabelValues(route).Observe(durationSeconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
