package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solaradvisor_requests_total",
			Help: "Total number of requests per path",
		},
		[]string{"path"},
	)

	RequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "solaradvisor_request_duration_seconds",
			Help:    "Request duration in seconds per path",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	RequestErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solaradvisor_request_errors_total",
			Help: "Total number of error responses per path and status code",
		},
		[]string{"path", "code"},
	)

	DegradedResultsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "solaradvisor_degraded_results_total",
			Help: "Total number of analyses that produced a null recommendation",
		},
	)
)

var (
	LLMRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solaradvisor_llm_requests_total",
			Help: "Total number of completion calls per provider",
		},
		[]string{"provider"},
	)

	LLMRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "solaradvisor_llm_request_duration_seconds",
			Help:    "Completion call duration in seconds per provider",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	LLMFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solaradvisor_llm_failures_total",
			Help: "Total number of failed completion calls per provider and reason",
		},
		[]string{"provider", "reason"},
	)
)

// ObserveLLMRequest records one completion round-trip.
func ObserveLLMRequest(provider string, startedAt time.Time, err error, reason string) {
	LLMRequestsTotal.WithLabelValues(provider).Inc()
	LLMRequestDurationSeconds.WithLabelValues(provider).Observe(time.Since(startedAt).Seconds())
	if err != nil {
		if reason == "" {
			reason = "error"
		}
		LLMFailuresTotal.WithLabelValues(provider, reason).Inc()
	}
}

var (
	DBPoolTotalConns = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "solaradvisor_db_pool_total_conns",
			Help: "Total number of connections in the DB pool per driver",
		},
		[]string{"driver"},
	)

	DBPoolIdleConns = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "solaradvisor_db_pool_idle_conns",
			Help: "Idle connections in the DB pool per driver",
		},
		[]string{"driver"},
	)

	DBPoolAcquiredConns = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "solaradvisor_db_pool_acquired_conns",
			Help: "Currently acquired (in-use) connections per driver",
		},
		[]string{"driver"},
	)

	DBPoolNewConnsTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "solaradvisor_db_pool_new_conns_total",
			Help: "Cumulative connections opened by the pool per driver",
		},
		[]string{"driver"},
	)
)

// UpdateDBPoolMetrics publishes a pool snapshot. newConns is the pool's
// own cumulative count, so it is set rather than added.
func UpdateDBPoolMetrics(driver string, total, idle, acquired float64, newConns int64) {
	DBPoolTotalConns.WithLabelValues(driver).Set(total)
	DBPoolIdleConns.WithLabelValues(driver).Set(idle)
	DBPoolAcquiredConns.WithLabelValues(driver).Set(acquired)
	DBPoolNewConnsTotal.WithLabelValues(driver).Set(float64(newConns))
}

var (
	ScheduledJobLastRun = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "solaradvisor_job_last_run_timestamp",
			Help: "Unix timestamp of the last completed run for a job",
		},
		[]string{"job"},
	)

	ScheduledJobLastDurationSeconds = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "solaradvisor_job_last_duration_seconds",
			Help: "Duration of the last completed run for a job",
		},
		[]string{"job"},
	)

	ScheduledJobFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solaradvisor_job_failures_total",
			Help: "Total number of failed executions per job",
		},
		[]string{"job"},
	)
)

func UpdateJobMetrics(job string, startedAt time.Time, err error) {
	dur := time.Since(startedAt).Seconds()
	ScheduledJobLastDurationSeconds.WithLabelValues(job).Set(dur)
	ScheduledJobLastRun.WithLabelValues(job).Set(float64(time.Now().Unix()))
	if err != nil {
		ScheduledJobFailuresTotal.WithLabelValues(job).Inc()
	}
}
