// internal/common/metrics/metrics.go
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	InvocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_invocations_total",
			Help: "Total number of blog generation invocations by outcome and status code",
		},
		[]string{"trigger", "outcome", "status_code"},
	)

	InvocationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "blog_invocation_duration_seconds",
			Help:    "Duration of blog generation invocations in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"trigger", "outcome"},
	)

	InvocationsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "blog_invocations_active",
			Help: "Number of invocations currently in flight",
		},
		[]string{"trigger"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsDuplicate = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_duplicate_total",
			Help: "Jobs skipped because another delivery already claimed them",
		},
		[]string{"task_type"},
	)
)

// Recorder exports invocation outcomes to Prometheus under a trigger label.
type Recorder struct {
	trigger string
}

func NewRecorder(trigger string) *Recorder {
	return &Recorder{trigger: trigger}
}

// Track marks an invocation in flight and returns the func that ends it.
func (r *Recorder) Track() func() {
	g := InvocationsActive.WithLabelValues(r.trigger)
	g.Inc()
	return g.Dec
}

func (r *Recorder) ObserveInvocation(_ context.Context, outcome string, statusCode int, duration time.Duration) {
	InvocationsTotal.WithLabelValues(r.trigger, outcome, strconv.Itoa(statusCode)).Inc()
	InvocationDuration.WithLabelValues(r.trigger, outcome).Observe(duration.Seconds())
}
