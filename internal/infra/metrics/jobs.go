package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(jobsProcessedTotal, jobRetriesTotal, jobDurationMs) }

var jobsProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ask_jobs_processed_total",
		Help: "Total number of ask jobs processed, labeled by terminal status.",
	},
	[]string{"status"}, // 'done', 'error'
)

var jobRetriesTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "ask_job_retries_total",
		Help: "Total number of pipeline retry attempts after a failed attempt.",
	},
)

var jobDurationMs = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "ask_job_duration_ms",
		Help:    "Wall-clock duration of a job from dequeue to terminal state.",
		Buckets: []float64{25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
	},
)

func IncJobProcessed(status string) {
	jobsProcessedTotal.WithLabelValues(norm(status)).Inc()
}

func IncJobRetry() { jobRetriesTotal.Inc() }

func ObserveJobDuration(ms int) { jobDurationMs.Observe(float64(ms)) }
