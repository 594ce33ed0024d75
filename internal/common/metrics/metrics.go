// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
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

	RegistrationStepAdvanced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_step_advanced_total",
			Help: "Registration step transitions persisted, by target step",
		},
		[]string{"step"},
	)

	RegistrationCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "registration_completed_total",
			Help: "Onboarding flows that reached the terminal step",
		},
	)

	MatchCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_cache_requests_total",
			Help: "Match-opportunity cache lookups, by result",
		},
		[]string{"result"},
	)
)
