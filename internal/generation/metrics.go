package generation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	attemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinema_generation_attempts_total",
			Help: "Total number of generation candidate attempts.",
		},
		[]string{"provider", "outcome"},
	)
	attemptDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinema_generation_attempt_duration_seconds",
			Help:    "Histogram of generation candidate attempt durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)
	pollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinema_generation_polls_total",
			Help: "Total number of finished job polling loops by final state.",
		},
		[]string{"provider", "state"},
	)
	pollIterations = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinema_generation_poll_iterations",
			Help:    "Histogram of status requests per polling loop.",
			Buckets: prometheus.LinearBuckets(5, 5, 12), // 5, 10, ..., 60
		},
		[]string{"provider"},
	)
)

func observeAttempt(a Attempt) {
	attemptsTotal.With(prometheus.Labels{"provider": a.Provider, "outcome": string(a.Outcome)}).Inc()
	attemptDuration.With(prometheus.Labels{"provider": a.Provider}).Observe(a.Duration.Seconds())
}
