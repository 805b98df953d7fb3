// Package metrics registers the Prometheus collectors gitval exposes on
// /metrics when the dashboard server runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gitval"

// Skip reasons used as label values.
const (
	ReasonDetail     = "detail"
	ReasonDiff       = "diff"
	ReasonLLM        = "llm"
	ReasonParse      = "parse"
	ReasonValidation = "validation"
)

// Analysis outcomes used as label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeDemo    = "demo"
)

var (
	PullRequestsFetched prometheus.Counter
	PullRequestsSkipped *prometheus.CounterVec
	DevelopersScored    prometheus.Counter
	DevelopersDropped   *prometheus.CounterVec
	LLMRequestDuration  *prometheus.HistogramVec
	Analyses            *prometheus.CounterVec
)

func init() {
	PullRequestsFetched = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pull_requests_fetched_total",
			Help:      "Merged pull requests converted into commit records",
		},
	)
	prometheus.MustRegister(PullRequestsFetched)

	PullRequestsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pull_requests_skipped_total",
			Help:      "Merged pull requests skipped because a per-item request failed",
		},
		[]string{"reason"}, // detail, diff
	)
	prometheus.MustRegister(PullRequestsSkipped)

	DevelopersScored = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "developers_scored_total",
			Help:      "Developer assessments produced",
		},
	)
	prometheus.MustRegister(DevelopersScored)

	DevelopersDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "developers_dropped_total",
			Help:      "Developers dropped from a scoring run",
		},
		[]string{"reason"}, // llm, parse, validation
	)
	prometheus.MustRegister(DevelopersDropped)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Latency of scoring model requests",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"provider"},
	)
	prometheus.MustRegister(LLMRequestDuration)

	Analyses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_total",
			Help:      "Repository analyses by outcome",
		},
		[]string{"outcome"}, // success, failure, demo
	)
	prometheus.MustRegister(Analyses)
}

// ObserveLLM records the duration of one model request started at start.
func ObserveLLM(provider string, start time.Time) {
	LLMRequestDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
}
