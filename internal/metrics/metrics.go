// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/cleared-dev/finreport/internal/apperr"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeNotFound = "not_found"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// Postings counts Post calls by outcome.
var Postings = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "finreport",
	Name:      "postings_total",
	Help:      "Transactions posted, by outcome",
}, []string{"outcome"})

// Reversals counts Reverse calls by outcome.
var Reversals = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "finreport",
	Name:      "reversals_total",
	Help:      "Transactions reversed, by outcome",
}, []string{"outcome"})

// ChartSeeds counts seeding attempts by outcome.
var ChartSeeds = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "finreport",
	Name:      "chart_seeds_total",
	Help:      "Chart-of-accounts seeding attempts, by outcome",
}, []string{"outcome"})

// ReportDuration tracks report build latency.
var ReportDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "finreport",
	Name:      "report_duration_seconds",
	Help:      "Time to build a financial report",
	Buckets:   prometheus.DefBuckets,
}, []string{"report"})

// HTTPRequests counts API requests.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "finreport",
	Name:      "http_requests_total",
	Help:      "HTTP requests, by route pattern, method and status code",
}, []string{"route", "method", "code"})

// HTTPDuration tracks API latency.
var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "finreport",
	Name:      "http_request_duration_seconds",
	Help:      "HTTP request latency, by route pattern",
	Buckets:   prometheus.DefBuckets,
}, []string{"route", "method"})

// ObserveReport records how long a report took since start.
func ObserveReport(report string, start time.Time) {
	ReportDuration.WithLabelValues(report).Observe(time.Since(start).Seconds())
}

// Outcome maps an operation result to an outcome label.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return OutcomeRejected
	case apperr.KindNotFound:
		return OutcomeNotFound
	case apperr.KindConflict:
		return OutcomeConflict
	default:
		return OutcomeError
	}
}
