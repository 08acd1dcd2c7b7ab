// Package metrics holds the Prometheus instruments for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. A nil *Metrics is
// valid and records nothing, so services work without wiring in tests.
type Metrics struct {
	ProposalsCreated    prometheus.Counter
	ProposalsSubmitted  prometheus.Counter
	ProposalsReviewed   *prometheus.CounterVec
	ActivitiesApproved  prometheus.Counter
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ProposalsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sams_proposals_created_total",
			Help: "Total number of proposals created",
		}),
		ProposalsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sams_proposals_submitted_total",
			Help: "Total number of proposals submitted for review",
		}),
		ProposalsReviewed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sams_proposals_reviewed_total",
			Help: "Total number of proposal reviews by outcome",
		}, []string{"outcome"}),
		ActivitiesApproved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sams_activities_approved_total",
			Help: "Total number of student activities approved",
		}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sams_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status code",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

func (m *Metrics) IncProposalsCreated() {
	if m != nil {
		m.ProposalsCreated.Inc()
	}
}

func (m *Metrics) IncProposalsSubmitted() {
	if m != nil {
		m.ProposalsSubmitted.Inc()
	}
}

func (m *Metrics) IncProposalsReviewed(outcome string) {
	if m != nil {
		m.ProposalsReviewed.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncActivitiesApproved() {
	if m != nil {
		m.ActivitiesApproved.Inc()
	}
}

func (m *Metrics) ObserveHTTPRequest(route, status string, seconds float64) {
	if m != nil {
		m.HTTPRequestDuration.WithLabelValues(route, status).Observe(seconds)
	}
}
