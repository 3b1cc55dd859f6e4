package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsDispatchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quote_requests_dispatched_total",
		Help: "Total number of quote requests dispatched to suppliers",
	})

	DispatchConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quote_request_dispatch_conflicts_total",
		Help: "Total number of dispatch attempts rejected as already dispatched",
	})

	AssignmentsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "assignments_created_total",
		Help: "Total number of supplier assignments created",
	})

	RoutingLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "routing_latency_seconds",
		Help:    "Latency of scoring and ranking suppliers for a request",
		Buckets: prometheus.DefBuckets,
	})

	OffersSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "offers_submitted_total",
		Help: "Total number of supplier offers created",
	})

	OffersRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "offers_rejected_total",
		Help: "Total number of offer submissions rejected",
	}, []string{"reason"})

	OffersAcceptedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "offers_accepted_total",
		Help: "Total number of offers accepted by restaurants",
	})

	AcceptanceConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "offer_acceptance_conflicts_total",
		Help: "Total number of acceptance attempts losing to an existing acceptance",
	})

	NotificationsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Total number of supplier notifications sent",
	}, []string{"type"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
