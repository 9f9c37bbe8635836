// Package metrics holds the process-wide Prometheus collectors. They are
// registered once on the default registry and served at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsPublished counts committed events by kind.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trustbridge_events_published_total",
		Help: "Committed registry and ledger events by kind",
	}, []string{"kind"})

	EventsPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trustbridge_events_persisted_total",
		Help: "Events written to the event log",
	})

	PendingEvents = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "trustbridge_events_pending",
		Help: "Events waiting in the outbox",
	})

	IndexerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trustbridge_indexer_failures_total",
		Help: "Indexer flush failures by stage",
	}, []string{"stage"}) // stage: "lock", "insert", "project"

	APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trustbridge_api_requests_total",
		Help: "HTTP requests by route and status code",
	}, []string{"route", "code"})

	APIFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trustbridge_api_failures_total",
		Help: "Rejected HTTP requests by route and reason",
	}, []string{"route", "reason"})
)
