// Package metrics exposes the Prometheus collectors served by serve mode.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests counts serve-mode API requests by route and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "topomq_http_requests_total",
		Help: "Serve-mode API requests by route and status code.",
	}, []string{"route", "status"})

	// BrokerLoads counts topology loads from live brokers.
	BrokerLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "topomq_broker_loads_total",
		Help: "Topology loads from live brokers by outcome.",
	}, []string{"outcome"})

	// Anomalies counts anomalies flagged by check runs, per rule.
	Anomalies = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "topomq_anomalies_total",
		Help: "Anomalies flagged by check runs, per rule.",
	}, []string{"rule"})

	// SyncFailures counts create calls rejected during sync runs.
	SyncFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "topomq_sync_failures_total",
		Help: "Create calls rejected by the target broker during sync runs.",
	})
)

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
