// Package metrics exposes Prometheus instruments for the ledger.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation results.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultNotFound = "not_found"
	// ResultUnavailable marks mutations refused because a collection could not be read.
	ResultUnavailable = "unavailable"
)

var LedgerOperations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "savingsjars",
	Subsystem: "ledger",
	Name:      "operations_total",
	Help:      "Ledger store operations by name and result.",
}, []string{"operation", "result"})

var StorageFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "savingsjars",
	Subsystem: "storage",
	Name:      "failures_total",
	Help:      "Key-value reads and writes that failed and were degraded.",
}, []string{"op"})

var SafeBalance = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "savingsjars",
	Name:      "safe_balance",
	Help:      "Current safe balance in minor currency units.",
})

// ObserveOperation counts one ledger operation.
func ObserveOperation(operation, result string) {
	LedgerOperations.WithLabelValues(operation, result).Inc()
}

var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "savingsjars",
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "HTTP requests by route pattern, method and status code.",
}, []string{"route", "method", "code"})
