// Package metrics provides the prometheus collectors of the wallet.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors registered by New.
type Metrics struct {
	gatherer prometheus.Gatherer

	TransactionsTotal   *prometheus.CounterVec
	TransactionDuration *prometheus.HistogramVec
	ConflictsTotal      *prometheus.CounterVec
	RequestsTotal       *prometheus.CounterVec
	HTTPLatency         *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		TransactionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_transactions_total",
				Help: "Ledger operations by kind and outcome.",
			},
			[]string{"kind", "outcome"},
		),
		TransactionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wallet_transaction_duration_seconds",
				Help:    "Time spent executing a ledger operation, lock wait included.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		ConflictsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_storage_conflicts_total",
				Help: "Units of work retried after a storage conflict.",
			},
			[]string{"kind"},
		),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		HTTPLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_requests_latency_seconds",
				Help:    "Latency of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}

	reg.MustRegister(
		m.TransactionsTotal,
		m.TransactionDuration,
		m.ConflictsTotal,
		m.RequestsTotal,
		m.HTTPLatency,
	)

	return m
}

// ObserveTransaction records the outcome of a ledger operation.
func (m *Metrics) ObserveTransaction(kind, outcome string, elapsed time.Duration) {
	m.TransactionsTotal.WithLabelValues(kind, outcome).Inc()
	m.TransactionDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// ObserveConflict records a retried unit of work.
func (m *Metrics) ObserveConflict(kind string) {
	m.ConflictsTotal.WithLabelValues(kind).Inc()
}

// ObserveRequest records a served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	code := strconv.Itoa(status)

	m.RequestsTotal.WithLabelValues(route, method, code).Inc()
	m.HTTPLatency.WithLabelValues(method, route, code).Observe(elapsed.Seconds())
}

// Handler serves the collected metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
