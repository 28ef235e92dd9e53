// Package metrics holds the Prometheus collectors for ledger operations.
package metrics

import (
	"time"

	"github.com/chris/fairtask-ledger/pkg/ruleerr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fairtask_operations_total",
			Help: "Total number of engine and admin operations by outcome",
		},
		[]string{"operation", "result"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fairtask_operation_duration_seconds",
			Help:    "Duration of engine and admin operations",
			Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	creditedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fairtask_credited_usd_total",
			Help: "USD credited to user wallets by transaction type",
		},
		[]string{"type"},
	)

	scheduleErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fairtask_schedule_errors_total",
			Help: "Total number of hold releases that could not be enqueued",
		},
	)
)

// Result labels an outcome: "ok", the rejection kind, or "error" for faults.
func Result(err error) string {
	if err == nil {
		return "ok"
	}
	if kind, ok := ruleerr.KindOf(err); ok {
		return string(kind)
	}
	return "error"
}

// Observe records one operation that started at start.
func Observe(operation string, start time.Time, err error) {
	operationsTotal.WithLabelValues(operation, Result(err)).Inc()
	operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// Credited records money added to a wallet.
func Credited(txType string, amount decimal.Decimal) {
	creditedTotal.WithLabelValues(txType).Add(amount.InexactFloat64())
}

// ScheduleFailed records a release that was committed but not enqueued.
func ScheduleFailed() {
	scheduleErrors.Inc()
}
