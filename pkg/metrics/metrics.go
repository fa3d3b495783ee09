// Package metrics exposes the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "partsbot"

var (
	BrowserSessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "browser_sessions_active",
		Help:      "Browser contexts currently open.",
	})
	BrowserSessionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "browser_sessions_total",
		Help:      "Browser contexts opened since start.",
	})
	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "portal_logins_total",
		Help:      "Fresh portal logins by result.",
	}, []string{"result"})
	ConfirmationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_confirmations_total",
		Help:      "Finished stock confirmations by mode.",
	}, []string{"mode"})
	ConfirmationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "stock_confirmation_duration_seconds",
		Help:      "Time spent resolving a stock confirmation.",
		Buckets:   []float64{1, 5, 15, 30, 60, 300, 900, 1800, 3600, 10800},
	}, []string{"mode"})
	ConfirmationsCoalesced = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_confirmations_coalesced_total",
		Help:      "Confirmation requests served by an in-flight poll for the same code.",
	})
	OrdersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_total",
		Help:      "Purchase attempts by status.",
	}, []string{"status"})
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "status"})
)

// ObserveConfirmation records a finished confirmation.
func ObserveConfirmation(mode string, elapsed time.Duration) {
	ConfirmationsTotal.WithLabelValues(mode).Inc()
	ConfirmationDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
