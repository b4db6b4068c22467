// Package metrics instruments the API client and bulk actions, and serves the
// results for the lifetime of a command.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tatipharma/pharmabi/internal/logging"
)

const namespace = "pharmabi"

var (
	apiRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "A counter of requests sent to the backend.",
	}, []string{"code", "method"})

	apiRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "A histogram of duration, in seconds, of requests sent to the backend.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"method"})

	bulkItems = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bulk_items_total",
		Help:      "A counter of items processed by bulk actions.",
	}, []string{"action", "outcome"})
)

// Bulk item outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// NewRegistry returns a registry with the client metrics and the standard
// process and go metrics.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(apiRequests, apiRequestDuration, bulkItems)
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reg.MustRegister(collectors.NewGoCollector())
	return reg
}

// InstrumentTransport wraps next so that every request is counted and timed.
// A nil next uses http.DefaultTransport.
func InstrumentTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return promhttp.InstrumentRoundTripperCounter(apiRequests,
		promhttp.InstrumentRoundTripperDuration(apiRequestDuration, next))
}

// ObserveBulkItem records the outcome of one item of a bulk action.
func ObserveBulkItem(action, outcome string) {
	bulkItems.WithLabelValues(action, outcome).Inc()
}

// NewHandler returns a handler serving 'GET /metrics' from promRegistry.
func NewHandler(promRegistry *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.InstrumentMetricHandler(
		promRegistry,
		promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})))
	return mux
}

// Serve serves the metrics handler on addr until ctx is cancelled. The
// listener is bound before Serve returns, so a bad address is reported to
// the caller.
func Serve(ctx context.Context, addr string, promRegistry *prometheus.Registry) (net.Addr, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Handler:           NewHandler(promRegistry),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Warnf("metrics server: %v", err)
		}
	}()

	logging.Debugf("serving metrics on %s", l.Addr())
	return l.Addr(), nil
}
