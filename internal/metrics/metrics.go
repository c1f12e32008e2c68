// Package metrics instruments the notes client with prometheus collectors.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "notes"

// Metrics groups the client's collectors.
type Metrics struct {
	Requests       *prometheus.CounterVec
	RequestLatency *prometheus.HistogramVec
	Flushes        *prometheus.CounterVec
	PendingEdits   *prometheus.GaugeVec
	LoadedNotes    prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Requests sent to the notes API by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		RequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of requests to the notes API.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		Flushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flushes_total",
			Help:      "Edit flush attempts by result.",
		}, []string{"result"}),
		PendingEdits: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_edits",
			Help:      "Edits buffered locally and not yet confirmed.",
		}, []string{"kind"}),
		LoadedNotes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "loaded_notes",
			Help:      "Notes currently held in the list.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Requests, m.RequestLatency, m.Flushes, m.PendingEdits, m.LoadedNotes)
	}
	return m
}

// ObserveRequest records one finished API request.
func (m *Metrics) ObserveRequest(endpoint, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(endpoint, outcome).Inc()
	m.RequestLatency.WithLabelValues(endpoint).Observe(d.Seconds())
}

// ObserveFlush records a flush result ("ok", "error").
func (m *Metrics) ObserveFlush(result string) {
	if m == nil {
		return
	}
	m.Flushes.WithLabelValues(result).Inc()
}

// SetPending publishes the sizes of both edit buffers.
func (m *Metrics) SetPending(checks, positions int) {
	if m == nil {
		return
	}
	m.PendingEdits.WithLabelValues("check").Set(float64(checks))
	m.PendingEdits.WithLabelValues("position").Set(float64(positions))
}

// SetLoaded publishes the length of the loaded sequence.
func (m *Metrics) SetLoaded(n int) {
	if m == nil {
		return
	}
	m.LoadedNotes.Set(float64(n))
}

// Serve exposes g on addr under /metrics until ctx is done.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Serving metrics", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
