// Package metrics exposes pipeline counters in Prometheus format.
package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline collectors on a private registry.
type Metrics struct {
	InFlight atomic.Int64

	analyses   *prometheus.CounterVec
	duration   prometheus.Histogram
	peppers    prometheus.Counter
	rejections *prometheus.CounterVec
	strategies *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates a Metrics instance with its collectors registered.
func New() *Metrics {
	m := &Metrics{
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pepper_analyses_total",
			Help: "Images analyzed, by outcome",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pepper_analysis_duration_seconds",
			Help:    "Time to analyze one image",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		peppers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pepper_validated_total",
			Help: "Peppers that passed validation",
		}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pepper_rejections_total",
			Help: "Candidates dropped, by stage",
		}, []string{"stage"}),
		strategies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pepper_strategy_used_total",
			Help: "Mask and quality strategies that produced a result",
		}, []string{"kind", "strategy"}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(m.analyses, m.duration, m.peppers, m.rejections, m.strategies)
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "pepper_analyses_in_flight",
			Help: "Analyses currently running",
		},
		func() float64 { return float64(m.InFlight.Load()) },
	))
	return m
}

// AnalysisStarted marks one analysis as running.
func (m *Metrics) AnalysisStarted() {
	m.InFlight.Add(1)
}

// AnalysisDone records the outcome of one analysis.
func (m *Metrics) AnalysisDone(d time.Duration, peppers int, err error) {
	m.InFlight.Add(-1)
	m.duration.Observe(d.Seconds())
	m.peppers.Add(float64(peppers))
	m.analyses.WithLabelValues(outcome(err)).Inc()
}

// CandidateRejected counts a dropped candidate.
func (m *Metrics) CandidateRejected(stage string) {
	m.rejections.WithLabelValues(stage).Inc()
}

// StrategyUsed counts the strategy that produced a mask or quality result.
func (m *Metrics) StrategyUsed(kind, name string) {
	m.strategies.WithLabelValues(kind, name).Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartServer serves /metrics on addr until the listener fails.
func (m *Metrics) StartServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	err := (&http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}).ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
