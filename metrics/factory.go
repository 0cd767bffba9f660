// Package metrics provides the Prometheus wiring shared by the
// binaries in this repo: a registry/factory pair, lock instrumentation
// metrics, and a metrics HTTP server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Factory creates metrics that are registered on construction.
type Factory interface {
	NewCounter(opts prometheus.CounterOpts) prometheus.Counter
	NewCounterVec(opts prometheus.CounterOpts, labelNames []string) *prometheus.CounterVec
	NewGauge(opts prometheus.GaugeOpts) prometheus.Gauge
	NewGaugeVec(opts prometheus.GaugeOpts, labelNames []string) *prometheus.GaugeVec
	NewHistogram(opts prometheus.HistogramOpts) prometheus.Histogram
	NewHistogramVec(opts prometheus.HistogramOpts, labelNames []string) *prometheus.HistogramVec
}

type promFactory struct {
	factory promauto.Factory
}

// With returns a Factory registering every created metric with registry.
func With(registry *prometheus.Registry) Factory {
	return &promFactory{factory: promauto.With(registry)}
}

func (f *promFactory) NewCounter(opts prometheus.CounterOpts) prometheus.Counter {
	return f.factory.NewCounter(opts)
}

func (f *promFactory) NewCounterVec(opts prometheus.CounterOpts, labelNames []string) *prometheus.CounterVec {
	return f.factory.NewCounterVec(opts, labelNames)
}

func (f *promFactory) NewGauge(opts prometheus.GaugeOpts) prometheus.Gauge {
	return f.factory.NewGauge(opts)
}

func (f *promFactory) NewGaugeVec(opts prometheus.GaugeOpts, labelNames []string) *prometheus.GaugeVec {
	return f.factory.NewGaugeVec(opts, labelNames)
}

func (f *promFactory) NewHistogram(opts prometheus.HistogramOpts) prometheus.Histogram {
	return f.factory.NewHistogram(opts)
}

func (f *promFactory) NewHistogramVec(opts prometheus.HistogramOpts, labelNames []string) *prometheus.HistogramVec {
	return f.factory.NewHistogramVec(opts, labelNames)
}

// NewRegistry returns a registry with the standard process and Go
// runtime collectors pre-registered.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewGoCollector())
	return registry
}
