package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const Namespace = "guarded"

// Metrics is the process-level metric set: version/up bookkeeping plus
// the lock instrumentation metrics.
type Metrics struct {
	ns       string
	registry *prometheus.Registry
	factory  Factory

	*LockMetrics

	info prometheus.GaugeVec
	up   prometheus.Gauge
}

func NewMetrics(procName string) *Metrics {
	if procName == "" {
		procName = "default"
	}
	ns := Namespace + "_" + procName

	registry := NewRegistry()
	factory := With(registry)

	return &Metrics{
		ns:       ns,
		registry: registry,
		factory:  factory,

		LockMetrics: MakeLockMetrics(ns, factory),

		info: *factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "info",
			Help:      "Pseudo-metric tracking version and config info",
		}, []string{
			"version",
		}),
		up: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "up",
			Help:      "1 if the process has finished starting up",
		}),
	}
}

// RecordInfo sets a pseudo-metric that contains the version of the
// running process.
func (m *Metrics) RecordInfo(version string) {
	m.info.WithLabelValues(version).Set(1)
}

// RecordUp sets the up metric to 1.
func (m *Metrics) RecordUp() {
	m.up.Set(1)
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
