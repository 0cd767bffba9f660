package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/guardedlabs/guarded/lockstat"
)

// LockMetrics tracks lock acquisitions, waits and hold times.
// It implements lockstat.Metricer so it can be plugged into an
// instrumented lock directly.
type LockMetrics struct {
	AcquiresTotal     *prometheus.CounterVec
	SlowAcquiresTotal *prometheus.CounterVec
	AcquireWait       *prometheus.HistogramVec
	Hold              *prometheus.HistogramVec
}

var _ lockstat.Metricer = (*LockMetrics)(nil)

func MakeLockMetrics(ns string, factory Factory) *LockMetrics {
	return &LockMetrics{
		AcquiresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "lock_acquires_total",
			Help:      "Number of completed lock acquisitions",
		}, []string{
			"lock",
			"mode",
		}),
		SlowAcquiresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "lock_slow_acquires_total",
			Help:      "Number of lock acquisitions that waited longer than the slow threshold",
		}, []string{
			"lock",
			"mode",
		}),
		AcquireWait: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "lock_acquire_wait_seconds",
			Help:      "Time spent waiting to acquire the lock",
			Buckets:   prometheus.ExponentialBuckets(0.000001, 10, 8),
		}, []string{
			"lock",
			"mode",
		}),
		Hold: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "lock_hold_seconds",
			Help:      "Time the lock was held exclusively",
			Buckets:   prometheus.ExponentialBuckets(0.000001, 10, 8),
		}, []string{
			"lock",
		}),
	}
}

// NoopLockMetrics are backed by a registry that is never exposed,
// for defaults and tests that do not inspect metrics.
func NoopLockMetrics(ns string) *LockMetrics {
	return MakeLockMetrics(ns, With(prometheus.NewRegistry()))
}

func (m *LockMetrics) RecordAcquire(lock, mode string, wait time.Duration) {
	m.AcquiresTotal.WithLabelValues(lock, mode).Inc()
	m.AcquireWait.WithLabelValues(lock, mode).Observe(wait.Seconds())
}

func (m *LockMetrics) RecordSlowAcquire(lock, mode string, wait time.Duration) {
	m.SlowAcquiresTotal.WithLabelValues(lock, mode).Inc()
}

func (m *LockMetrics) RecordHold(lock string, held time.Duration) {
	m.Hold.WithLabelValues(lock).Observe(held.Seconds())
}
