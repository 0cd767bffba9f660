package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/guardedlabs/guarded"
	"github.com/guardedlabs/guarded/lockstat"
)

func TestLockMetrics(t *testing.T) {
	reg := NewRegistry()
	factory := With(reg)
	m := MakeLockMetrics("testservice", factory)

	m.RecordAcquire("cache", lockstat.ModeExclusive, 5*time.Millisecond)
	m.RecordAcquire("cache", lockstat.ModeShared, time.Millisecond)
	m.RecordAcquire("cache", lockstat.ModeShared, time.Millisecond)
	m.RecordSlowAcquire("cache", lockstat.ModeExclusive, 5*time.Millisecond)
	m.RecordHold("cache", 2*time.Millisecond)

	snap := Gather(t, reg)

	exclusive := map[string]string{"lock": "cache", "mode": lockstat.ModeExclusive}
	shared := map[string]string{"lock": "cache", "mode": lockstat.ModeShared}

	require.Equal(t, float64(1), snap.Counter("testservice_lock_acquires_total", exclusive))
	require.Equal(t, float64(2), snap.Counter("testservice_lock_acquires_total", shared))
	require.Equal(t, float64(1), snap.Counter("testservice_lock_slow_acquires_total", exclusive))
	require.False(t, snap.Has("testservice_lock_slow_acquires_total", shared), "no slow shared acquire was recorded")

	require.EqualValues(t, 1, snap.HistogramCount("testservice_lock_acquire_wait_seconds", exclusive))
	require.EqualValues(t, 2, snap.HistogramCount("testservice_lock_acquire_wait_seconds", shared))
	require.EqualValues(t, 1, snap.HistogramCount("testservice_lock_hold_seconds", map[string]string{"lock": "cache"}))
}

func TestLockMetrics_Instrumented(t *testing.T) {
	reg := NewRegistry()
	m := MakeLockMetrics("testservice", With(reg))

	mu := lockstat.New("state", lockstat.WithMetrics(m))
	v := guarded.NewWithLocker(10, mu)
	v.Set(20)
	require.Equal(t, 20, v.Get())

	snap := Gather(t, reg)

	require.Equal(t, float64(1), snap.Counter("testservice_lock_acquires_total",
		map[string]string{"lock": "state", "mode": lockstat.ModeExclusive}))
	require.Equal(t, float64(1), snap.Counter("testservice_lock_acquires_total",
		map[string]string{"lock": "state", "mode": lockstat.ModeShared}))
	require.EqualValues(t, 1, snap.HistogramCount("testservice_lock_hold_seconds",
		map[string]string{"lock": "state"}))
}

func TestNoopLockMetrics(t *testing.T) {
	m := NoopLockMetrics("testservice")
	require.NotPanics(t, func() {
		m.RecordAcquire("cache", lockstat.ModeShared, time.Millisecond)
		m.RecordSlowAcquire("cache", lockstat.ModeShared, time.Millisecond)
		m.RecordHold("cache", time.Millisecond)
	})
}

func TestMetrics_InfoUp(t *testing.T) {
	m := NewMetrics("test")
	m.RecordInfo("v1.2.3")
	m.RecordUp()

	snap := Gather(t, m.Registry())
	require.Equal(t, float64(1), snap.Gauge("guarded_test_info", map[string]string{"version": "v1.2.3"}))
	require.Equal(t, float64(1), snap.Gauge("guarded_test_up", nil))
}
