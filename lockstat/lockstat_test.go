package lockstat

import (
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/require"

	"github.com/guardedlabs/guarded"
	"github.com/guardedlabs/guarded/testlog"
)

func TestRWMutex_GuardsValue(t *testing.T) {
	v := guarded.NewWithLocker(10, New("test"))
	require.Equal(t, 10, v.Get())
	v.Set(20)
	require.Equal(t, 20, v.Get())

	acc := v.Lock()
	acc.Set(30)
	acc.Release()
	require.Equal(t, 30, v.Get())

	r := v.RLock()
	require.Equal(t, 30, r.Get())
	r.Release()
}

func TestRWMutex_Stats(t *testing.T) {
	mu := New("stats")
	mu.RLock()
	mu.RUnlock()
	mu.RLock()
	mu.RUnlock()
	mu.Lock()
	time.Sleep(2 * time.Millisecond)
	mu.Unlock()

	s := mu.Stats()
	require.Equal(t, "stats", s.Lock)
	require.Equal(t, "stats", mu.Name())
	require.EqualValues(t, 2, s.SharedAcquires)
	require.EqualValues(t, 1, s.ExclusiveAcquires)
	require.EqualValues(t, 0, s.SlowAcquires, "no threshold configured")
	require.GreaterOrEqual(t, s.HoldTotal, 2*time.Millisecond)
	require.Equal(t, s.HoldTotal, s.MaxHold, "single hold, max equals total")
	require.GreaterOrEqual(t, s.ExclusiveWait, time.Duration(0))
}

func TestRWMutex_SlowAcquireWarning(t *testing.T) {
	logger, capt := testlog.CaptureLogger(t, log.LevelInfo)
	mu := New("hot", WithLogger(logger), WithSlowThreshold(time.Millisecond))

	mu.Lock()
	ready := make(chan struct{})
	blocked := make(chan struct{})
	go func() {
		defer close(blocked)
		close(ready)
		mu.RLock()
		mu.RUnlock()
	}()
	<-ready
	// hold long enough for the blocked reader to cross the threshold
	time.Sleep(20 * time.Millisecond)
	mu.Unlock()
	<-blocked

	rec := capt.FindLog(
		testlog.NewMessageFilter("slow lock acquire"),
		testlog.NewAttributesFilter("lock", "hot"),
		testlog.NewAttributesFilter("mode", ModeShared),
	)
	require.NotNil(t, rec)
	require.Equal(t, log.LevelWarn, rec.Level)

	s := mu.Stats()
	require.EqualValues(t, 1, s.SlowAcquires)
	require.GreaterOrEqual(t, s.MaxSharedWait, time.Millisecond)
	require.GreaterOrEqual(t, s.SharedWait, s.MaxSharedWait)
}

type recordingMetricer struct {
	mu       sync.Mutex
	acquires map[string]int
	slow     int
	holds    int
}

func newRecordingMetricer() *recordingMetricer {
	return &recordingMetricer{acquires: make(map[string]int)}
}

func (r *recordingMetricer) RecordAcquire(lock, mode string, wait time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.acquires[lock+"/"+mode]++
}

func (r *recordingMetricer) RecordSlowAcquire(lock, mode string, wait time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slow++
}

func (r *recordingMetricer) RecordHold(lock string, held time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.holds++
}

func TestRWMutex_Metricer(t *testing.T) {
	m := newRecordingMetricer()
	mu := New("obs", WithMetrics(m))

	mu.RLock()
	mu.RUnlock()
	mu.RLock()
	mu.RUnlock()
	mu.Lock()
	mu.Unlock()

	require.Equal(t, 2, m.acquires["obs/shared"])
	require.Equal(t, 1, m.acquires["obs/exclusive"])
	require.Equal(t, 1, m.holds)
	require.Equal(t, 0, m.slow)
}
