package lockstat

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/require"

	"github.com/guardedlabs/guarded/testlog"
)

func TestReporter(t *testing.T) {
	logger, capt := testlog.CaptureLogger(t, log.LevelInfo)
	mu := New("reported")
	mu.Lock()
	mu.Unlock()

	r := NewReporter(logger, 5*time.Millisecond, mu)
	r.Start()
	r.Start() // duplicate start is ignored

	// let a few ticks pass, then stop before reading the capture
	time.Sleep(50 * time.Millisecond)
	r.Stop()
	r.Stop() // duplicate stop is ignored

	rec := capt.FindLog(
		testlog.NewMessageFilter("lock stats"),
		testlog.NewAttributesFilter("lock", "reported"),
	)
	require.NotNil(t, rec)
	require.EqualValues(t, 1, rec.AttrValue("exclusive_acquires"))
	require.EqualValues(t, 0, rec.AttrValue("slow_acquires"))

	// the reporter was stopped, no further reports come in
	n := len(capt.FindLogs(testlog.NewMessageFilter("lock stats")))
	time.Sleep(15 * time.Millisecond)
	require.Len(t, capt.FindLogs(testlog.NewMessageFilter("lock stats")), n)
}

func TestReporter_DirectReport(t *testing.T) {
	logger, capt := testlog.CaptureLogger(t, log.LevelInfo)
	a := New("a")
	b := New("b")
	a.RLock()
	a.RUnlock()

	r := NewReporter(logger, time.Hour, a, b)
	r.Report()

	require.NotNil(t, capt.FindLog(
		testlog.NewMessageFilter("lock stats"),
		testlog.NewAttributesFilter("lock", "a"),
	))
	require.NotNil(t, capt.FindLog(
		testlog.NewMessageFilter("lock stats"),
		testlog.NewAttributesFilter("lock", "b"),
	))
}

func TestReporter_StopWithoutStart(t *testing.T) {
	r := NewReporter(log.Root(), time.Second)
	r.Stop() // no-op
}
