// Package lockstat provides an instrumented reader/writer lock.
//
// RWMutex wraps a sync.RWMutex and measures how long acquisitions wait
// and how long the exclusive side is held. Waits above a configurable
// threshold are logged and counted. RWMutex implements guarded.RWLocker,
// so it plugs into guarded.NewWithLocker unchanged.
//
// Instrumentation only observes. Blocking behavior and fairness are
// those of the wrapped sync.RWMutex.
package lockstat

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/guardedlabs/guarded"
)

var _ guarded.RWLocker = (*RWMutex)(nil)

// Mode labels used in log records, stats and metrics.
const (
	ModeShared    = "shared"
	ModeExclusive = "exclusive"
)

// Metricer records lock events. metrics.LockMetrics implements it;
// NoopMetrics is the default.
type Metricer interface {
	RecordAcquire(lock, mode string, wait time.Duration)
	RecordSlowAcquire(lock, mode string, wait time.Duration)
	RecordHold(lock string, held time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) RecordAcquire(string, string, time.Duration)     {}
func (noopMetrics) RecordSlowAcquire(string, string, time.Duration) {}
func (noopMetrics) RecordHold(string, time.Duration)                {}

// NoopMetrics is a Metricer that records nothing.
var NoopMetrics Metricer = noopMetrics{}

type config struct {
	logger        log.Logger
	slowThreshold time.Duration
	metrics       Metricer
}

func (c *config) ApplyOptions(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Option is a general RWMutex config option.
type Option func(cfg *config)

// WithLogger sets the logger receiving slow-acquire warnings.
// Defaults to log.Root().
func WithLogger(logger log.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithSlowThreshold enables slow-acquire warnings and counting for
// waits of d and above. Zero, the default, disables them.
func WithSlowThreshold(d time.Duration) Option {
	return func(cfg *config) {
		cfg.slowThreshold = d
	}
}

// WithMetrics sets the Metricer receiving lock events.
func WithMetrics(m Metricer) Option {
	return func(cfg *config) {
		cfg.metrics = m
	}
}

// RWMutex is a named reader/writer lock with contention
// instrumentation. The zero RWMutex is not usable; create one with New.
type RWMutex struct {
	mu   sync.RWMutex
	name string
	cfg  config

	sharedAcquires    atomic.Int64
	exclusiveAcquires atomic.Int64
	slowAcquires      atomic.Int64
	sharedWait        atomic.Int64 // nanoseconds
	exclusiveWait     atomic.Int64
	maxSharedWait     atomic.Int64
	maxExclusiveWait  atomic.Int64
	holdTotal         atomic.Int64
	maxHold           atomic.Int64

	// start of the current exclusive hold, unix nanos, 0 when not held
	lockedAt atomic.Int64
}

// New returns an instrumented reader/writer lock. The name appears in
// log records, stats and metric labels.
func New(name string, opts ...Option) *RWMutex {
	cfg := config{
		logger:  log.Root(),
		metrics: NoopMetrics,
	}
	cfg.ApplyOptions(opts...)
	return &RWMutex{name: name, cfg: cfg}
}

// Name returns the lock's name.
func (m *RWMutex) Name() string {
	return m.name
}

// Lock acquires the lock exclusively, blocking until it is available.
func (m *RWMutex) Lock() {
	start := time.Now()
	m.mu.Lock()
	wait := time.Since(start)
	m.lockedAt.Store(time.Now().UnixNano())
	m.exclusiveAcquires.Add(1)
	m.exclusiveWait.Add(int64(wait))
	storeMax(&m.maxExclusiveWait, int64(wait))
	m.cfg.metrics.RecordAcquire(m.name, ModeExclusive, wait)
	m.observeWait(ModeExclusive, wait)
}

// Unlock releases the exclusive lock and records the hold duration.
func (m *RWMutex) Unlock() {
	if at := m.lockedAt.Swap(0); at != 0 {
		held := time.Duration(time.Now().UnixNano() - at)
		m.holdTotal.Add(int64(held))
		storeMax(&m.maxHold, int64(held))
		m.cfg.metrics.RecordHold(m.name, held)
	}
	m.mu.Unlock()
}

// RLock acquires the lock in shared mode, blocking until it is
// available.
func (m *RWMutex) RLock() {
	start := time.Now()
	m.mu.RLock()
	wait := time.Since(start)
	m.sharedAcquires.Add(1)
	m.sharedWait.Add(int64(wait))
	storeMax(&m.maxSharedWait, int64(wait))
	m.cfg.metrics.RecordAcquire(m.name, ModeShared, wait)
	m.observeWait(ModeShared, wait)
}

// RUnlock releases one shared hold. Shared hold durations are not
// tracked: concurrent RUnlocks cannot be matched to their RLocks
// without goroutine identity, which this package does not inspect.
func (m *RWMutex) RUnlock() {
	m.mu.RUnlock()
}

func (m *RWMutex) observeWait(mode string, wait time.Duration) {
	if m.cfg.slowThreshold <= 0 || wait < m.cfg.slowThreshold {
		return
	}
	m.slowAcquires.Add(1)
	m.cfg.metrics.RecordSlowAcquire(m.name, mode, wait)
	m.cfg.logger.Warn("slow lock acquire",
		"lock", m.name, "mode", mode, "wait", wait, "threshold", m.cfg.slowThreshold)
}

// Stats is a point-in-time snapshot of a lock's counters.
type Stats struct {
	Lock              string
	SharedAcquires    int64
	ExclusiveAcquires int64
	SlowAcquires      int64

	SharedWait       time.Duration // cumulative
	ExclusiveWait    time.Duration // cumulative
	MaxSharedWait    time.Duration
	MaxExclusiveWait time.Duration

	// exclusive holds only, see RUnlock for why shared holds are not tracked
	HoldTotal time.Duration
	MaxHold   time.Duration
}

// Stats snapshots the lock's counters. Counters only grow; a snapshot
// taken during traffic is consistent per counter, not across counters.
func (m *RWMutex) Stats() Stats {
	return Stats{
		Lock:              m.name,
		SharedAcquires:    m.sharedAcquires.Load(),
		ExclusiveAcquires: m.exclusiveAcquires.Load(),
		SlowAcquires:      m.slowAcquires.Load(),
		SharedWait:        time.Duration(m.sharedWait.Load()),
		ExclusiveWait:     time.Duration(m.exclusiveWait.Load()),
		MaxSharedWait:     time.Duration(m.maxSharedWait.Load()),
		MaxExclusiveWait:  time.Duration(m.maxExclusiveWait.Load()),
		HoldTotal:         time.Duration(m.holdTotal.Load()),
		MaxHold:           time.Duration(m.maxHold.Load()),
	}
}

// storeMax raises a to v if v is larger, tolerating concurrent raises.
func storeMax(a *atomic.Int64, v int64) {
	for {
		cur := a.Load()
		if v <= cur || a.CompareAndSwap(cur, v) {
			return
		}
	}
}
