package lockstat

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
)

// Reporter logs the stats of a set of locks on repeat at a set
// interval. Warning: ticks can be missed, if logging is slow.
type Reporter struct {
	logger   log.Logger
	interval time.Duration
	locks    []*RWMutex

	mu     sync.Mutex
	ctx    context.Context // non-nil when running
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewReporter returns a stopped Reporter covering the given locks.
func NewReporter(logger log.Logger, interval time.Duration, locks ...*RWMutex) *Reporter {
	return &Reporter{
		logger:   logger,
		interval: interval,
		locks:    locks,
	}
}

// Start starts reporting in a background routine.
// Duplicate start calls are ignored. Only one routine runs.
func (r *Reporter) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ctx != nil {
		return // already running
	}

	r.ctx, r.cancel = context.WithCancel(context.Background())

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				r.Report()
			case <-r.ctx.Done():
				return // quitting
			}
		}
	}()
}

// Report logs one stats line per covered lock. It can also be called
// directly, e.g. for a final report after Stop.
func (r *Reporter) Report() {
	for _, m := range r.locks {
		s := m.Stats()
		r.logger.Info("lock stats",
			"lock", s.Lock,
			"shared_acquires", s.SharedAcquires,
			"exclusive_acquires", s.ExclusiveAcquires,
			"slow_acquires", s.SlowAcquires,
			"shared_wait", s.SharedWait,
			"exclusive_wait", s.ExclusiveWait,
			"max_shared_wait", s.MaxSharedWait,
			"max_exclusive_wait", s.MaxExclusiveWait,
			"hold_total", s.HoldTotal,
			"max_hold", s.MaxHold,
		)
	}
}

// Stop stops the reporting. Duplicate calls are ignored.
// Only if active the reporting routine is stopped.
func (r *Reporter) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ctx == nil {
		return // not running, nothing to stop
	}
	r.cancel()
	r.wg.Wait()
	r.ctx = nil
	r.cancel = nil
}
