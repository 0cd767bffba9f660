package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/guardedlabs/guarded"
	"github.com/guardedlabs/guarded/cmd/guarded-stress/flags"
	"github.com/guardedlabs/guarded/lockstat"
	guardlog "github.com/guardedlabs/guarded/log"
	"github.com/guardedlabs/guarded/metrics"
)

var (
	Version   = "v0.0.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	guardlog.SetupDefaults()

	app := cli.NewApp()
	app.Version = Version
	app.Name = "guarded-stress"
	app.Usage = "Lock contention workload for guarded values"
	app.Description = "Hammers a guarded LRU cache with concurrent readers and writers while reporting lock statistics"
	app.Flags = flags.Flags
	app.Action = run

	err := app.Run(os.Args)
	if err != nil {
		log.Crit("Application failed", "message", err)
	}
}

// totals aggregates what the workers did. Workers count locally and
// merge once on exit, to not add contention beyond the cache lock that
// is being measured.
type totals struct {
	Hits   uint64
	Misses uint64
	Writes uint64
}

func run(cliCtx *cli.Context) error {
	logCfg, err := guardlog.ReadCLIConfig(cliCtx)
	if err != nil {
		return err
	}
	logger := guardlog.NewLogger(os.Stdout, logCfg)

	metricsCfg := metrics.ReadCLIConfig(cliCtx)
	if err := metricsCfg.Check(); err != nil {
		return fmt.Errorf("invalid metrics config: %w", err)
	}

	readers := cliCtx.Int(flags.ReadersFlag.Name)
	writers := cliCtx.Int(flags.WritersFlag.Name)
	duration := cliCtx.Duration(flags.DurationFlag.Name)
	cacheSize := cliCtx.Int(flags.CacheSizeFlag.Name)
	keySpace := cliCtx.Uint64(flags.KeySpaceFlag.Name)
	slowThreshold := cliCtx.Duration(flags.SlowThresholdFlag.Name)
	reportInterval := cliCtx.Duration(flags.ReportIntervalFlag.Name)

	if readers < 0 || writers < 0 {
		return errors.New("reader and writer counts must not be negative")
	}
	if readers+writers == 0 {
		return errors.New("need at least one reader or writer")
	}
	if keySpace == 0 {
		return errors.New("key space must not be empty")
	}

	lockOpts := []lockstat.Option{
		lockstat.WithLogger(logger),
		lockstat.WithSlowThreshold(slowThreshold),
	}

	var metricsSrv *metrics.Server
	if metricsCfg.Enabled {
		m := metrics.NewMetrics("stress")
		m.RecordInfo(Version)
		m.RecordUp()
		metricsSrv = metrics.StartServer(logger, metricsCfg.Address(), m.Registry())
		lockOpts = append(lockOpts, lockstat.WithMetrics(m.LockMetrics))
	}

	mu := lockstat.New("cache", lockOpts...)
	backing, err := simplelru.NewLRU[uint64, uint64](cacheSize, nil)
	if err != nil {
		return fmt.Errorf("failed to create cache: %w", err)
	}
	cache := guarded.NewWithLocker(backing, mu)
	stats := guarded.New(totals{})

	reporter := lockstat.NewReporter(logger, reportInterval, mu)
	reporter.Start()
	defer reporter.Stop()

	ctx, stop := signal.NotifyContext(cliCtx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	logger.Info("Starting workload",
		"readers", readers, "writers", writers, "duration", duration,
		"cache_size", cacheSize, "key_space", keySpace)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < readers; i++ {
		rng := rand.New(rand.NewSource(int64(i)))
		g.Go(func() error {
			var hits, misses uint64
			for ctx.Err() == nil {
				key := rng.Uint64() % keySpace
				acc := cache.RLock()
				// Peek does not update recency, so it is safe under a
				// shared accessor. Get would not be.
				if _, ok := acc.Get().Peek(key); ok {
					hits++
				} else {
					misses++
				}
				acc.Release()
			}
			stats.WithLock(func(t *totals) {
				t.Hits += hits
				t.Misses += misses
			})
			return nil
		})
	}
	for i := 0; i < writers; i++ {
		rng := rand.New(rand.NewSource(int64(readers + i)))
		g.Go(func() error {
			var writes uint64
			for ctx.Err() == nil {
				key := rng.Uint64() % keySpace
				acc := cache.Lock()
				acc.Get().Add(key, key)
				acc.Release()
				writes++
			}
			stats.WithLock(func(t *totals) {
				t.Writes += writes
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	reporter.Stop()
	reporter.Report()

	var entries int
	cache.WithRLock(func(c *simplelru.LRU[uint64, uint64]) {
		entries = c.Len()
	})

	t := stats.Get()
	s := mu.Stats()
	logger.Info("Workload complete",
		"hits", t.Hits, "misses", t.Misses, "writes", t.Writes,
		"cache_entries", entries,
		"shared_acquires", s.SharedAcquires,
		"exclusive_acquires", s.ExclusiveAcquires,
		"slow_acquires", s.SlowAcquires,
		"max_exclusive_wait", s.MaxExclusiveWait,
		"max_hold", s.MaxHold,
	)

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsSrv.Stop(shutdownCtx); err != nil {
			logger.Warn("Failed to stop metrics server", "err", err)
		}
	}
	return nil
}
