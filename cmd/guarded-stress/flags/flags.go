package flags

import (
	"time"

	"github.com/urfave/cli/v2"

	guardlog "github.com/guardedlabs/guarded/log"
	"github.com/guardedlabs/guarded/metrics"
)

const EnvVarPrefix = "GUARDED_STRESS"

func prefixEnvVars(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	ReadersFlag = &cli.IntFlag{
		Name:    "readers",
		Usage:   "Number of concurrent reader goroutines",
		Value:   8,
		EnvVars: prefixEnvVars("READERS"),
	}
	WritersFlag = &cli.IntFlag{
		Name:    "writers",
		Usage:   "Number of concurrent writer goroutines",
		Value:   2,
		EnvVars: prefixEnvVars("WRITERS"),
	}
	DurationFlag = &cli.DurationFlag{
		Name:    "duration",
		Usage:   "How long to run the workload. Runs until interrupted if 0.",
		Value:   10 * time.Second,
		EnvVars: prefixEnvVars("DURATION"),
	}
	CacheSizeFlag = &cli.IntFlag{
		Name:    "cache-size",
		Usage:   "Capacity of the guarded LRU cache",
		Value:   1024,
		EnvVars: prefixEnvVars("CACHE_SIZE"),
	}
	KeySpaceFlag = &cli.Uint64Flag{
		Name:    "key-space",
		Usage:   "Number of distinct keys the workload touches",
		Value:   4096,
		EnvVars: prefixEnvVars("KEY_SPACE"),
	}
	SlowThresholdFlag = &cli.DurationFlag{
		Name:    "slow-threshold",
		Usage:   "Lock waits above this threshold are logged and counted as slow",
		Value:   time.Millisecond,
		EnvVars: prefixEnvVars("SLOW_THRESHOLD"),
	}
	ReportIntervalFlag = &cli.DurationFlag{
		Name:    "report-interval",
		Usage:   "How frequently to log lock statistics",
		Value:   2 * time.Second,
		EnvVars: prefixEnvVars("REPORT_INTERVAL"),
	}
)

var Flags []cli.Flag

func init() {
	Flags = []cli.Flag{
		ReadersFlag,
		WritersFlag,
		DurationFlag,
		CacheSizeFlag,
		KeySpaceFlag,
		SlowThresholdFlag,
		ReportIntervalFlag,
	}
	Flags = append(Flags, guardlog.CLIFlags(EnvVarPrefix)...)
	Flags = append(Flags, metrics.CLIFlags(EnvVarPrefix)...)
}
