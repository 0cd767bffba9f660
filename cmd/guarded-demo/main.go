package main

import (
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/guardedlabs/guarded"
	guardlog "github.com/guardedlabs/guarded/log"
)

const EnvVarPrefix = "GUARDED_DEMO"

var (
	Version   = "v0.0.0"
	GitCommit = ""
	GitDate   = ""
)

// Point is the value guarded in the walkthrough.
type Point struct {
	X int
	Y int
}

func main() {
	guardlog.SetupDefaults()

	app := cli.NewApp()
	app.Version = Version
	app.Name = "guarded-demo"
	app.Usage = "Guarded value walkthrough"
	app.Description = "Demonstrates copy, shared and exclusive access to a lock-guarded value"
	app.Flags = guardlog.CLIFlags(EnvVarPrefix)
	app.Action = run

	err := app.Run(os.Args)
	if err != nil {
		log.Crit("Application failed", "message", err)
	}
}

func run(cliCtx *cli.Context) error {
	logCfg, err := guardlog.ReadCLIConfig(cliCtx)
	if err != nil {
		return err
	}
	logger := guardlog.NewLogger(os.Stdout, logCfg)

	pos := guarded.New(Point{X: 42, Y: 69})

	p := pos.Get()
	logger.Info("Read a copy", "x", p.X, "y", p.Y)

	shared := pos.RLock()
	logger.Info("Shared access", "x", shared.Deref().X, "y", shared.Deref().Y)

	moved := shared.Move()
	logger.Info("Moved the shared accessor", "src_valid", shared.Valid(), "dst_valid", moved.Valid())
	shared.Release() // no-op, the handle was moved out
	moved.Release()

	excl := pos.Lock()
	excl.Deref().X = 68
	logger.Info("Mutated under exclusive access", "x", excl.Deref().X)
	excl.Release()

	p = pos.Get()
	logger.Info("Read the updated value", "x", p.X, "y", p.Y)

	var backup guarded.Value[Point]
	pos.MoveTo(&backup)
	p = backup.Get()
	logger.Info("Moved the value to another owner", "x", p.X, "y", p.Y)

	return nil
}
