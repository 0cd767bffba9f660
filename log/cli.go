// Package log wires logging flags to a geth log.Logger, so each binary
// in this repo configures logging the same way.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	elog "github.com/ethereum/go-ethereum/log"
)

const (
	LevelFlagName  = "log.level"
	FormatFlagName = "log.format"
	ColorFlagName  = "log.color"
)

// CLIFlags creates flag definitions for the logging utils, with env
// vars derived from envPrefix.
func CLIFlags(envPrefix string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    LevelFlagName,
			Usage:   "The lowest log level that will be output",
			Value:   "info",
			EnvVars: prefixEnvVar(envPrefix, "LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:    FormatFlagName,
			Usage:   "Format the log output. Supported formats: 'text', 'terminal', 'logfmt', 'json'",
			Value:   "text",
			EnvVars: prefixEnvVar(envPrefix, "LOG_FORMAT"),
		},
		&cli.BoolFlag{
			Name:    ColorFlagName,
			Usage:   "Color the log output if in terminal mode",
			EnvVars: prefixEnvVar(envPrefix, "LOG_COLOR"),
		},
	}
}

func prefixEnvVar(prefix, suffix string) []string {
	return []string{prefix + "_" + suffix}
}

// LevelFromString returns the appropriate Level from a string name.
// Useful for parsing command line args and configuration files.
// It also converts strings to lowercase.
func LevelFromString(lvlString string) (slog.Level, error) {
	lvlString = strings.ToLower(lvlString) // ignore case
	switch lvlString {
	case "trace", "trce":
		return elog.LevelTrace, nil
	case "debug", "dbug":
		return elog.LevelDebug, nil
	case "info":
		return elog.LevelInfo, nil
	case "warn":
		return elog.LevelWarn, nil
	case "error", "eror":
		return elog.LevelError, nil
	case "crit":
		return elog.LevelCrit, nil
	default:
		return elog.LevelDebug, fmt.Errorf("unknown level: %v", lvlString)
	}
}

type FormatType string

const (
	FormatText     FormatType = "text"
	FormatTerminal FormatType = "terminal"
	FormatLogFmt   FormatType = "logfmt"
	FormatJSON     FormatType = "json"
)

// FormatFromString returns the FormatType for a string name.
func FormatFromString(s string) (FormatType, error) {
	switch FormatType(strings.ToLower(s)) {
	case FormatText:
		return FormatText, nil
	case FormatTerminal:
		return FormatTerminal, nil
	case FormatLogFmt:
		return FormatLogFmt, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("unknown format: %v", s)
	}
}

type CLIConfig struct {
	Level  slog.Level
	Color  bool
	Format FormatType
}

func DefaultCLIConfig() CLIConfig {
	return CLIConfig{
		Level:  elog.LevelInfo,
		Format: FormatText,
	}
}

// ReadCLIConfig parses the logging flags of ctx into a CLIConfig.
func ReadCLIConfig(ctx *cli.Context) (CLIConfig, error) {
	cfg := DefaultCLIConfig()
	level, err := LevelFromString(ctx.String(LevelFlagName))
	if err != nil {
		return cfg, fmt.Errorf("invalid %s flag: %w", LevelFlagName, err)
	}
	cfg.Level = level
	format, err := FormatFromString(ctx.String(FormatFlagName))
	if err != nil {
		return cfg, fmt.Errorf("invalid %s flag: %w", FormatFlagName, err)
	}
	cfg.Format = format
	cfg.Color = ctx.Bool(ColorFlagName)
	return cfg, nil
}

// Handler returns the slog handler for the configured format, level and
// color, writing to wr.
func (cfg CLIConfig) Handler(wr io.Writer) slog.Handler {
	switch cfg.Format {
	case FormatJSON:
		return elog.JSONHandlerWithLevel(wr, cfg.Level)
	case FormatLogFmt:
		return elog.LogfmtHandlerWithLevel(wr, cfg.Level)
	default: // text, terminal
		return elog.NewTerminalHandlerWithLevel(wr, cfg.Level, cfg.Color)
	}
}

// NewLogger creates a logger based on the supplied configuration.
func NewLogger(wr io.Writer, cfg CLIConfig) elog.Logger {
	return elog.NewLogger(cfg.Handler(wr))
}

// SetGlobalLogHandler sets the log handler of the global default logger.
// The usage of this logger is strongly discouraged,
// as it does not provide any metadata about the logger.
func SetGlobalLogHandler(h slog.Handler) {
	elog.SetDefault(elog.NewLogger(h))
}

// SetupDefaults sets a general default logger, to log anything
// that happens before logging flags are parsed.
func SetupDefaults() {
	SetGlobalLogHandler(elog.NewTerminalHandlerWithLevel(os.Stdout, elog.LevelInfo, false))
}
