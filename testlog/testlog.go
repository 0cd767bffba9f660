// Package testlog provides a log handler for unit tests: records are
// re-emitted through t.Logf, so they interleave with the test's own
// output and only show up for failing tests (or with -v).
package testlog

import (
	"bufio"
	"bytes"
	"log/slog"
	"os"
	"sync"

	"github.com/ethereum/go-ethereum/log"
)

var useColorInTestLog bool = true

func init() {
	if os.Getenv("GUARDED_TESTLOG_DISABLE_COLOR") == "true" {
		useColorInTestLog = false
	}
}

// Testing is the subset of testing.T the loggers here need. Standard Go
// testing.TB implements it, as do Go-like test frameworks. Some logger
// methods are marked as Helper so the call site is reported accurately.
type Testing interface {
	Logf(format string, args ...any)
	Helper()
	FailNow()
	Name() string
	Cleanup(func())
}

// logger formats records into a buffer and flushes them line by line to
// t.Logf after every call. It embeds the inner log.Logger, so it keeps
// satisfying the full geth logger interface; only the emitting methods
// are overridden to flush.
type logger struct {
	log.Logger
	t   Testing
	mu  *sync.Mutex
	buf *syncBuffer
}

// Logger returns a logger which logs to the unit test log of t,
// discarding records below level.
func Logger(t Testing, level slog.Level) log.Logger {
	return newLogger(t, level, nil)
}

func newLogger(t Testing, level slog.Level, wrap func(slog.Handler) slog.Handler) *logger {
	// The buffer is synchronized because the handler holding it can be
	// obtained via Handler() and used outside the logger mutex.
	buf := new(syncBuffer)
	var handler slog.Handler = log.NewTerminalHandlerWithLevel(buf, level, useColorInTestLog)
	if wrap != nil {
		handler = wrap(handler)
	}
	return &logger{
		Logger: log.NewLogger(handler),
		t:      t,
		mu:     new(sync.Mutex),
		buf:    buf,
	}
}

func (l *logger) Trace(msg string, ctx ...any) {
	l.t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Logger.Trace(msg, ctx...)
	l.flush()
}

func (l *logger) Debug(msg string, ctx ...any) {
	l.t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Logger.Debug(msg, ctx...)
	l.flush()
}

func (l *logger) Info(msg string, ctx ...any) {
	l.t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Logger.Info(msg, ctx...)
	l.flush()
}

func (l *logger) Warn(msg string, ctx ...any) {
	l.t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Logger.Warn(msg, ctx...)
	l.flush()
}

func (l *logger) Error(msg string, ctx ...any) {
	l.t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Logger.Error(msg, ctx...)
	l.flush()
}

func (l *logger) Crit(msg string, ctx ...any) {
	l.t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	// Crit on the inner logger would exit the process before the
	// buffer is flushed.
	l.Logger.Write(log.LevelCrit, msg, ctx...)
	l.flush()
	l.t.FailNow()
}

func (l *logger) Log(level slog.Level, msg string, ctx ...any) {
	l.t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Logger.Log(level, msg, ctx...)
	l.flush()
}

func (l *logger) Write(level slog.Level, msg string, ctx ...any) {
	l.t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Logger.Write(level, msg, ctx...)
	l.flush()
}

func (l *logger) New(ctx ...any) log.Logger {
	return &logger{Logger: l.Logger.New(ctx...), t: l.t, mu: l.mu, buf: l.buf}
}

func (l *logger) With(ctx ...any) log.Logger {
	return l.New(ctx...)
}

// flush writes all buffered lines to the test log and clears the buffer.
func (l *logger) flush() {
	l.t.Helper()
	scanner := bufio.NewScanner(l.buf)
	for scanner.Scan() {
		l.logLine("  %s", scanner.Text())
	}
	l.buf.Reset()
}

// logLine tolerates records emitted by goroutines that outlive the
// test, where t.Logf panics.
func (l *logger) logLine(format string, args ...any) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("testlog: dropped record logged after test end", "recover", r)
		}
	}()
	l.t.Helper()
	l.t.Logf(format, args...)
}

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *syncBuffer) Read(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Read(p)
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.b.Reset()
}
