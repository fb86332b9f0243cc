// Package debug holds the one piece of process-wide mutable state the
// pipeline has: whether VELTRANO_DEBUG was set (spec.md §5/§6/§9). It is
// initialised exactly once via sync.Once and never mutated afterwards
// except by an explicit Enable() call, per spec.md §9's "global mutable
// state" design note.
package debug

import (
	"log/slog"
	"os"
	"sync"
)

var (
	once    sync.Once
	enabled bool
)

func initFromEnv() {
	once.Do(func() {
		if v, ok := os.LookupEnv("VELTRANO_DEBUG"); ok && v != "" {
			enabled = true
		}
	})
}

// Enabled reports whether debug diagnostics are turned on, reading
// VELTRANO_DEBUG the first time it is called.
func Enabled() bool {
	initFromEnv()
	return enabled
}

// Enable turns debug diagnostics on explicitly (e.g. from a --debug CLI
// flag), overriding the environment variable.
func Enable() {
	initFromEnv()
	enabled = true
}

// Logger returns the process-wide default logger, writing to stderr at
// LevelDebug when debug diagnostics are enabled and LevelWarn otherwise.
func Logger() *slog.Logger {
	level := slog.LevelWarn
	addSource := false
	if Enabled() {
		level = slog.LevelDebug
		addSource = true
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: addSource,
	})
	return slog.New(handler)
}
