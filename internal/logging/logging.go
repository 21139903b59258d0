// Package logging builds the logr.Logger shared by all workers.
//
// Verbosity mapping: V(0) carries warnings and per-unit outcomes and is
// always emitted; V(1) is enabled by --verbose and carries per-stage
// progress; V(2) is enabled by --debug and carries poll-by-poll detail.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

const (
	// LevelVerbose is enabled by the --verbose flag.
	LevelVerbose = 1
	// LevelDebug is enabled by the --debug flag.
	LevelDebug = 2
)

// New returns a logger writing timestamped lines to w. Each record is
// emitted in a single mutex-guarded write, so concurrent workers never
// interleave partial lines.
func New(w io.Writer, verbosity int) logr.Logger {
	var mu sync.Mutex
	return funcr.New(func(prefix, args string) {
		stamp := time.Now().Format("2006-01-02T15:04:05.000Z07:00")
		if prefix != "" {
			args = prefix + " " + args
		}
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, "%s %s\n", stamp, args)
	}, funcr.Options{Verbosity: verbosity})
}

// Open returns the log sink for the given path: the file opened for
// append, or stderr when path is empty. The returned close function is a
// no-op for stderr.
func Open(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stderr, func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return f, f.Close, nil
}

// Verbosity maps the --verbose and --debug switches onto a funcr level.
func Verbosity(verbose, debug bool) int {
	switch {
	case debug:
		return LevelDebug
	case verbose:
		return LevelVerbose
	default:
		return 0
	}
}
