// Package log installs the process-wide slog logger.
package log

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	charmlog "github.com/charmbracelet/log"

	"disassembler/internal/logging"
)

var (
	initOnce    sync.Once
	initialized atomic.Bool
	active      *logging.LoggerCloser
)

// Setup routes slog through a charm logger configured from the
// environment. debug forces the debug level and caller reporting.
// Only the first call has any effect.
func Setup(debug bool) {
	initOnce.Do(func() {
		lg := logging.NewLogger()
		if debug || logging.IsDebug() {
			lg.SetLevel(charmlog.DebugLevel)
			lg.SetReportCaller(true)
		}

		active = lg
		slog.SetDefault(slog.New(lg.Logger))
		initialized.Store(true)
	})
}

// Close releases the log file, if logging goes to one.
func Close() error {
	if active == nil {
		return nil
	}
	return active.Close()
}

func Initialized() bool {
	return initialized.Load()
}

func RecoverPanic(name string, cleanup func()) {
	if r := recover(); r != nil {
		if Initialized() {
			slog.Error(fmt.Sprintf("Panic in %s", name),
				"panic", r,
				"stack", string(debug.Stack()))
		}
		if cleanup != nil {
			cleanup()
		}
	}
}
