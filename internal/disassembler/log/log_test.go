package log

import (
	"log/slog"
	"testing"
)

func TestSetup(t *testing.T) {
	Setup(true)
	if !Initialized() {
		t.Fatal("Initialized() = false after Setup")
	}
	if !slog.Default().Enabled(t.Context(), slog.LevelDebug) {
		t.Error("debug level not enabled after Setup(true)")
	}
	// Later calls are no-ops
	Setup(false)
	if !slog.Default().Enabled(t.Context(), slog.LevelDebug) {
		t.Error("second Setup call changed the level")
	}
}

func TestRecoverPanic(t *testing.T) {
	cleaned := false
	func() {
		defer RecoverPanic("test", func() { cleaned = true })
		panic("boom")
	}()
	if !cleaned {
		t.Error("cleanup not called after panic")
	}
}

func TestRecoverPanicNoPanic(t *testing.T) {
	cleaned := false
	func() {
		defer RecoverPanic("test", func() { cleaned = true })
	}()
	if cleaned {
		t.Error("cleanup called without a panic")
	}
}
