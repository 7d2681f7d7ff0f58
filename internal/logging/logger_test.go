package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]log.Level{
		"debug": log.DebugLevel,
		"warn":  log.WarnLevel,
		"error": log.ErrorLevel,
		"info":  log.InfoLevel,
		"":      log.InfoLevel,
		"loud":  log.InfoLevel,
	}
	for name, want := range tests {
		if got := ParseLevel(name); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestNewLoggerWithWriter(t *testing.T) {
	t.Setenv("DISASSEMBLER_LOG_LEVEL", "warn")
	t.Setenv("DISASSEMBLER_LOG_PREFIX", "test ")

	var buf bytes.Buffer
	lg := NewLoggerWithWriter(&buf)
	defer lg.Close()

	lg.Info("hidden")
	lg.Warn("shown", "offset", 4)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message logged at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "test") {
		t.Errorf("warn message missing or unprefixed: %q", out)
	}
}

func TestIsDebug(t *testing.T) {
	t.Setenv("DISASSEMBLER_LOG_LEVEL", "debug")
	if !IsDebug() {
		t.Error("IsDebug() = false with debug level")
	}
	t.Setenv("DISASSEMBLER_LOG_LEVEL", "info")
	if IsDebug() {
		t.Error("IsDebug() = true with info level")
	}
}
