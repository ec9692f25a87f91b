package telemetry

import (
	"log/slog"
	"testing"
)

func TestLogger_Interface(t *testing.T) {
	// *slog.Logger must satisfy the Logger interface.
	var _ Logger = slog.Default()
}

func TestDefaultLogger(t *testing.T) {
	logger := defaultLogger()
	if logger == nil {
		t.Fatal("defaultLogger returned nil")
	}
	if logger != Logger(slog.Default()) {
		t.Error("defaultLogger did not return slog.Default()")
	}
}
