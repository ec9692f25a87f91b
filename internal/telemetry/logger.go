package telemetry

import "log/slog"

// Logger is the structured logging interface the listener reports session
// lifecycle events through. It matches the *slog.Logger method set, so the
// application's logger passes straight through LoggerOption; without one
// the slog default is used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

func defaultLogger() Logger {
	return slog.Default()
}
