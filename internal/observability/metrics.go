// Package observability wires Prometheus metrics for the telemetry
// transport.
package observability

import (
	"io"
	"sync"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/petiaccja/QCTracker/internal/telemetry"
)

var (
	registerOnce sync.Once

	framesReceived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "qctracker",
			Subsystem: "telemetry",
			Name:      "frames_received_total",
			Help:      "Frames decoded and delivered to the application.",
		},
	)
	connectionsAccepted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "qctracker",
			Subsystem: "telemetry",
			Name:      "connections_accepted_total",
			Help:      "Tracker connections accepted.",
		},
	)
	disconnects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qctracker",
			Subsystem: "telemetry",
			Name:      "disconnects_total",
			Help:      "Session teardowns by reason.",
		},
		[]string{"reason"},
	)
)

// RegisterMetrics registers the telemetry collectors with the default
// Prometheus registry. Safe to call more than once.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(framesReceived, connectionsAccepted, disconnects)
	})
}

// RecordFrame counts one delivered frame.
func RecordFrame() {
	framesReceived.Inc()
}

// RecordConnection counts one accepted tracker connection.
func RecordConnection() {
	connectionsAccepted.Inc()
}

// RecordDisconnect counts one session teardown under the reason label for
// the given disconnect error.
func RecordDisconnect(err error) {
	disconnects.WithLabelValues(disconnectReason(err)).Inc()
}

func disconnectReason(err error) string {
	switch {
	case err == nil:
		return "clean"
	case errors.Is(err, telemetry.ErrChecksumMismatch):
		return "checksum"
	case errors.Is(err, telemetry.ErrDecodeFailure):
		return "decode"
	case errors.Is(err, io.ErrUnexpectedEOF):
		return "short_read"
	default:
		return "io"
	}
}
