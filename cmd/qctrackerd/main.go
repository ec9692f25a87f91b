// qctrackerd is the QCTracker telemetry daemon. It listens for a single
// in-vehicle tracking unit, logs every position report it receives and
// exposes Prometheus metrics when configured to.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/petiaccja/QCTracker/internal/observability"
	"github.com/petiaccja/QCTracker/internal/telemetry"
	"github.com/petiaccja/QCTracker/internal/track"
)

func main() {
	configPath := flag.String("config", "", "path to config.toml (defaults apply when omitted)")
	flag.Parse()

	cfg := defaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = loadConfig(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "qctrackerd: %v\n", err)
			os.Exit(1)
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	observability.RegisterMetrics()
	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, logger)
	}

	disconnected := make(chan struct{}, 1)
	listener, err := telemetry.NewListener(cfg.ListenPort,
		telemetry.CodecOption(track.PositionCodec{}),
		telemetry.LoggerOption(logger),
		telemetry.OnMessageOption(func(msg telemetry.Message) {
			observability.RecordFrame()
			if p, ok := msg.(track.Position); ok {
				logger.Info("position report",
					"device", p.DeviceID,
					"lat", p.Latitude,
					"lon", p.Longitude,
					"speed_kph", p.SpeedKPH,
					"heading_deg", p.HeadingDeg,
					"time", p.Time)
			}
		}),
		telemetry.OnDisconnectOption(func(err error) {
			observability.RecordDisconnect(err)
			select {
			case disconnected <- struct{}{}:
			default:
			}
		}),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "qctrackerd: %v\n", err)
		os.Exit(1)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	// One tracker session at a time; after a teardown, go straight back
	// to listening. Reconnect pacing is the tracker's concern.
	for {
		result := make(chan bool, 1)
		if err := listener.StartListening(func(ok bool) { result <- ok }); err != nil {
			logger.Error("start listening failed", "error", err)
			os.Exit(1)
		}

		select {
		case <-sig:
			listener.CancelListening()
			return
		case ok := <-result:
			if !ok {
				time.Sleep(time.Second)
				continue
			}
		}
		observability.RecordConnection()

		select {
		case <-sig:
			listener.Disconnect()
			return
		case <-disconnected:
		}
	}
}

func serveMetrics(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	logger.Info("metrics endpoint", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics endpoint failed", "error", err)
	}
}
