package main

import (
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/petiaccja/QCTracker/internal/telemetry"
)

// qctrackerd config.toml key mapping.
type fileConfig struct {
	ListenPort  int    `toml:"listen_port"`
	LogLevel    string `toml:"log_level"`
	MetricsAddr string `toml:"metrics_addr"`
}

// daemonConfig holds the resolved runtime settings.
type daemonConfig struct {
	ListenPort  int
	LogLevel    slog.Level
	MetricsAddr string // empty disables the metrics endpoint
}

func defaultConfig() daemonConfig {
	return daemonConfig{
		ListenPort: telemetry.DefaultPort,
		LogLevel:   slog.LevelInfo,
	}
}

// loadConfig overlays a TOML file onto the defaults. Keys absent from the
// file keep their default value.
func loadConfig(path string) (daemonConfig, error) {
	cfg := defaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return daemonConfig{}, errors.Wrap(err, "load qctrackerd config")
	}

	if meta.IsDefined("listen_port") {
		cfg.ListenPort = raw.ListenPort
	}
	if meta.IsDefined("log_level") {
		var level slog.Level
		if err := level.UnmarshalText([]byte(strings.TrimSpace(raw.LogLevel))); err != nil {
			return daemonConfig{}, errors.Wrapf(err, "bad log_level %q", raw.LogLevel)
		}
		cfg.LogLevel = level
	}
	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}

	if cfg.ListenPort <= 0 || cfg.ListenPort > 65535 {
		return daemonConfig{}, errors.Errorf("bad listen_port %d", cfg.ListenPort)
	}

	return cfg, nil
}
