package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/petiaccja/QCTracker/internal/telemetry"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaultsAndOverrides(t *testing.T) {
	path := writeConfig(t, `
listen_port = 6001
log_level = "debug"
metrics_addr = "127.0.0.1:9290"
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ListenPort != 6001 {
		t.Errorf("listen port = %d, want 6001", cfg.ListenPort)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("log level = %v, want debug", cfg.LogLevel)
	}
	if cfg.MetricsAddr != "127.0.0.1:9290" {
		t.Errorf("metrics addr = %q, want 127.0.0.1:9290", cfg.MetricsAddr)
	}
}

func TestLoadConfigKeepsDefaults(t *testing.T) {
	path := writeConfig(t, ``)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ListenPort != telemetry.DefaultPort {
		t.Errorf("listen port = %d, want default %d", cfg.ListenPort, telemetry.DefaultPort)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("log level = %v, want info", cfg.LogLevel)
	}
	if cfg.MetricsAddr != "" {
		t.Errorf("metrics addr = %q, want empty", cfg.MetricsAddr)
	}
}

func TestLoadConfigBadLogLevel(t *testing.T) {
	path := writeConfig(t, `log_level = "verbose"`)

	if _, err := loadConfig(path); err == nil {
		t.Fatal("expected error for bad log level")
	}
}

func TestLoadConfigBadPort(t *testing.T) {
	for _, content := range []string{`listen_port = 0`, `listen_port = -1`, `listen_port = 70000`} {
		path := writeConfig(t, content)
		if _, err := loadConfig(path); err == nil {
			t.Errorf("expected error for %q", content)
		}
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
