package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.MaxResources != 200 {
		t.Errorf("MaxResources = %d, want 200", cfg.MaxResources)
	}
	if cfg.ProbeConcurrency != 8 {
		t.Errorf("ProbeConcurrency = %d, want 8", cfg.ProbeConcurrency)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("INSPECTOR_PORT", "9090")
	t.Setenv("INSPECTOR_LOG_LEVEL", "debug")
	t.Setenv("INSPECTOR_MAX_RESOURCES", "50")
	t.Setenv("INSPECTOR_PROBE_CONCURRENCY", "4")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.MaxResources != 50 {
		t.Errorf("MaxResources = %d, want 50", cfg.MaxResources)
	}
	if cfg.ProbeConcurrency != 4 {
		t.Errorf("ProbeConcurrency = %d, want 4", cfg.ProbeConcurrency)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "port: 3000\nlog_level: warn\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Port)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "warn")
	}
	// Values the file does not set keep their defaults.
	if cfg.MaxResources != 200 {
		t.Errorf("MaxResources = %d, want 200", cfg.MaxResources)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file, got nil")
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{
			name:    "port too low",
			env:     map[string]string{"INSPECTOR_PORT": "0"},
			wantErr: errInvalidPort,
		},
		{
			name:    "port too high",
			env:     map[string]string{"INSPECTOR_PORT": "70000"},
			wantErr: errInvalidPort,
		},
		{
			name:    "concurrency zero",
			env:     map[string]string{"INSPECTOR_PROBE_CONCURRENCY": "0"},
			wantErr: errConcurrencyOutOfRange,
		},
		{
			name:    "concurrency too high",
			env:     map[string]string{"INSPECTOR_PROBE_CONCURRENCY": "500"},
			wantErr: errConcurrencyOutOfRange,
		},
		{
			name:    "max resources zero",
			env:     map[string]string{"INSPECTOR_MAX_RESOURCES": "0"},
			wantErr: errMaxResourcesRange,
		},
		{
			name:    "max resources too high",
			env:     map[string]string{"INSPECTOR_MAX_RESOURCES": "5000"},
			wantErr: errMaxResourcesRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load("")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
