package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mohammad-safakhou/postfeed/internal/apperrors"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Address != ":8080" {
		t.Errorf("server.address = %q", cfg.Server.Address)
	}
	if cfg.Source.PostsURL != "http://wp-api-demo.dev/wp-json/wp/v2/posts?context=embed" {
		t.Errorf("source.posts_url = %q", cfg.Source.PostsURL)
	}
	if cfg.Source.Timeout != 15*time.Second {
		t.Errorf("source.timeout = %v", cfg.Source.Timeout)
	}
	if cfg.Render.TimingMode != "issue" {
		t.Errorf("render.timing_mode = %q", cfg.Render.TimingMode)
	}
	if cfg.General.LogLevel != "info" {
		t.Errorf("general.log_level = %q", cfg.General.LogLevel)
	}
	if len(cfg.Server.AllowOrigins) != 1 || cfg.Server.AllowOrigins[0] != "*" {
		t.Errorf("server.allow_origins = %v", cfg.Server.AllowOrigins)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{
		"server": {"address": ":9090"},
		"source": {"posts_url": "http://blog.local/wp-json/wp/v2/posts", "timeout": "2s", "validate_schema": true},
		"render": {"timing_mode": "Completion", "sanitize": true}
	}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("POSTFEED_SERVER_ADDRESS", ":7070")
	t.Setenv("POSTFEED_GENERAL_DEBUG", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Address != ":7070" {
		t.Errorf("env should override file, got %q", cfg.Server.Address)
	}
	if cfg.Source.Timeout != 2*time.Second || !cfg.Source.ValidateSchema {
		t.Errorf("source = %+v", cfg.Source)
	}
	if cfg.Render.TimingMode != "completion" || !cfg.Render.Sanitize {
		t.Errorf("render = %+v", cfg.Render)
	}
	if cfg.General.LogLevel != "debug" {
		t.Errorf("debug should force debug level, got %q", cfg.General.LogLevel)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("explicit missing file should fail")
	}
}

func TestLoad_InvalidTimingMode(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("POSTFEED_RENDER_TIMING_MODE", "later")
	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "render.timing_mode") {
		t.Fatalf("expected timing mode error, got %v", err)
	}
}

func TestSectionValidate(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"server ok", ServerConfig{Address: ":1", WaitTimeout: time.Second}.Validate(), false},
		{"server missing address", ServerConfig{WaitTimeout: time.Second}.Validate(), true},
		{"source relative url", SourceConfig{PostsURL: "/posts", Timeout: time.Second}.Validate(), true},
		{"source zero timeout", SourceConfig{PostsURL: "http://x/posts"}.Validate(), true},
		{"source ok", SourceConfig{PostsURL: "http://x/posts", Timeout: time.Second}.Validate(), false},
		{"telemetry negative port", TelemetryConfig{MetricsPort: -1}.Validate(), true},
		{"telemetry enabled without name", TelemetryConfig{Enabled: true}.Validate(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if (tt.err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", tt.err, tt.wantErr)
			}
		})
	}
}

func TestLoad_ErrorsAreConfigErrors(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("POSTFEED_SOURCE_TIMEOUT", "0s")
	_, err := Load("")
	var cfgErr apperrors.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}
