package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mohammad-safakhou/postfeed/internal/apperrors"
)

// EnvPrefix is the prefix of environment overrides, e.g. POSTFEED_SOURCE_POSTS_URL.
const EnvPrefix = "POSTFEED"

// Config holds all configuration for the post feed service and CLI.
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	Source    SourceConfig    `mapstructure:"source"`
	Render    RenderConfig    `mapstructure:"render"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// Normalize lowercases the level and maps debug to the debug level.
func (g GeneralConfig) Normalize() GeneralConfig {
	g.LogLevel = strings.ToLower(strings.TrimSpace(g.LogLevel))
	if g.Debug {
		g.LogLevel = "debug"
	}
	if g.LogLevel == "" {
		g.LogLevel = "info"
	}
	return g
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	AllowOrigins []string      `mapstructure:"allow_origins"`
	PageTitle    string        `mapstructure:"page_title"`
	WaitTimeout  time.Duration `mapstructure:"wait_timeout"`
}

func (s ServerConfig) Validate() error {
	if strings.TrimSpace(s.Address) == "" {
		return fmt.Errorf("server.address required")
	}
	if s.WaitTimeout <= 0 {
		return fmt.Errorf("server.wait_timeout must be > 0")
	}
	return nil
}

// SourceConfig configures the posts endpoint client
type SourceConfig struct {
	PostsURL       string        `mapstructure:"posts_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
	ValidateSchema bool          `mapstructure:"validate_schema"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

func (s SourceConfig) Validate() error {
	raw := strings.TrimSpace(s.PostsURL)
	if raw == "" {
		return fmt.Errorf("source.posts_url required")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return fmt.Errorf("source.posts_url must be an absolute url, got %q", raw)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("source.timeout must be > 0")
	}
	if s.MaxBodyBytes < 0 {
		return fmt.Errorf("source.max_body_bytes cannot be negative")
	}
	return nil
}

// RenderConfig controls post rendering and the timer
type RenderConfig struct {
	TimingMode string `mapstructure:"timing_mode"`
	Sanitize   bool   `mapstructure:"sanitize"`
}

// Normalize lowercases the timing mode and defaults it to issue.
func (r RenderConfig) Normalize() RenderConfig {
	r.TimingMode = strings.ToLower(strings.TrimSpace(r.TimingMode))
	if r.TimingMode == "" {
		r.TimingMode = "issue"
	}
	return r
}

func (r RenderConfig) Validate() error {
	switch r.TimingMode {
	case "issue", "completion":
		return nil
	default:
		return fmt.Errorf("render.timing_mode must be issue or completion, got %q", r.TimingMode)
	}
}

// TelemetryConfig contains telemetry and monitoring settings
type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	MetricsPort  int    `mapstructure:"metrics_port"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name"`
}

func (t TelemetryConfig) Validate() error {
	if t.MetricsPort < 0 {
		return fmt.Errorf("telemetry.metrics_port cannot be negative")
	}
	if t.Enabled && strings.TrimSpace(t.ServiceName) == "" {
		return fmt.Errorf("telemetry.service_name required when telemetry is enabled")
	}
	return nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	for _, err := range []error{
		c.Server.Validate(),
		c.Source.Validate(),
		c.Render.Validate(),
		c.Telemetry.Validate(),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("general.debug", false)
	v.SetDefault("general.log_level", "info")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.allow_origins", []string{"*"})
	v.SetDefault("server.page_title", "Posts")
	v.SetDefault("server.wait_timeout", 30*time.Second)
	v.SetDefault("source.posts_url", "http://wp-api-demo.dev/wp-json/wp/v2/posts?context=embed")
	v.SetDefault("source.timeout", 15*time.Second)
	v.SetDefault("source.user_agent", "postfeed/1.0")
	v.SetDefault("source.validate_schema", false)
	v.SetDefault("source.max_body_bytes", 8<<20)
	v.SetDefault("render.timing_mode", "issue")
	v.SetDefault("render.sanitize", false)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.metrics_port", 0)
	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.service_name", "postfeed")
}

// New returns a viper instance with defaults, search paths and env binding
// set up. When path is empty the config file is optional.
func New(path string) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	if path == "" {
		v.SetConfigName("config") // name of config file (without extension)
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		if exe, err := os.Executable(); err == nil {
			exeDir := filepath.Dir(exe)
			v.AddConfigPath(exeDir)
			v.AddConfigPath(filepath.Join(exeDir, "..", "config"))
		}
	} else {
		v.SetConfigFile(path)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv() // read in environment variables that match (POSTFEED_*)
	return v
}

// Read reads the config file into v. A missing file is only an error when
// an explicit path was given.
func Read(v *viper.Viper, path string) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return apperrors.NewConfigError("read config: %v", err)
	}
	return nil
}

// Decode unmarshals, normalizes and validates v.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.NewConfigError("decode config: %v", err)
	}
	cfg.General = cfg.General.Normalize()
	cfg.Render = cfg.Render.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewConfigError("invalid config: %v", err)
	}
	return &cfg, nil
}

// Load reads configuration from path (or the default search paths) and the
// environment.
func Load(path string) (*Config, error) {
	v := New(path)
	if err := Read(v, path); err != nil {
		return nil, err
	}
	return Decode(v)
}

// LoadConfig is Load that panics on error.
func LoadConfig(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
	return cfg
}
