// Package config loads service configuration from a YAML file and
// CISCO_TRIAGE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fidde/cisco_log_triage/internal/storage"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CISCO_TRIAGE_AI_API_KEY_LOG.
const EnvPrefix = "CISCO_TRIAGE"

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig
	Rules     RulesConfig
	AI        AIConfig
	Usage     storage.Config
	LogLevel  string
	LogFormat string
}

// ServerConfig holds listener addresses and request limits.
type ServerConfig struct {
	APIAddr        string
	OTLPHTTPAddr   string
	OTLPGRPCAddr   string
	PprofAddr      string
	LiveEnabled    bool
	RequestTimeout time.Duration
	MaxUploadBytes int64
}

// RulesConfig selects the classification rules. A non-empty Profile wins
// over File.
type RulesConfig struct {
	File         string
	Profile      string
	PatternsFile string
}

// AIConfig holds one API key per AI feature.
type AIConfig struct {
	APIKeyLog  string
	APIKeySpec string
	APIKeyOS   string
	Timeout    time.Duration
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.api_addr", "0.0.0.0:8080")
	v.SetDefault("server.otlp_http_addr", "0.0.0.0:4318")
	v.SetDefault("server.otlp_grpc_addr", "0.0.0.0:4317")
	v.SetDefault("server.pprof_addr", "")
	v.SetDefault("server.live_enabled", true)
	v.SetDefault("server.request_timeout", "120s")
	v.SetDefault("server.max_upload_bytes", 20<<20)

	v.SetDefault("rules.file", "config/rules.yaml")
	v.SetDefault("rules.profile", "")
	v.SetDefault("rules.patterns_file", "config/patterns.yaml")

	v.SetDefault("ai.api_key_log", "")
	v.SetDefault("ai.api_key_spec", "")
	v.SetDefault("ai.api_key_os", "")
	v.SetDefault("ai.timeout", "90s")

	v.SetDefault("usage.backend", "memory")
	v.SetDefault("usage.sqlite_path", "data/usage.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configPath (optional) into v and decodes the result.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configPath, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			APIAddr:        v.GetString("server.api_addr"),
			OTLPHTTPAddr:   v.GetString("server.otlp_http_addr"),
			OTLPGRPCAddr:   v.GetString("server.otlp_grpc_addr"),
			PprofAddr:      v.GetString("server.pprof_addr"),
			LiveEnabled:    v.GetBool("server.live_enabled"),
			RequestTimeout: v.GetDuration("server.request_timeout"),
			MaxUploadBytes: v.GetInt64("server.max_upload_bytes"),
		},
		Rules: RulesConfig{
			File:         v.GetString("rules.file"),
			Profile:      v.GetString("rules.profile"),
			PatternsFile: v.GetString("rules.patterns_file"),
		},
		AI: AIConfig{
			APIKeyLog:  v.GetString("ai.api_key_log"),
			APIKeySpec: v.GetString("ai.api_key_spec"),
			APIKeyOS:   v.GetString("ai.api_key_os"),
			Timeout:    v.GetDuration("ai.timeout"),
		},
		Usage: storage.Config{
			Backend:    v.GetString("usage.backend"),
			SQLitePath: v.GetString("usage.sqlite_path"),
		},
		LogLevel:  v.GetString("log.level"),
		LogFormat: v.GetString("log.format"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.APIAddr == "" {
		errs = append(errs, errors.New("server.api_addr is required"))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("server.max_upload_bytes must be positive"))
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, errors.New("server.request_timeout must be positive"))
	}
	switch c.Usage.Backend {
	case "memory", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("usage.backend %q is not supported (memory, sqlite)", c.Usage.Backend))
	}
	if c.Usage.Backend == "sqlite" && c.Usage.SQLitePath == "" {
		errs = append(errs, errors.New("usage.sqlite_path is required for the sqlite backend"))
	}
	return errors.Join(errs...)
}
