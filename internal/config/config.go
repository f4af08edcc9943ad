// Package config loads extractor settings from an optional YAML file and
// the environment. Environment variables override the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// Config is the top-level statement-extractor.yaml document.
type Config struct {
	Logging    LoggingConfig         `yaml:"logging"`
	Server     ServerConfig          `yaml:"server"`
	Pipeline   PipelineConfig        `yaml:"pipeline"`
	Categories []models.CategoryRule `yaml:"categories,omitempty"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text|json
}

// ServerConfig governs the HTTP API.
type ServerConfig struct {
	Port         int           `yaml:"port"`
	BodyLimitMB  int           `yaml:"body_limit_mb"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// PipelineConfig mirrors the extraction chain's switches.
type PipelineConfig struct {
	AIEnabled       bool          `yaml:"ai_enabled"`
	AITimeout       time.Duration `yaml:"ai_timeout"`
	AutoCategorize  bool          `yaml:"auto_categorize"`
	MergeDuplicates bool          `yaml:"merge_duplicates"`
	ValidateAmounts bool          `yaml:"validate_amounts"`
	MinAmount       float64       `yaml:"min_amount"`
	MaxAmount       float64       `yaml:"max_amount"`
}

const (
	defaultPort         = 8080
	defaultBodyLimitMB  = 50
	defaultReadTimeout  = 30 * time.Second
	defaultWriteTimeout = 60 * time.Second
	defaultAITimeout    = 30 * time.Second
	defaultLogLevel     = "info"
	defaultLogFormat    = "text"
)

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Server: ServerConfig{
			Port:         defaultPort,
			BodyLimitMB:  defaultBodyLimitMB,
			ReadTimeout:  defaultReadTimeout,
			WriteTimeout: defaultWriteTimeout,
		},
		Pipeline: PipelineConfig{
			AITimeout:       defaultAITimeout,
			AutoCategorize:  true,
			MergeDuplicates: true,
			ValidateAmounts: true,
			MinAmount:       0.01,
		},
	}
}

// Load reads path on top of the defaults and applies environment
// overrides. An empty path, or a path that does not exist, yields the
// defaults plus the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Logging.Level = valueOrDefault("EXTRACTOR_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = valueOrDefault("EXTRACTOR_LOG_FORMAT", cfg.Logging.Format)
	cfg.Pipeline.AIEnabled = parseBoolWithDefault("EXTRACTOR_AI_ENABLED", cfg.Pipeline.AIEnabled)

	port, err := parsePort("EXTRACTOR_PORT", cfg.Server.Port)
	if err != nil {
		return err
	}
	cfg.Server.Port = port

	if v := os.Getenv("EXTRACTOR_AI_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid EXTRACTOR_AI_TIMEOUT: %w", err)
		}
		cfg.Pipeline.AITimeout = d
	}
	return nil
}

func valueOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func parsePort(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	port, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if port <= 0 || port > 65535 {
		return 0, fmt.Errorf("invalid %s: %d out of range", key, port)
	}
	return port, nil
}
