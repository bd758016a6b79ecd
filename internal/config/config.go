// Package config loads runtime configuration for the server. Values are
// layered: defaults, then an optional YAML file, then environment variables.
package config

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/olgasafonova/wikipedia-mcp-server/internal/wikipedia"
	"github.com/olgasafonova/wikipedia-mcp-server/tracing"
)

const (
	defaultLogLevel    = "info"
	defaultEnvironment = "development"
)

// Config holds runtime configuration values for the Wikipedia MCP server.
type Config struct {
	Wikipedia   wikipedia.Config `yaml:"wikipedia"`
	LogLevel    string           `yaml:"log_level"`
	HTTPAddr    string           `yaml:"http_addr"`
	SentryDSN   string           `yaml:"sentry_dsn"`
	Environment string           `yaml:"environment"`
	Tracing     tracing.Config   `yaml:"tracing"`
}

// Default returns the configuration used when no file or environment
// overrides are present
func Default() *Config {
	tc := tracing.DefaultConfig()
	tc.Environment = defaultEnvironment
	return &Config{
		Wikipedia:   wikipedia.DefaultConfig(),
		LogLevel:    defaultLogLevel,
		Environment: defaultEnvironment,
		Tracing:     tc,
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and environment variables apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "reading config file %s", path)
		}
		if err := decodeYAML(data, cfg); err != nil {
			return nil, eris.Wrapf(err, "parsing config file %s", path)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Wikipedia.Validate(); err != nil {
		return nil, eris.Wrap(err, "invalid wikipedia settings")
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}

	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnv(cfg *Config) error {
	w := &cfg.Wikipedia
	setString(&w.Language, "WIKIPEDIA_LANGUAGE")
	setString(&w.APIURL, "WIKIPEDIA_API_URL")
	setString(&w.UserAgent, "WIKIPEDIA_USER_AGENT")
	setString(&w.Proxy, "WIKIPEDIA_PROXY")

	if v := os.Getenv("WIKIPEDIA_TIMEOUT"); v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return eris.Wrapf(err, "invalid WIKIPEDIA_TIMEOUT value: %s", v)
		}
		w.Timeout = d
	}
	if err := setInt(&w.SearchLimit, "WIKIPEDIA_SEARCH_LIMIT"); err != nil {
		return err
	}
	if err := setInt(&w.BreakerThreshold, "WIKIPEDIA_BREAKER_THRESHOLD"); err != nil {
		return err
	}
	if err := setBool(&w.AutoSuggest, "WIKIPEDIA_AUTO_SUGGEST"); err != nil {
		return err
	}

	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.HTTPAddr, "MCP_HTTP_ADDR")
	setString(&cfg.SentryDSN, "SENTRY_DSN")
	setString(&cfg.Environment, "ENV")

	t := &cfg.Tracing
	setString(&t.Environment, "OTEL_ENVIRONMENT")
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		t.OTLPEndpoint = v
		t.Enabled = true
	}
	if err := setBool(&t.Enabled, "OTEL_ENABLED"); err != nil {
		return err
	}
	if v := os.Getenv("OTEL_SAMPLE_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return eris.Wrapf(err, "invalid OTEL_SAMPLE_RATE value: %s", v)
		}
		t.SampleRate = rate
	}

	return nil
}

// parseTimeout accepts a Go duration ("15s") or whole seconds ("15")
func parseTimeout(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return eris.Wrapf(err, "invalid %s value: %s", key, v)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return eris.Wrapf(err, "invalid %s value: %s", key, v)
	}
	*dst = b
	return nil
}

// ParseLevel maps a LOG_LEVEL value to a slog level
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, eris.Errorf("invalid LOG_LEVEL value: %s", level)
	}
}
