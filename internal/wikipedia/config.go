package wikipedia

import (
	"fmt"
	"time"
)

const (
	// DefaultLanguage is the Wikipedia edition queried when none is configured
	DefaultLanguage = "en"

	// DefaultSearchLimit matches the result count of a plain provider search
	DefaultSearchLimit = 10

	// MaxSearchLimit is the provider's srlimit ceiling for anonymous clients
	MaxSearchLimit = 500

	// DefaultBreakerThreshold is the number of consecutive failures that opens the circuit
	DefaultBreakerThreshold = 5
)

// Config holds the provider settings. A Client is built from one Config and
// never consults process-wide state afterwards.
type Config struct {
	// Language selects the edition, e.g. "en" for en.wikipedia.org
	Language string `yaml:"language" validate:"required,hostname_rfc1123"`

	// APIURL overrides the endpoint derived from Language
	APIURL string `yaml:"api_url" validate:"omitempty,url"`

	UserAgent string        `yaml:"user_agent" validate:"required"`
	Timeout   time.Duration `yaml:"timeout" validate:"gt=0"`

	// Proxy is an HTTP(S) proxy URL; empty falls back to HTTP_PROXY/HTTPS_PROXY
	Proxy string `yaml:"proxy" validate:"omitempty,url"`

	SearchLimit int `yaml:"search_limit" validate:"min=1,max=500"`

	// AutoSuggest resolves a title through a search first, taking the top hit
	AutoSuggest bool `yaml:"auto_suggest"`

	// BreakerThreshold <= 0 disables the circuit breaker
	BreakerThreshold int `yaml:"breaker_threshold"`
}

// DefaultConfig returns the settings used when nothing is configured
func DefaultConfig() Config {
	return Config{
		Language:         DefaultLanguage,
		UserAgent:        "wikipedia-mcp-server/1.0 (https://github.com/olgasafonova/wikipedia-mcp-server)",
		Timeout:          30 * time.Second,
		SearchLimit:      DefaultSearchLimit,
		BreakerThreshold: DefaultBreakerThreshold,
	}
}

// Endpoint returns the Action API URL for the configured edition
func (c Config) Endpoint() string {
	if c.APIURL != "" {
		return c.APIURL
	}
	return fmt.Sprintf("https://%s.wikipedia.org/w/api.php", c.Language)
}
