package main

import (
	"log/slog"
	"net/http"
)

// SecurityConfig configures the HTTP-mode guard in front of the MCP endpoint
type SecurityConfig struct {
	// MaxBodySize caps request bodies in bytes; 0 disables the cap
	MaxBodySize int64
}

// DefaultSecurityConfig returns the limits used by the HTTP transport
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		MaxBodySize: 1 << 20,
	}
}

// SecurityMiddleware caps request body size. Bodies that declare an oversized
// length are refused with 413 before the MCP handler sees them.
type SecurityMiddleware struct {
	next   http.Handler
	logger *slog.Logger
	config SecurityConfig
}

// NewSecurityMiddleware wraps next with the configured limits
func NewSecurityMiddleware(next http.Handler, logger *slog.Logger, config SecurityConfig) *SecurityMiddleware {
	return &SecurityMiddleware{
		next:   next,
		logger: logger,
		config: config,
	}
}

func (sm *SecurityMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if sm.config.MaxBodySize > 0 && r.Body != nil {
		if r.ContentLength > sm.config.MaxBodySize {
			sm.logger.Warn("Request body too large",
				"remote_addr", r.RemoteAddr,
				"content_length", r.ContentLength,
				"limit", sm.config.MaxBodySize)
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, sm.config.MaxBodySize)
	}

	sm.next.ServeHTTP(w, r)
}
