package api

import (
	"net/http"

	"github.com/okian/pong/pkg/logger"
)

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithRateLimit limits each client IP to rps requests per second with the
// given burst. A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		s.rps = rps
		if burst > 0 {
			s.burst = burst
		}
	}
}

// WithAllowedOrigins sets the CORS origins.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.origins = origins
		}
	}
}

// WithLogger sets a custom logger for the server.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMount attaches an extra handler (API docs, MCP) under pattern.
func WithMount(pattern string, h http.Handler) Option {
	return func(s *Server) {
		if pattern != "" && h != nil {
			s.mounts = append(s.mounts, mount{pattern: pattern, handler: h})
		}
	}
}
