package mcptools

import "github.com/okian/pong/pkg/logger"

// Option configures the MCP tool server.
type Option func(*tools)

// WithLogger sets the logger for tool calls.
func WithLogger(l logger.Logger) Option {
	return func(t *tools) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithVersion sets the implementation version reported to clients.
func WithVersion(v string) Option {
	return func(t *tools) {
		if v != "" {
			t.version = v
		}
	}
}
