package simulate

import "time"

// Default configuration constants.
const (
	DefaultTeams       = 12
	DefaultGroups      = 3
	DefaultQualifiers  = 2
	DefaultMaxScore    = 10
	DefaultConcurrency = 8
	DefaultTimeout     = 10 * time.Second
)

// Header names shared with the API.
const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotent-Replayed"
)

const maxErrorBody = 4 << 10
