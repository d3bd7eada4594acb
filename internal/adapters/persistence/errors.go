package persistence

import "errors"

// Sentinel kinds for persistence errors.
var (
	ErrUnknownBackend = errors.New("unknown storage backend")
	ErrBackendConfig  = errors.New("invalid storage backend configuration")
)
