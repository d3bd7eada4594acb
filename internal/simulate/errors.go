package simulate

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	ErrUnhealthy     = errors.New("service is not healthy")
	ErrNotReady      = errors.New("knockout is not ready")
	ErrStalled       = errors.New("bracket has no playable match")
	ErrNoChampion    = errors.New("tournament finished without a champion")
	ErrReplayIgnored = errors.New("idempotent replay was applied twice")
	ErrInvalidConfig = errors.New("invalid simulation config")
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.Status, e.Code, e.Message)
}
