package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrInvalidCompletion = errors.New("invalid match completion")
	ErrPhaseLocked       = errors.New("tournament phase does not allow this change")
	ErrMatchLocked       = errors.New("match is locked")
	ErrNotReady          = errors.New("knockout phase cannot start")
)
