package model

import "errors"

// Sentinel kinds for model validation errors.
var (
	ErrInvalidTeam       = errors.New("invalid team")
	ErrDuplicateTeam     = errors.New("duplicate team id")
	ErrInvalidMatch      = errors.New("invalid match")
	ErrInvalidTournament = errors.New("invalid tournament")
	ErrCorruptRecord     = errors.New("corrupt tournament record")
)
