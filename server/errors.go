package server

import "errors"

var (
	// ErrAnswererRequired is returned when NewServer is given a nil answerer.
	ErrAnswererRequired = errors.New("server: answerer is required")

	// ErrInvalidInterval is returned for a non-positive sweep interval.
	ErrInvalidInterval = errors.New("server: sweep interval must be positive")
)
