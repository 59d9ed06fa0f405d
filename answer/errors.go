package answer

import "errors"

var (
	// ErrGuardRequired is returned when no input guard is provided.
	ErrGuardRequired = errors.New("input guard required")

	// ErrExpanderRequired is returned when no query expander is provided.
	ErrExpanderRequired = errors.New("query expander required")

	// ErrFuserRequired is returned when no retrieval engine is provided.
	ErrFuserRequired = errors.New("retrieval engine required")

	// ErrSynthesizerRequired is returned when no synthesis completer is provided.
	ErrSynthesizerRequired = errors.New("synthesis completer required")
)
