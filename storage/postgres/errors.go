package postgres

import "errors"

var (
	// ErrNilDB indicates a nil *sql.DB was supplied.
	ErrNilDB = errors.New("postgres: database connection is nil")

	// ErrInvalidDimension indicates a non-positive embedding dimension.
	ErrInvalidDimension = errors.New("postgres: embedding dimension must be positive")
)
