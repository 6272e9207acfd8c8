package storage

import "errors"

// Storage errors shared by all backends.
var (
	// ErrNotFound is returned when a requested record or blob does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoData is returned when a query matches zero observations. Callers
	// must guard on it before feature construction.
	ErrNoData = errors.New("no data")

	// ErrDuplicateKey is returned when inserting a record whose key already
	// exists.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
