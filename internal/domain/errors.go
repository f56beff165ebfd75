package domain

import "errors"

var (
	// ErrEmptyQuery is returned when a recommendation query is blank
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrValidation is returned when an entity is constructed from invalid data
	ErrValidation = errors.New("invalid entity data")

	// ErrNotFound is returned when a referenced resource is absent
	ErrNotFound = errors.New("resource not found")

	// ErrDataFormat is returned when bulk input is structurally invalid
	// (missing required columns or unparseable fields); the whole batch fails
	ErrDataFormat = errors.New("invalid data format")

	// ErrStoreFetch is returned when a request to the external store fails
	ErrStoreFetch = errors.New("store request failed")

	// ErrCacheMiss is returned when the product cache is absent or stale
	ErrCacheMiss = errors.New("cache miss")
)
