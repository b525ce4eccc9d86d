package database

import "errors"

var (
	// ErrURLExists is returned when an attempt is made to create a record
	// for an original URL that already has one. Callers recover by
	// re-fetching the existing record.
	ErrURLExists = errors.New("url exists")
	// ErrURLNotFound is returned when an attempt is made to retrieve
	// a record that doesn't exist.
	ErrURLNotFound = errors.New("url not found")
)
