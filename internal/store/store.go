// internal/store/store.go

// Package store is the narrow persistence layer of the matching engine.
// Every SQL statement lives here; the scoring and transition logic
// above it operates on plain in-memory records and never sees a
// database handle.
package store

import "errors"

var ErrNotFound = errors.New("NOT_FOUND")
