package persistence

import (
	"errors"
	"fmt"
)

// ErrScreeningNotFound is returned by Update when no partition holds the ID.
var ErrScreeningNotFound = errors.New("screening not found")

// ErrCinemaNotFound is returned when a cinema ID does not resolve.
var ErrCinemaNotFound = errors.New("cinema not found")

// StorageError reports a failed read or write against a specific file, so
// callers can tell an I/O fault (retry or abort) from a business-rule
// rejection (fix the input).
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op, path string, err error) *StorageError {
	return &StorageError{Op: op, Path: path, Err: err}
}
