package storage

import (
	"errors"
	"fmt"
)

// ErrDatabaseDriverNotRegistered is returned when the database driver is
// selected but no external implementation has been registered with the
// factory.
var ErrDatabaseDriverNotRegistered = errors.New("database driver selected but no implementation registered")

// UnknownDriverError reports a driver name outside the supported set.
type UnknownDriverError struct {
	// Driver is the rejected driver name.
	Driver string
}

// Error implements the error interface.
func (e *UnknownDriverError) Error() string {
	return fmt.Sprintf("unknown storage driver %q", e.Driver)
}

// LoadError represents a filesystem failure while reading policy data.
// Format errors never produce a LoadError; they decode to zero rules
// instead. A LoadError means something operational is wrong: permissions,
// disk faults, an unreadable directory.
type LoadError struct {
	// Path is the file or directory that failed.
	Path string

	// Message describes the failure.
	Message string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load policies from %q: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load policies from %q: %s", e.Path, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// SaveError represents a failure while persisting policy data.
type SaveError struct {
	// Path is the target file.
	Path string

	// Message describes the failure.
	Message string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *SaveError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to save policies to %q: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to save policies to %q: %s", e.Path, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *SaveError) Unwrap() error {
	return e.Cause
}
