// Package errors provides error handling for gaffer.
//
// This package re-exports github.com/cockroachdb/errors, providing stack
// traces, wrapping, hints and details.
//
// Per-line parse and rule problems are never errors: they are recorded in a
// report.Report. Errors are reserved for I/O, configuration and the single
// whole-file fatal condition (ErrNoVersion).
//
// Usage:
//
//	if err := loadOntology(path); err != nil {
//	    return errors.Wrapf(err, "load ontology %s", path)
//	}
//
//	if errors.Is(err, errors.ErrNoVersion) {
//	    // abort the stream, keep the partial report
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint        = crdb.WithHint
	WithHintf       = crdb.WithHintf
	WithDetail      = crdb.WithDetail
	WithDetailf     = crdb.WithDetailf
	GetAllHints     = crdb.GetAllHints
	GetAllDetails   = crdb.GetAllDetails
	FlattenHints    = crdb.FlattenHints
	FlattenDetails  = crdb.FlattenDetails
	WithSafeDetails = crdb.WithSafeDetails
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Sentinel errors. Wrap these to add context while preserving identity.
var (
	// ErrNoVersion is the whole-file fatal condition: a data line was reached
	// before any version header and no format was forced by the caller.
	ErrNoVersion = New("no version header in file")

	// ErrUnknownFormat indicates a requested file format is not supported
	ErrUnknownFormat = New("unknown annotation format")

	// ErrInvalidConfig indicates a configuration value failed validation
	ErrInvalidConfig = New("invalid configuration")

	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = New("not found")
)

// IsFatal reports whether err aborts a whole-file parse.
func IsFatal(err error) bool {
	return err != nil && Is(err, ErrNoVersion)
}

// IsNotFoundError checks if an error is or wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}

// NewInvalidConfigError creates an invalid-config error with a formatted message
func NewInvalidConfigError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidConfig, Newf(format, args...).Error())
}
