package logger

import (
	"go.uber.org/zap"
)

// Standard field names for consistent structured logging.
// Use these constants instead of raw strings.
const (
	// Components
	FieldComponent = "component"
	FieldOperation = "operation"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts
	FieldCount      = "count"
	FieldTotalCount = "total_count"

	// Files and lines
	FieldFile   = "file"
	FieldLine   = "line"
	FieldLineNo = "line_no"
	FieldFormat = "format"

	// Annotation domain
	FieldVersion  = "version"
	FieldRule     = "rule"
	FieldVerdict  = "verdict"
	FieldSubject  = "subject"
	FieldTerm     = "term"
	FieldEvidence = "evidence"
	FieldTaxon    = "taxon"
	FieldGroup    = "group"
	FieldRunID    = "run_id"
)

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	p := pipeline.New(cfg, logger.ComponentLogger("pipeline"))
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// ChildLogger creates a child logger with additional context.
//
// Example:
//
//	fileLogger := logger.ChildLogger(base, logger.FieldFile, path)
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	return parent.With(keysAndValues...)
}
