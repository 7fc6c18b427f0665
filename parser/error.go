package parser

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/teranos/gaffer/report"
)

// ErrorSeverity indicates the severity level of a parser error
type ErrorSeverity string

const (
	SeverityError   ErrorSeverity = "error"   // Line is skipped
	SeverityWarning ErrorSeverity = "warning" // Line is kept, possibly repaired
	SeverityInfo    ErrorSeverity = "info"    // Informational (e.g. filtered evidence)
)

// ErrorKind categorizes parser errors for programmatic handling
type ErrorKind string

const (
	ErrorKindSyntax   ErrorKind = "syntax"   // Malformed column or identifier
	ErrorKindSemantic ErrorKind = "semantic" // Well formed but not acceptable
	ErrorKindTemporal ErrorKind = "temporal" // Date column problems
	ErrorKindContext  ErrorKind = "context"  // File state (version header)
)

// ErrorContext selects how a ParseError renders.
type ErrorContext int

const (
	ErrorContextTerminal ErrorContext = iota
	ErrorContextPlain
)

// ParseError is a structured line-level problem. It is recorded in the report
// and returned in ParseResult.Problems; it is never used for control flow.
type ParseError struct {
	Err         error         // Underlying error
	Kind        ErrorKind     // Error category
	Severity    ErrorSeverity // Error severity
	Type        string        // Report message type
	Message     string        // Human-readable message
	Column      int           // 1-based column, 0 when not column specific
	Value       string        // Offending value
	Suggestions []string      // Possible fixes
}

// Error implements error interface
func (e *ParseError) Error() string {
	return e.FormatError(ErrorContextPlain)
}

// FormatError generates context-appropriate error message
func (e *ParseError) FormatError(ctx ErrorContext) string {
	if ctx == ErrorContextPlain {
		return e.formatPlainError()
	}
	return e.formatTerminalError()
}

// formatPlainError creates concise error for reports and logs
func (e *ParseError) formatPlainError() string {
	msg := e.Message
	if e.Column > 0 {
		msg += fmt.Sprintf(" (column %d)", e.Column)
	}
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(". Suggestions: %s", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

// formatTerminalError creates rich colored error for terminal
func (e *ParseError) formatTerminalError() string {
	var baseMsg string
	switch e.Severity {
	case SeverityError:
		baseMsg = pterm.Red(e.Message)
	case SeverityWarning:
		baseMsg = pterm.Yellow(e.Message)
	case SeverityInfo:
		baseMsg = pterm.Blue(e.Message)
	default:
		baseMsg = e.Message
	}

	context := ""
	if e.Column > 0 || e.Value != "" {
		context = fmt.Sprintf("\n  %s", pterm.LightCyan(e.Type))
		if e.Column > 0 {
			context += fmt.Sprintf("\n  %s %d", pterm.Yellow("Column:"), e.Column)
		}
		if e.Value != "" {
			context += fmt.Sprintf("\n  %s '%s'", pterm.Yellow("Value:"), e.Value)
		}
	}

	if len(e.Suggestions) > 0 {
		context += fmt.Sprintf("\n  %s", pterm.Green("Suggestions:"))
		for _, suggestion := range e.Suggestions {
			context += fmt.Sprintf("\n    • %s", suggestion)
		}
	}

	return baseMsg + context
}

// Unwrap for errors.Is/As compatibility
func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsWarning returns true if this error has warning severity specifically
func (e *ParseError) IsWarning() bool {
	return e.Severity == SeverityWarning
}

// Level maps the severity onto a report level.
func (e *ParseError) Level() report.Level {
	switch e.Severity {
	case SeverityWarning:
		return report.Warning
	case SeverityInfo:
		return report.Info
	}
	return report.Error
}

// Builder pattern for constructing ParseErrors

// NewParseError creates a new ParseError with error severity
func NewParseError(kind ErrorKind, typ, message string) *ParseError {
	return &ParseError{
		Kind:     kind,
		Severity: SeverityError,
		Type:     typ,
		Message:  message,
	}
}

// newWarning creates a ParseError with warning severity
func newWarning(kind ErrorKind, typ, message string) *ParseError {
	return NewParseError(kind, typ, message).WithSeverity(SeverityWarning)
}

// WithSeverity sets the error severity
func (e *ParseError) WithSeverity(sev ErrorSeverity) *ParseError {
	e.Severity = sev
	return e
}

// WithColumn sets the 1-based column the problem was found in
func (e *ParseError) WithColumn(col int) *ParseError {
	e.Column = col
	return e
}

// WithValue sets the offending value
func (e *ParseError) WithValue(v string) *ParseError {
	e.Value = v
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *ParseError) WithSuggestion(suggestion string) *ParseError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithUnderlying sets the underlying error
func (e *ParseError) WithUnderlying(err error) *ParseError {
	e.Err = err
	return e
}
