// Package domain holds the core data model shared by the correlator, the
// parser and the CLI: breakpoints and the request error taxonomy.
package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is a machine-readable category for a failed request.
type ErrorKind string

const (
	// KindInvalidInput - empty/whitespace command or a denied meta-command;
	// detected before any I/O happens.
	KindInvalidInput ErrorKind = "invalid_input"
	// KindNotAvailable - no active debugger session, or the scrollback pane
	// could not be resolved.
	KindNotAvailable ErrorKind = "not_available"
	// KindCommandFailed - writing the command to the process failed, or the
	// reply itself signalled a generic failure.
	KindCommandFailed ErrorKind = "command_failed"
	// KindTimeout - no recognized reply boundary within the configured timeout.
	KindTimeout ErrorKind = "timeout"
	// KindCancelled - the caller withdrew interest before completion.
	KindCancelled ErrorKind = "cancelled"
	// KindAccessDenied - the reply text signals inaccessible memory or state.
	KindAccessDenied ErrorKind = "access_denied"
	// KindExpressionInvalid - the reply text signals an unknown symbol or a
	// malformed expression.
	KindExpressionInvalid ErrorKind = "expression_invalid"
)

// RequestError is the typed failure surfaced by every correlator request.
// Command carries the source command so breakpoint failures can name what
// was sent; Cause preserves the underlying transport error when one exists.
type RequestError struct {
	Kind    ErrorKind
	Command string
	Message string
	Cause   error
}

func (e *RequestError) Error() string {
	if e.Command != "" {
		return fmt.Sprintf("%s: %s (command: %q)", e.Kind, e.Message, e.Command)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for error chaining.
func (e *RequestError) Unwrap() error {
	return e.Cause
}

// NewRequestError builds a RequestError for the given kind and command.
func NewRequestError(kind ErrorKind, command, format string, args ...interface{}) *RequestError {
	return &RequestError{
		Kind:    kind,
		Command: command,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithCause attaches the underlying error and returns the receiver.
func (e *RequestError) WithCause(err error) *RequestError {
	e.Cause = err
	return e
}

// KindOf extracts the ErrorKind from err, or KindCommandFailed when err is
// not a RequestError. A nil err has no kind and returns "".
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var re *RequestError
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindCommandFailed
}
