// internal/engine/errors.go
package engine

import (
	"errors"
	"fmt"
)

// Code classifies a rejection so clients can distinguish "retry" (race)
// from "not yet" (phase) from "bad input" (validation).
type Code string

const (
	CodeValidation   Code = "validation"
	CodeIllegalPhase Code = "illegal_phase"
	CodeNotFound     Code = "not_found"
	CodeRaceRejected Code = "race_rejected"
	CodeUpstream     Code = "upstream_unavailable"
	CodeInternal     Code = "internal"
)

// Error is the engine's classified error. Every action is validated
// before any mutation, so a returned Error always means canonical state
// is untouched.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func errValidation(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func errIllegalPhase(format string, args ...any) *Error {
	return &Error{Code: CodeIllegalPhase, Message: fmt.Sprintf(format, args...)}
}

func errNotFound(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func errRaceRejected(format string, args ...any) *Error {
	return &Error{Code: CodeRaceRejected, Message: fmt.Sprintf(format, args...)}
}

func errInternal(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the classification from an error, defaulting to
// internal for anything unclassified.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
