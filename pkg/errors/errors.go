// Package errors provides structured error types for the pedigree layout engine.
//
// Every failure the engine reports is an [*Error] carrying a machine-readable
// [Code]. Codes are grouped by origin:
//   - Structural: the family graph itself is malformed (cycles, bad parent
//     references, malformed hints, runaway recursion)
//   - Semantic: the input is well formed but contradicts itself (same-sex
//     marriage hints, a mother recorded as male)
//   - Numerical: the position solver could not satisfy its constraints
//   - Canvas: the drawing area cannot hold the layout
//
// # Usage
//
//	err := errors.New(errors.ErrCodeCyclicPedigree, "individual %d is their own ancestor", i)
//	if errors.Is(err, errors.ErrCodeCyclicPedigree) {
//	    // Fix the input and retry
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeQPInfeasible, cause, "refine positions")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Structural errors
	ErrCodeCyclicPedigree         Code = "CYCLIC_PEDIGREE"
	ErrCodeInvalidParentReference Code = "INVALID_PARENT_REFERENCE"
	ErrCodeInvalidHintShape       Code = "INVALID_HINT_SHAPE"
	ErrCodeAlignmentTooDeep       Code = "ALIGNMENT_TOO_DEEP"
	ErrCodeIncompleteLayout       Code = "INCOMPLETE_LAYOUT"

	// Semantic errors
	ErrCodeInvalidSpouseIndex   Code = "INVALID_SPOUSE_INDEX"
	ErrCodeInvalidSpousePairing Code = "INVALID_SPOUSE_PAIRING"
	ErrCodeInvalidParentSex     Code = "INVALID_PARENT_SEX"
	ErrCodeInvalidRelation      Code = "INVALID_RELATION"
	ErrCodeInvalidSex           Code = "INVALID_SEX"

	// Numerical errors
	ErrCodeQPInfeasible          Code = "QP_INFEASIBLE"
	ErrCodeQPNotPositiveDefinite Code = "QP_NOT_POSITIVE_DEFINITE"

	// Canvas errors
	ErrCodeInvalidCanvasSize Code = "INVALID_CANVAS_SIZE"

	// Input and file errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Index   []int  // Offending individual indices, if any
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// WithIndex attaches the offending individual indices and returns e.
func (e *Error) WithIndex(idx ...int) *Error {
	e.Index = append(e.Index, idx...)
	return e
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Indices returns the offending individual indices recorded on err, if any.
func Indices(err error) []int {
	var e *Error
	if errors.As(err, &e) {
		return e.Index
	}
	return nil
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsStructural reports whether err describes a malformed family graph.
func IsStructural(err error) bool {
	switch GetCode(err) {
	case ErrCodeCyclicPedigree, ErrCodeInvalidParentReference,
		ErrCodeInvalidHintShape, ErrCodeAlignmentTooDeep, ErrCodeIncompleteLayout:
		return true
	}
	return false
}

// IsNumerical reports whether err came from the position solver. Numerical
// failures leave depths and alignment intact, so a caller may retry with
// relaxed spacing options.
func IsNumerical(err error) bool {
	switch GetCode(err) {
	case ErrCodeQPInfeasible, ErrCodeQPNotPositiveDefinite:
		return true
	}
	return false
}
