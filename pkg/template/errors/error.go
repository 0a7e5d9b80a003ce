package errors

import (
	"errors"
	"fmt"
	"strings"

	"alice-hq/hassil-parser/pkg/template/ast"
)

// ErrorType categorizes a template error.
type ErrorType string

const (
	ErrorTypeSyntax     ErrorType = "syntax"     // Unbalanced or malformed construct
	ErrorTypeReference  ErrorType = "reference"  // Unknown rule
	ErrorTypeCycle      ErrorType = "cycle"      // Self-referencing rule
	ErrorTypeLimit      ErrorType = "limit"      // Depth or size limit exceeded
	ErrorTypeStructural ErrorType = "structural" // Unusable rule or list shape
)

// Error is a template error with location and an optional suggestion.
type Error struct {
	Type       ErrorType
	Message    string
	Location   ast.Location
	Suggestion string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s", e.Type, e.Message))

	if e.Location.IsValid() {
		sb.WriteString("\n")
		sb.WriteString(Context(e.Location))
	}

	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("\n  = suggestion: %s", e.Suggestion))
	}

	return sb.String()
}

// Is reports whether target is an *Error of the same type. It lets callers
// test for a category with errors.Is(err, &Error{Type: ErrorTypeCycle}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Type == e.Type && (t.Message == "" || t.Message == e.Message)
}

// ErrorList accumulates errors instead of failing on the first one.
type ErrorList struct {
	Errors []*Error
}

// NewErrorList creates a new empty error list.
func NewErrorList() *ErrorList {
	return &ErrorList{
		Errors: make([]*Error, 0),
	}
}

// Add appends an error to the list. Lists are flattened.
func (el *ErrorList) Add(err error) {
	var list *ErrorList
	var e *Error
	switch {
	case err == nil:
	case errors.As(err, &list):
		el.Errors = append(el.Errors, list.Errors...)
	case errors.As(err, &e):
		el.Errors = append(el.Errors, e)
	default:
		el.Errors = append(el.Errors, &Error{Type: ErrorTypeStructural, Message: err.Error()})
	}
}

// AddError creates and adds a new error with the given parameters.
func (el *ErrorList) AddError(errType ErrorType, message string, location ast.Location) {
	el.Add(&Error{
		Type:     errType,
		Message:  message,
		Location: location,
	})
}

// HasErrors returns true if the error list contains any errors.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Count returns the number of errors in the list.
func (el *ErrorList) Count() int {
	return len(el.Errors)
}

// Error implements the error interface.
func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}
	if el.Count() == 1 {
		return el.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d error(s):\n", el.Count()))

	for i, err := range el.Errors {
		sb.WriteString(fmt.Sprintf("\nError %d:\n", i+1))
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}

	return sb.String()
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (el *ErrorList) Unwrap() []error {
	out := make([]error, len(el.Errors))
	for i, e := range el.Errors {
		out[i] = e
	}
	return out
}

// ToError returns nil if the error list is empty, otherwise returns the error list itself.
func (el *ErrorList) ToError() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}

// ByType returns all errors of the given type.
func (el *ErrorList) ByType(errType ErrorType) []*Error {
	var result []*Error
	for _, err := range el.Errors {
		if err.Type == errType {
			result = append(result, err)
		}
	}
	return result
}

// HasErrorType returns true if the error list contains at least one error of the given type.
func (el *ErrorList) HasErrorType(errType ErrorType) bool {
	return len(el.ByType(errType)) > 0
}
