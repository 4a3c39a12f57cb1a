// Package domain contains the core business entities and rules.
// These types have no knowledge of storage, HTTP, or any infrastructure concerns.
package domain

import (
	"errors"
	"fmt"
)

// Errors for common domain-level failures.
var (
	// ErrInvalidArgument means caller-supplied input failed a precondition.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState means the operation is not permitted in the current state.
	ErrInvalidState = errors.New("invalid state")

	// ErrDuplicateKey is returned when an identifier is already catalogued.
	ErrDuplicateKey = fmt.Errorf("%w: duplicate identifier", ErrInvalidArgument)

	// ErrBookNotFound is returned when an operation needs a book that is not catalogued.
	ErrBookNotFound = fmt.Errorf("%w: no such book", ErrInvalidState)
)

// ValidationError represents a single input validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

// Is reports ValidationError as an ErrInvalidArgument.
func (e ValidationError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("%d validation errors", len(e))
}

func (e ValidationErrors) Is(target error) bool {
	return target == ErrInvalidArgument
}

// StateError reports a transition that the current state does not allow.
type StateError struct {
	Op     string
	Reason string
}

func (e StateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// Is reports StateError as an ErrInvalidState.
func (e StateError) Is(target error) bool {
	return target == ErrInvalidState
}
