package services

import (
	"errors"
	"fmt"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrInvalidState   = errors.New("invalid state")
	ErrImmutableState = errors.New("record is immutable")
	ErrPrecondition   = errors.New("precondition failed")
	ErrNotFound       = errors.New("not found")
	ErrRemote         = errors.New("backend failure")
)

const (
	KindValidation     = "validation"
	KindInvalidState   = "invalid_state"
	KindImmutableState = "immutable_state"
	KindPrecondition   = "precondition"
	KindNotFound       = "not_found"
	KindRemote         = "remote"
)

// Kind classifies err; anything unrecognised is a backend failure.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrInvalidState):
		return KindInvalidState
	case errors.Is(err, ErrImmutableState):
		return KindImmutableState
	case errors.Is(err, ErrPrecondition):
		return KindPrecondition
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindRemote
	}
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func invalidStatef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

func immutablef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrImmutableState, fmt.Sprintf(format, args...))
}

func preconditionf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPrecondition, fmt.Sprintf(format, args...))
}

func notFound(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

func remote(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrRemote, op, err)
}
