package core

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrReadOnly         = errors.New("read only")
	ErrNewEntryDisabled = errors.New("new entries are disabled")
	ErrUnknownField     = errors.New("unknown field")
	ErrRecordNotFound   = errors.New("record not found")
	ErrUnknownEdit      = errors.New("unknown edit")
	ErrEditInFlight     = errors.New("edit is already being committed")
	ErrStaleResponse    = errors.New("stale response discarded")
	ErrNotANumber       = errors.New("not a number")
)

var ErrInvalidEntry = func(index, length int) error {
	return fmt.Errorf("invalid list entry: %d (of %d)", index, length)
}

// ValidationError marks a single field that did not pass its constraint.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Column  string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Column, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// TransportError is returned when the endpoint answers with an error status.
type TransportError struct {
	Status  int
	Message string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("endpoint responded with status %d: %s", e.Status, e.Message)
}
