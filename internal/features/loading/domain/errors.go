package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned when no live session has the given id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidDiscipline is returned for an unknown loading discipline.
	ErrInvalidDiscipline = errors.New("invalid loading discipline")
	// ErrInvalidKeyEvent is returned for a keystroke with an unreadable timestamp.
	ErrInvalidKeyEvent = errors.New("invalid key event")
)

// ValidationKind classifies a rejected operator input.
type ValidationKind string

const (
	ValidationEmptyInput        ValidationKind = "EMPTY_INPUT"
	ValidationOversizedInput    ValidationKind = "OVERSIZED_INPUT"
	ValidationUnknownCarton     ValidationKind = "UNKNOWN_CARTON"
	ValidationDuplicateScan     ValidationKind = "DUPLICATE_SCAN"
	ValidationSequenceViolation ValidationKind = "SEQUENCE_VIOLATION"
	ValidationVehicleMismatch   ValidationKind = "VEHICLE_MISMATCH"
	ValidationNoSequencePlan    ValidationKind = "NO_SEQUENCE_PLAN"
	ValidationLoadOverflow      ValidationKind = "LOAD_OVERFLOW"
)

// ValidationError is a rejected input the operator can correct. The session
// stays in its current stage.
type ValidationError struct {
	Kind     ValidationKind `json:"kind"`
	Message  string         `json:"message"`
	Expected string         `json:"expected,omitempty"`
	Actual   string         `json:"actual,omitempty"`
}

func (e *ValidationError) Error() string {
	if e.Expected == "" && e.Actual == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s (expected %s, got %s)", e.Kind, e.Message, e.Expected, e.Actual)
}

// StateError is an operation attempted in the wrong stage.
type StateError struct {
	Stage     Stage
	Operation string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s while session is %s", e.Operation, e.Stage)
}
