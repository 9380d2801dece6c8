package domain

import "fmt"

// OutcomeKind is the validator's decision for one scan.
type OutcomeKind string

const (
	OutcomeAccepted          OutcomeKind = "ACCEPTED"
	OutcomeDuplicate         OutcomeKind = "DUPLICATE"
	OutcomeUnknown           OutcomeKind = "UNKNOWN"
	OutcomeSequenceViolation OutcomeKind = "SEQUENCE_VIOLATION"
	OutcomeOverflow          OutcomeKind = "OVERFLOW"
)

// Outcome is the structured result of validating one carton scan.
type Outcome struct {
	Kind     OutcomeKind `json:"kind"`
	CartonID string      `json:"carton_id"`
	// Position is the 1-based load position of an accepted carton.
	Position int `json:"position,omitempty"`
	// ExpectedID and ExpectedPosition describe the slot a strict scan had to fill.
	ExpectedID       string `json:"expected_id,omitempty"`
	ExpectedPosition int    `json:"expected_position,omitempty"`
	// ActualExpectedPosition is where the scanned carton is planned to go.
	ActualExpectedPosition int    `json:"actual_expected_position,omitempty"`
	CustomerName           string `json:"customer_name,omitempty"`
	CustomerComplete       bool   `json:"customer_complete,omitempty"`
	// Terminal is set on the accepted scan that completes the manifest.
	Terminal bool   `json:"terminal,omitempty"`
	Message  string `json:"message"`
}

// Accepted reports whether the scan was loaded.
func (o Outcome) Accepted() bool {
	return o.Kind == OutcomeAccepted
}

// Err returns the rejection as a *ValidationError, or nil when accepted.
func (o Outcome) Err() error {
	var kind ValidationKind
	expected, actual := o.ExpectedID, o.CartonID

	switch o.Kind {
	case OutcomeAccepted:
		return nil
	case OutcomeDuplicate:
		kind = ValidationDuplicateScan
	case OutcomeUnknown:
		kind = ValidationUnknownCarton
	case OutcomeOverflow:
		kind = ValidationLoadOverflow
	case OutcomeSequenceViolation:
		kind = ValidationSequenceViolation
		expected = fmt.Sprintf("%s (position %d)", o.ExpectedID, o.ExpectedPosition)
		actual = fmt.Sprintf("%s (position %d)", o.CartonID, o.ActualExpectedPosition)
	}

	return &ValidationError{
		Kind:     kind,
		Message:  o.Message,
		Expected: expected,
		Actual:   actual,
	}
}
