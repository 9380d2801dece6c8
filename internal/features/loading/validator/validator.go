// Package validator decides the outcome of a single carton scan against the
// session's in-memory state. The decision never waits on I/O.
package validator

import (
	"fmt"
	"time"

	"dockload/internal/features/loading/domain"
	"dockload/internal/features/loading/planner"
	mdomain "dockload/internal/features/manifest/domain"
)

// Validator validates carton scans.
type Validator struct {
	now func() time.Time
}

// New creates a Validator. A nil clock uses time.Now.
func New(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{now: now}
}

// Validate decides one scan and applies it to the session. Accepted cartons
// join the scanned set and the ledger; every rejection is appended to the
// violation log and leaves the scanned set and the strict slot pointer as they
// were. The caller serializes access to the session.
func (v *Validator) Validate(identifier string, s *domain.Session) domain.Outcome {
	id := mdomain.NormalizeID(identifier)

	if s.Scanned[id] {
		return v.reject(s, domain.Outcome{
			Kind:     domain.OutcomeDuplicate,
			CartonID: id,
			Message:  fmt.Sprintf("Carton %s was already loaded", id),
		})
	}

	if !s.Manifest.Contains(id) {
		return v.reject(s, domain.Outcome{
			Kind:     domain.OutcomeUnknown,
			CartonID: id,
			Message:  fmt.Sprintf("Carton %s is not on manifest %s", id, s.Manifest.ShipmentID),
		})
	}

	if s.ScannedCount() >= s.TotalExpected() {
		return v.reject(s, domain.Outcome{
			Kind:     domain.OutcomeOverflow,
			CartonID: id,
			Message:  fmt.Sprintf("All %d cartons are already loaded; %s is one too many", s.TotalExpected(), id),
		})
	}

	if s.Discipline != domain.DisciplineStrict || len(s.ExpectedOrder) == 0 {
		return v.accept(s, id, s.ScannedCount()+1)
	}

	// Tentatively claim the next slot; a mismatch gives it back so the next
	// scan is compared against the same slot.
	s.CurrentScanCount++
	n := s.CurrentScanCount
	if n > len(s.ExpectedOrder) {
		s.CurrentScanCount--
		return v.reject(s, domain.Outcome{
			Kind:     domain.OutcomeOverflow,
			CartonID: id,
			Message:  fmt.Sprintf("The load plan has only %d slots", len(s.ExpectedOrder)),
		})
	}

	slot := s.ExpectedOrder[n-1]
	if slot.CartonID != id {
		s.CurrentScanCount--
		actual := planner.PositionOf(s.ExpectedOrder, id)
		return v.reject(s, domain.Outcome{
			Kind:                   domain.OutcomeSequenceViolation,
			CartonID:               id,
			ExpectedID:             slot.CartonID,
			ExpectedPosition:       n,
			ActualExpectedPosition: actual,
			Message: fmt.Sprintf("Out of sequence: load %s at position %d first; %s belongs at position %d",
				slot.CartonID, n, id, actual),
		})
	}

	return v.accept(s, id, n)
}

func (v *Validator) accept(s *domain.Session, id string, position int) domain.Outcome {
	now := v.now()
	s.Scanned[id] = true
	s.ScanLog = append(s.ScanLog, domain.ScanEvent{CartonID: id, Position: position, ScannedAt: now})
	if s.Discipline != domain.DisciplineStrict || len(s.ExpectedOrder) == 0 {
		s.CurrentScanCount = s.ScannedCount()
	}

	out := domain.Outcome{
		Kind:     domain.OutcomeAccepted,
		CartonID: id,
		Position: position,
		Terminal: s.IsComplete(),
	}

	if s.Ledger != nil {
		if summary, ok := s.Ledger.Record(id); ok {
			out.CustomerName = summary.CustomerName
			out.CustomerComplete = summary.Complete()
			out.Message = fmt.Sprintf("Carton %s loaded at position %d for %s (%d/%d)",
				id, position, summary.CustomerName, summary.Scanned, summary.Expected)
		}
	}
	if out.Message == "" {
		out.Message = fmt.Sprintf("Carton %s loaded at position %d", id, position)
	}
	if out.Terminal {
		out.Message += "; all cartons loaded"
	}
	return out
}

func (v *Validator) reject(s *domain.Session, out domain.Outcome) domain.Outcome {
	if s.Ledger != nil {
		out.CustomerName, _ = s.Ledger.CustomerOf(out.CartonID)
	}

	s.Violations = append(s.Violations, domain.ScanViolation{
		CartonID:               out.CartonID,
		ExpectedCartonID:       out.ExpectedID,
		ExpectedPosition:       out.ExpectedPosition,
		ActualExpectedPosition: out.ActualExpectedPosition,
		Kind:                   violationKind(out.Kind),
		Message:                out.Message,
		Timestamp:              v.now(),
	})
	return out
}

func violationKind(kind domain.OutcomeKind) domain.ViolationKind {
	switch kind {
	case domain.OutcomeDuplicate:
		return domain.ViolationDuplicate
	case domain.OutcomeUnknown:
		return domain.ViolationUnknown
	case domain.OutcomeOverflow:
		return domain.ViolationOverflow
	default:
		return domain.ViolationSequence
	}
}
