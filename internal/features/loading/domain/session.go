package domain

import (
	"fmt"
	"strings"
	"time"

	"dockload/internal/features/loading/ledger"
	mdomain "dockload/internal/features/manifest/domain"
)

// Discipline is the loading order policy of a session.
type Discipline string

const (
	// DisciplineStrict requires the reverse of delivery stop order ("LIFO").
	DisciplineStrict Discipline = "STRICT"
	// DisciplineUnordered accepts manifest cartons in any order ("non-LIFO").
	DisciplineUnordered Discipline = "UNORDERED"
)

// ParseDiscipline accepts "strict"/"lifo" and "unordered"/"non-lifo" in any case.
func ParseDiscipline(s string) (Discipline, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", "-")) {
	case "strict", "lifo":
		return DisciplineStrict, nil
	case "unordered", "non-lifo", "nonlifo":
		return DisciplineUnordered, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDiscipline, s)
	}
}

// Stage is the position of a session in the loading workflow.
type Stage string

const (
	StageManifestPending       Stage = "MANIFEST_PENDING"
	StageVehicleConfirmPending Stage = "VEHICLE_CONFIRM_PENDING"
	StageScanningInProgress    Stage = "SCANNING_IN_PROGRESS"
	StageCompleted             Stage = "COMPLETED"
)

// DeliveryStopCarton places a carton on the delivery route. Stop 1 is the
// first delivery.
type DeliveryStopCarton struct {
	CartonID           string `json:"carton_id"`
	StopSequenceNumber int    `json:"stop_sequence_number"`
	CustomerName       string `json:"customer_name"`
	Address            string `json:"address"`
}

// ExpectedSlot is one planned loading position under strict discipline.
type ExpectedSlot struct {
	CartonID           string `json:"carton_id"`
	StopSequenceNumber int    `json:"stop_sequence_number"`
	ExpectedPosition   int    `json:"expected_position"`
	CustomerName       string `json:"customer_name"`
}

// ViolationKind classifies a rejected scan.
type ViolationKind string

const (
	ViolationSequence  ViolationKind = "SEQUENCE"
	ViolationDuplicate ViolationKind = "DUPLICATE"
	ViolationUnknown   ViolationKind = "UNKNOWN"
	ViolationOverflow  ViolationKind = "OVERFLOW"
)

// ScanViolation is an append-only record of a rejected scan.
type ScanViolation struct {
	CartonID               string        `json:"carton_id"`
	ExpectedCartonID       string        `json:"expected_carton_id,omitempty"`
	ExpectedPosition       int           `json:"expected_position"`
	ActualExpectedPosition int           `json:"actual_expected_position"`
	Kind                   ViolationKind `json:"kind"`
	Message                string        `json:"message"`
	Timestamp              time.Time     `json:"timestamp"`
}

// ScanEvent is one accepted carton in load order.
type ScanEvent struct {
	CartonID  string    `json:"carton_id"`
	Position  int       `json:"position"`
	ScannedAt time.Time `json:"scanned_at"`
}

// MirrorFailure is a remote write that did not reach the record store. The
// in-memory state it mirrors stays authoritative.
type MirrorFailure struct {
	Operation  string    `json:"operation"`
	Collection string    `json:"collection"`
	Kind       string    `json:"kind"`
	Code       string    `json:"code,omitempty"`
	Message    string    `json:"message"`
	At         time.Time `json:"at"`
}

// Session is the aggregate root of one vehicle loading event. It exclusively
// owns the scanned set and the violation log.
type Session struct {
	ID                 string            `json:"session_id"`
	Discipline         Discipline        `json:"discipline"`
	Stage              Stage             `json:"stage"`
	Manifest           *mdomain.Manifest `json:"manifest,omitempty"`
	ConfirmedVehicleID string            `json:"confirmed_vehicle_id,omitempty"`
	LoadedBy           string            `json:"loaded_by,omitempty"`
	Scanned            map[string]bool   `json:"-"`
	ScanLog            []ScanEvent       `json:"scan_log"`
	ExpectedOrder      []ExpectedSlot    `json:"expected_order,omitempty"`
	CurrentScanCount   int               `json:"current_scan_count"`
	Violations         []ScanViolation   `json:"violations"`
	MirrorFailures     []MirrorFailure   `json:"mirror_failures,omitempty"`
	// Ledger is rebuilt from the manifest and never persisted.
	Ledger      *ledger.Ledger `json:"-"`
	CreatedAt   time.Time      `json:"created_at"`
	CompletedAt time.Time      `json:"completed_at,omitzero"`
}

// NewSession creates a session waiting for its manifest.
func NewSession(id string, discipline Discipline, loadedBy string, now time.Time) *Session {
	return &Session{
		ID:         id,
		Discipline: discipline,
		Stage:      StageManifestPending,
		LoadedBy:   loadedBy,
		Scanned:    make(map[string]bool),
		CreatedAt:  now,
	}
}

// TotalExpected is the number of manifest cartons, 0 before a manifest is accepted.
func (s *Session) TotalExpected() int {
	if s.Manifest == nil {
		return 0
	}
	return s.Manifest.TotalExpected()
}

// ScannedCount is the size of the scanned set.
func (s *Session) ScannedCount() int {
	return len(s.Scanned)
}

// IsComplete reports whether every manifest carton has been accepted.
func (s *Session) IsComplete() bool {
	return s.Manifest != nil && s.ScannedCount() == s.TotalExpected()
}

// NextExpected returns the unfilled strict slot, if any.
func (s *Session) NextExpected() (ExpectedSlot, bool) {
	if s.CurrentScanCount < len(s.ExpectedOrder) {
		return s.ExpectedOrder[s.CurrentScanCount], true
	}
	return ExpectedSlot{}, false
}

// Reset discards all session data and starts a new session under id, waiting
// for its manifest. Discipline and operator carry over.
func (s *Session) Reset(id string, now time.Time) {
	s.ID = id
	s.CreatedAt = now
	s.Stage = StageManifestPending
	s.Manifest = nil
	s.ConfirmedVehicleID = ""
	s.Scanned = make(map[string]bool)
	s.ScanLog = nil
	s.ExpectedOrder = nil
	s.CurrentScanCount = 0
	s.Violations = nil
	s.MirrorFailures = nil
	s.Ledger = nil
	s.CompletedAt = time.Time{}
}
