package ports

import (
	"context"

	cdomain "dockload/internal/features/compliance/domain"
	"dockload/internal/features/loading/domain"
	"dockload/internal/features/loading/input"
	mdomain "dockload/internal/features/manifest/domain"
)

// KeyEvent is one keystroke from the operator device.
type KeyEvent struct {
	Key string `json:"key"`
	// At is the device timestamp in RFC 3339; empty means the arrival time.
	At string `json:"at,omitempty"`
}

// Feedback is the structured answer to one committed input line.
type Feedback struct {
	SessionID string       `json:"session_id"`
	Stage     domain.Stage `json:"stage"`
	// Input is the committed line and how it was entered.
	Input    *input.Commit             `json:"input,omitempty"`
	Manifest *mdomain.Manifest         `json:"manifest,omitempty"`
	Outcome  *domain.Outcome           `json:"outcome,omitempty"`
	Report   *cdomain.ComplianceReport `json:"report,omitempty"`
	Message  string                    `json:"message"`
	// Error is set when the line was rejected; the session stays in Stage.
	Error string `json:"error,omitempty"`
}

// Progress is a read-only view of a session.
type Progress struct {
	SessionID      string                 `json:"session_id"`
	Stage          domain.Stage           `json:"stage"`
	Discipline     domain.Discipline      `json:"discipline"`
	ShipmentID     string                 `json:"shipment_id,omitempty"`
	VehicleID      string                 `json:"vehicle_id,omitempty"`
	TotalExpected  int                    `json:"total_expected"`
	TotalScanned   int                    `json:"total_scanned"`
	NextExpected   *domain.ExpectedSlot   `json:"next_expected,omitempty"`
	ExpectedOrder  []domain.ExpectedSlot  `json:"expected_order,omitempty"`
	ScanLog        []domain.ScanEvent     `json:"scan_log"`
	Customers      []CustomerProgress     `json:"customers,omitempty"`
	Violations     []domain.ScanViolation `json:"violations"`
	MirrorFailures []domain.MirrorFailure `json:"mirror_failures,omitempty"`
	PendingInput   string                 `json:"pending_input,omitempty"`
	LastFeedback   *Feedback              `json:"last_feedback,omitempty"`
}

// CustomerProgress is one customer's share of a consolidated load.
type CustomerProgress struct {
	CustomerName string `json:"customer_name"`
	Expected     int    `json:"expected"`
	Scanned      int    `json:"scanned"`
	Complete     bool   `json:"complete"`
}

// LoadingService defines the primary port for dock loading sessions.
type LoadingService interface {
	Open(ctx context.Context, discipline, operator string) (*Progress, error)
	Input(ctx context.Context, sessionID, text string) (*Feedback, error)
	Keys(ctx context.Context, sessionID string, events []KeyEvent, submit bool) (*Feedback, error)
	Progress(ctx context.Context, sessionID string) (*Progress, error)
	Reset(ctx context.Context, sessionID string) (*Progress, error)
	RegisterStops(ctx context.Context, shipmentID string, stops []domain.DeliveryStopCarton) error
}

// SessionRepository persists sessions and manifests. Its calls block the
// stage transition that needs them.
type SessionRepository interface {
	SaveManifest(ctx context.Context, session *domain.Session) error
	SaveVehicleConfirmation(ctx context.Context, session *domain.Session) error
}

// StopSource provides the delivery route of a shipment.
type StopSource interface {
	StopsFor(ctx context.Context, shipmentID string) ([]domain.DeliveryStopCarton, error)
	SaveStops(ctx context.Context, shipmentID string, stops []domain.DeliveryStopCarton) error
}

// ScanMirror copies scan progress to the record store in the background.
// Failures never undo the in-memory state.
type ScanMirror interface {
	CartonLoaded(session *domain.Session, event domain.ScanEvent)
	ViolationRecorded(session *domain.Session, violation domain.ScanViolation)
	SessionCompleted(session *domain.Session)
	// SessionReset marks previousID as superseded by the session's new id.
	SessionReset(session *domain.Session, previousID string)
}

// Reporter produces the compliance report of a completed session.
type Reporter interface {
	Generate(ctx context.Context, session *domain.Session) (*cdomain.ComplianceReport, error)
}
