package domain

import (
	"errors"
	"math"
	"slices"
	"time"

	ldomain "dockload/internal/features/loading/domain"
	"dockload/internal/features/loading/ledger"
)

var (
	// ErrReportNotFound is returned when a session has no compliance report.
	ErrReportNotFound = errors.New("compliance report not found")
	// ErrReportExists is returned when saving a second report for a session.
	ErrReportExists = errors.New("compliance report already exists")
)

// ComplianceReport is the terminal summary of a loading session. It is
// created once and never modified.
type ComplianceReport struct {
	ReportID             string                  `json:"report_id"`
	SessionID            string                  `json:"session_id"`
	ShipmentID           string                  `json:"shipment_id"`
	VehicleID            string                  `json:"vehicle_id"`
	Discipline           ldomain.Discipline      `json:"discipline"`
	TotalExpected        int                     `json:"total_expected"`
	TotalScanned         int                     `json:"total_scanned"`
	UnscannedIDs         []string                `json:"unscanned_ids"`
	Violations           []ldomain.ScanViolation `json:"violations"`
	CompletionPercentage int                     `json:"completion_percentage"`
	CustomerSummaries    []ledger.Summary        `json:"customer_summaries,omitempty"`
	GeneratedAt          time.Time               `json:"generated_at"`
}

// CompletionPercentage rounds scanned/expected to a whole percent.
func CompletionPercentage(scanned, expected int) int {
	if expected <= 0 {
		return 0
	}
	return int(math.Round(float64(scanned) / float64(expected) * 100))
}

// NewReport builds the report for a session.
func NewReport(reportID string, s *ldomain.Session, now time.Time) *ComplianceReport {
	r := &ComplianceReport{
		ReportID:      reportID,
		SessionID:     s.ID,
		VehicleID:     s.ConfirmedVehicleID,
		Discipline:    s.Discipline,
		TotalExpected: s.TotalExpected(),
		TotalScanned:  s.ScannedCount(),
		UnscannedIDs:  []string{},
		Violations:    slices.Clone(s.Violations),
		GeneratedAt:   now,
	}
	if r.Violations == nil {
		r.Violations = []ldomain.ScanViolation{}
	}

	if s.Manifest != nil {
		r.ShipmentID = s.Manifest.ShipmentID
		if r.VehicleID == "" {
			r.VehicleID = s.Manifest.VehicleID
		}
		for _, id := range s.Manifest.CartonIDs {
			if !s.Scanned[id] {
				r.UnscannedIDs = append(r.UnscannedIDs, id)
			}
		}
	}
	if s.Ledger != nil {
		r.CustomerSummaries = s.Ledger.Summaries()
	}

	r.CompletionPercentage = CompletionPercentage(r.TotalScanned, r.TotalExpected)
	return r
}
