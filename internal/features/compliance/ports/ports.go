package ports

import (
	"context"

	"dockload/internal/features/compliance/domain"
	ldomain "dockload/internal/features/loading/domain"
)

// ReportService defines the primary port for compliance reports.
type ReportService interface {
	Generate(ctx context.Context, session *ldomain.Session) (*domain.ComplianceReport, error)
	Get(ctx context.Context, sessionID string) (*domain.ComplianceReport, error)
}

// ReportRepository defines the secondary port for report storage.
type ReportRepository interface {
	// FindBySession returns domain.ErrReportNotFound when the session has no report.
	FindBySession(ctx context.Context, sessionID string) (*domain.ComplianceReport, error)
	Save(ctx context.Context, report *domain.ComplianceReport) error
}
