package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dockload/internal/core/logger"
	"dockload/internal/features/compliance/domain"
	"dockload/internal/features/compliance/ports"
	ldomain "dockload/internal/features/loading/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ReportServiceImpl implements ports.ReportService.
type ReportServiceImpl struct {
	repo  ports.ReportRepository
	group singleflight.Group
	now   func() time.Time
	log   *zap.Logger
}

// NewReportService creates a new ReportServiceImpl. A nil clock uses time.Now.
func NewReportService(repo ports.ReportRepository, now func() time.Time) *ReportServiceImpl {
	if now == nil {
		now = time.Now
	}
	return &ReportServiceImpl{
		repo: repo,
		now:  now,
		log:  logger.Named("reporter"),
	}
}

// Generate persists the session's report exactly once. Concurrent calls for
// the same session share one store round trip, and a session that already has
// a report gets the stored one back.
func (s *ReportServiceImpl) Generate(ctx context.Context, session *ldomain.Session) (*domain.ComplianceReport, error) {
	v, err, _ := s.group.Do(session.ID, func() (any, error) {
		existing, err := s.repo.FindBySession(ctx, session.ID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, domain.ErrReportNotFound) {
			return nil, fmt.Errorf("service: failed to look up report: %w", err)
		}

		report := domain.NewReport(uuid.NewString(), session, s.now())
		err = s.repo.Save(ctx, report)
		if errors.Is(err, domain.ErrReportExists) {
			// Another instance saved first.
			return s.repo.FindBySession(ctx, session.ID)
		}
		if err != nil {
			return nil, fmt.Errorf("service: failed to save report: %w", err)
		}

		s.log.Info("Compliance report generated",
			zap.String("session_id", session.ID),
			zap.String("report_id", report.ReportID),
			zap.Int("completion_percentage", report.CompletionPercentage),
			zap.Int("violations", len(report.Violations)),
		)
		return report, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.ComplianceReport), nil
}

// Get retrieves the stored report of a session.
func (s *ReportServiceImpl) Get(ctx context.Context, sessionID string) (*domain.ComplianceReport, error) {
	report, err := s.repo.FindBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrReportNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service: failed to get report: %w", err)
	}

	return report, nil
}
