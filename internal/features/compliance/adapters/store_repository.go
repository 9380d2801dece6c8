package adapters

import (
	"context"
	"encoding/json"
	"fmt"

	"dockload/internal/core/recordstore"
	"dockload/internal/features/compliance/domain"
)

// StoreReportRepository implements ports.ReportRepository on the record store.
// Reports are keyed by session id, so the store itself refuses a second report
// for the same session.
type StoreReportRepository struct {
	store recordstore.Store
}

// NewStoreReportRepository creates a new StoreReportRepository.
func NewStoreReportRepository(store recordstore.Store) *StoreReportRepository {
	return &StoreReportRepository{
		store: store,
	}
}

// Save stores the report with its violations nested in the same record.
func (r *StoreReportRepository) Save(ctx context.Context, report *domain.ComplianceReport) error {
	rec, err := toRecord(report)
	if err != nil {
		return err
	}

	if _, err := r.store.Insert(ctx, recordstore.CollectionReports, rec); err != nil {
		if recordstore.IsDuplicate(err) {
			return domain.ErrReportExists
		}
		return fmt.Errorf("failed to save report: %w", err)
	}

	return nil
}

// FindBySession retrieves the report of a session.
func (r *StoreReportRepository) FindBySession(ctx context.Context, sessionID string) (*domain.ComplianceReport, error) {
	recs, err := r.store.Select(ctx, recordstore.CollectionReports,
		recordstore.Filter{"session_id": sessionID},
		recordstore.Order{Field: "generated_at"},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	if len(recs) == 0 {
		return nil, domain.ErrReportNotFound
	}

	return fromRecord(recs[0])
}

func toRecord(report *domain.ComplianceReport) (recordstore.Record, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	var rec recordstore.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	rec[recordstore.IDField] = report.SessionID
	return rec, nil
}

func fromRecord(rec recordstore.Record) (*domain.ComplianceReport, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report record: %w", err)
	}
	var report domain.ComplianceReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report record: %w", err)
	}
	return &report, nil
}
