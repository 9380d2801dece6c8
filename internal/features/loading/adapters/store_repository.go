package adapters

import (
	"context"
	"fmt"

	"dockload/internal/core/recordstore"
	"dockload/internal/features/loading/domain"
	"dockload/internal/features/loading/planner"

	"golang.org/x/sync/errgroup"
)

// seedConcurrency bounds parallel carton inserts at vehicle confirmation.
const seedConcurrency = 8

// StoreSessionRepository implements ports.SessionRepository on the record store.
type StoreSessionRepository struct {
	store recordstore.Store
}

// NewStoreSessionRepository creates a new StoreSessionRepository.
func NewStoreSessionRepository(store recordstore.Store) *StoreSessionRepository {
	return &StoreSessionRepository{
		store: store,
	}
}

// SaveManifest records the shipment and creates or updates the session record.
func (r *StoreSessionRepository) SaveManifest(ctx context.Context, s *domain.Session) error {
	if _, err := r.store.Insert(ctx, recordstore.CollectionShipments, shipmentRecord(s)); err != nil {
		return fmt.Errorf("failed to save shipment: %w", err)
	}
	if err := r.upsertSession(ctx, s); err != nil {
		return err
	}
	return nil
}

// SaveVehicleConfirmation updates the session record and seeds one carton
// record per manifest carton, replacing any left from an earlier attempt.
func (r *StoreSessionRepository) SaveVehicleConfirmation(ctx context.Context, s *domain.Session) error {
	if err := r.upsertSession(ctx, s); err != nil {
		return err
	}

	if _, err := r.store.Delete(ctx, recordstore.CollectionCartons, recordstore.Filter{"session_id": s.ID}); err != nil {
		return fmt.Errorf("failed to clear carton records: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(seedConcurrency)
	for _, id := range s.Manifest.CartonIDs {
		id := id
		rec := cartonRecord(s, id, planner.PositionOf(s.ExpectedOrder, id))
		g.Go(func() error {
			if _, err := r.store.Insert(gctx, recordstore.CollectionCartons, rec); err != nil {
				return fmt.Errorf("failed to seed carton %s: %w", id, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (r *StoreSessionRepository) upsertSession(ctx context.Context, s *domain.Session) error {
	rec := sessionRecord(s)
	n, err := r.store.Update(ctx, recordstore.CollectionSessions, recordstore.Filter{recordstore.IDField: s.ID}, rec)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := r.store.Insert(ctx, recordstore.CollectionSessions, rec); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}
