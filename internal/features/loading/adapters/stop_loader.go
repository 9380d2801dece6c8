package adapters

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dockload/internal/core/cache"
	"dockload/internal/core/logger"
	"dockload/internal/core/recordstore"
	"dockload/internal/features/loading/domain"

	"go.uber.org/zap"
)

// StopLoader implements ports.StopSource on the record store with a per
// shipment cache in front of it.
type StopLoader struct {
	store recordstore.Store
	mu    sync.Mutex
	cache *cache.TTL[string, []domain.DeliveryStopCarton]
	log   *zap.Logger
}

// NewStopLoader creates a new StopLoader. A ttl of 0 caches until SaveStops.
func NewStopLoader(store recordstore.Store, ttl time.Duration, now func() time.Time) *StopLoader {
	return &StopLoader{
		store: store,
		cache: cache.NewTTL[string, []domain.DeliveryStopCarton](ttl, now),
		log:   logger.Named("stops"),
	}
}

// StopsFor returns the delivery stops registered for a shipment, in route order.
// A shipment without stops yields an empty slice.
func (l *StopLoader) StopsFor(ctx context.Context, shipmentID string) ([]domain.DeliveryStopCarton, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if stops, ok := l.cache.Get(shipmentID); ok {
		return stops, nil
	}

	records, err := l.store.Select(ctx, recordstore.CollectionDeliveryStops,
		recordstore.Filter{"shipment_id": shipmentID},
		recordstore.Order{Field: "route_index"},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load delivery stops: %w", err)
	}

	stops := make([]domain.DeliveryStopCarton, 0, len(records))
	for _, rec := range records {
		stops = append(stops, stopFromRecord(rec))
	}

	l.cache.Put(shipmentID, stops)
	l.log.Debug("Delivery stops loaded",
		zap.String("shipment_id", shipmentID),
		zap.Int("count", len(stops)),
	)
	return stops, nil
}

// SaveStops replaces the route of a shipment.
func (l *StopLoader) SaveStops(ctx context.Context, shipmentID string, stops []domain.DeliveryStopCarton) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Entries share one refresh stamp; drop them all.
	l.cache.Invalidate()

	if _, err := l.store.Delete(ctx, recordstore.CollectionDeliveryStops, recordstore.Filter{"shipment_id": shipmentID}); err != nil {
		return fmt.Errorf("failed to clear delivery stops: %w", err)
	}
	for i, stop := range stops {
		if _, err := l.store.Insert(ctx, recordstore.CollectionDeliveryStops, stopRecord(shipmentID, i, stop)); err != nil {
			return fmt.Errorf("failed to save delivery stop %s: %w", stop.CartonID, err)
		}
	}

	l.log.Info("Delivery stops registered",
		zap.String("shipment_id", shipmentID),
		zap.Int("count", len(stops)),
	)
	return nil
}
