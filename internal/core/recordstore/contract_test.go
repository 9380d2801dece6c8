package recordstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreContract exercises the behaviour every adapter must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("InsertGeneratesID", func(t *testing.T) {
		s := newStore(t)

		id, err := s.Insert(ctx, CollectionCartons, Record{"carton_id": "A", "scanned": false})
		require.NoError(t, err)
		assert.NotEmpty(t, id)

		recs, err := s.Select(ctx, CollectionCartons, Filter{"carton_id": "A"}, Order{})
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, id, recs[0].String(IDField))
		assert.False(t, recs[0].Bool("scanned"))
	})

	t.Run("InsertKeepsCallerID", func(t *testing.T) {
		s := newStore(t)

		id, err := s.Insert(ctx, CollectionSessions, Record{IDField: "sess-1", "stage": "MANIFEST_PENDING"})
		require.NoError(t, err)
		assert.Equal(t, "sess-1", id)
	})

	t.Run("DuplicateIDIsRejected", func(t *testing.T) {
		s := newStore(t)

		_, err := s.Insert(ctx, CollectionReports, Record{IDField: "rep-1"})
		require.NoError(t, err)

		_, err = s.Insert(ctx, CollectionReports, Record{IDField: "rep-1"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrRejected))
		var remote *RemoteError
		require.True(t, errors.As(err, &remote))
		assert.Equal(t, "DUPLICATE_ID", remote.Code)
	})

	t.Run("UpdateMergesPatch", func(t *testing.T) {
		s := newStore(t)

		_, err := s.Insert(ctx, CollectionCartons, Record{IDField: "c1", "session_id": "s", "carton_id": "A", "scanned": false})
		require.NoError(t, err)
		_, err = s.Insert(ctx, CollectionCartons, Record{IDField: "c2", "session_id": "s", "carton_id": "B", "scanned": false})
		require.NoError(t, err)

		n, err := s.Update(ctx, CollectionCartons, Filter{"carton_id": "B"}, Record{IDField: "hijack", "scanned": true, "load_sequence": 1})
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		recs, err := s.Select(ctx, CollectionCartons, Filter{"scanned": true}, Order{})
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "c2", recs[0].String(IDField))
		assert.Equal(t, 1, recs[0].Int("load_sequence"))
		assert.Equal(t, "s", recs[0].String("session_id"))
	})

	t.Run("UpdateNoMatch", func(t *testing.T) {
		s := newStore(t)

		n, err := s.Update(ctx, CollectionCartons, Filter{"carton_id": "missing"}, Record{"scanned": true})
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("SelectFiltersNumbersAcrossTypes", func(t *testing.T) {
		s := newStore(t)

		_, err := s.Insert(ctx, CollectionDeliveryStops, Record{"shipment_id": "SHP-1", "carton_id": "A", "stop_sequence": 2})
		require.NoError(t, err)
		_, err = s.Insert(ctx, CollectionDeliveryStops, Record{"shipment_id": "SHP-1", "carton_id": "B", "stop_sequence": 3})
		require.NoError(t, err)

		recs, err := s.Select(ctx, CollectionDeliveryStops, Filter{"stop_sequence": float64(2)}, Order{})
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "A", recs[0].String("carton_id"))
	})

	t.Run("SelectOrders", func(t *testing.T) {
		s := newStore(t)

		for i, carton := range []string{"A", "B", "C"} {
			_, err := s.Insert(ctx, CollectionDeliveryStops, Record{"shipment_id": "SHP-1", "carton_id": carton, "stop_sequence": i + 1})
			require.NoError(t, err)
		}
		_, err := s.Insert(ctx, CollectionDeliveryStops, Record{"shipment_id": "SHP-2", "carton_id": "Z", "stop_sequence": 9})
		require.NoError(t, err)

		recs, err := s.Select(ctx, CollectionDeliveryStops, Filter{"shipment_id": "SHP-1"}, Order{Field: "stop_sequence", Desc: true})
		require.NoError(t, err)
		require.Len(t, recs, 3)
		assert.Equal(t, "C", recs[0].String("carton_id"))
		assert.Equal(t, "B", recs[1].String("carton_id"))
		assert.Equal(t, "A", recs[2].String("carton_id"))

		recs, err = s.Select(ctx, CollectionDeliveryStops, Filter{"shipment_id": "SHP-1"}, Order{})
		require.NoError(t, err)
		require.Len(t, recs, 3)
		assert.Equal(t, "A", recs[0].String("carton_id"), "insertion order is kept without an order field")
	})

	t.Run("SelectEmptyCollection", func(t *testing.T) {
		s := newStore(t)

		recs, err := s.Select(ctx, CollectionViolations, Filter{}, Order{})
		require.NoError(t, err)
		assert.NotNil(t, recs)
		assert.Empty(t, recs)
	})

	t.Run("Delete", func(t *testing.T) {
		s := newStore(t)

		_, err := s.Insert(ctx, CollectionCartons, Record{"session_id": "s1", "carton_id": "A"})
		require.NoError(t, err)
		_, err = s.Insert(ctx, CollectionCartons, Record{"session_id": "s1", "carton_id": "B"})
		require.NoError(t, err)
		_, err = s.Insert(ctx, CollectionCartons, Record{"session_id": "s2", "carton_id": "C"})
		require.NoError(t, err)

		n, err := s.Delete(ctx, CollectionCartons, Filter{"session_id": "s1"})
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		recs, err := s.Select(ctx, CollectionCartons, Filter{}, Order{})
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "C", recs[0].String("carton_id"))
	})

	t.Run("Ping", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Ping(ctx))
	})
}

func TestMemoryStore_Contract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		return NewMemoryStore()
	})
}

func TestMemoryStore_ReturnsClones(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	rec := Record{IDField: "x", "carton_id": "A"}
	_, err := s.Insert(ctx, CollectionCartons, rec)
	require.NoError(t, err)
	rec["carton_id"] = "MUTATED"

	recs, err := s.Select(ctx, CollectionCartons, Filter{}, Order{})
	require.NoError(t, err)
	recs[0]["carton_id"] = "ALSO_MUTATED"

	again, err := s.Select(ctx, CollectionCartons, Filter{}, Order{})
	require.NoError(t, err)
	assert.Equal(t, "A", again[0].String("carton_id"))
}

func TestMemoryStore_ClosedIsConnectivityError(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Close())

	_, err := s.Insert(context.Background(), CollectionCartons, Record{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConnectivity))
	assert.Error(t, s.Ping(context.Background()))
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Select(ctx, CollectionCartons, Filter{}, Order{})
	require.Error(t, err)
	assert.Equal(t, KindConnectivity, KindOf(err))
}
