package recordstore

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Compile-time contract assertion.
var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-process Store used in tests and single-device deployments.
// Records are cloned on the way in and out, so callers never share maps with it.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]Record
	closed      bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string][]Record),
	}
}

func (m *MemoryStore) check(ctx context.Context, op, collection string) error {
	if err := ctx.Err(); err != nil {
		return Classify(op, collection, err)
	}
	if m.closed {
		return Connectivity(op, collection, errStoreClosed)
	}
	return nil
}

// Insert adds a cloned record and returns its id.
func (m *MemoryStore) Insert(ctx context.Context, collection string, record Record) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(ctx, "insert", collection); err != nil {
		return "", err
	}

	clone, err := record.Clone()
	if err != nil {
		return "", Rejection("insert", collection, "INVALID_RECORD", err.Error())
	}

	id := clone.String(IDField)
	if id == "" {
		id = uuid.NewString()
		clone[IDField] = id
	}
	for _, existing := range m.collections[collection] {
		if existing.String(IDField) == id {
			return "", Rejection("insert", collection, CodeDuplicateID, "record "+id+" already exists")
		}
	}

	m.collections[collection] = append(m.collections[collection], clone)
	return id, nil
}

// Update merges patch into every matching record.
func (m *MemoryStore) Update(ctx context.Context, collection string, filter Filter, patch Record) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(ctx, "update", collection); err != nil {
		return 0, err
	}

	clonedPatch, err := patch.Clone()
	if err != nil {
		return 0, Rejection("update", collection, "INVALID_RECORD", err.Error())
	}

	count := 0
	for _, rec := range m.collections[collection] {
		if Matches(rec, filter) {
			Apply(rec, clonedPatch)
			count++
		}
	}
	return count, nil
}

// Select returns clones of the matching records.
func (m *MemoryStore) Select(ctx context.Context, collection string, filter Filter, order Order) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.check(ctx, "select", collection); err != nil {
		return nil, err
	}

	out := make([]Record, 0)
	for _, rec := range m.collections[collection] {
		if !Matches(rec, filter) {
			continue
		}
		clone, err := rec.Clone()
		if err != nil {
			return nil, Rejection("select", collection, "INVALID_RECORD", err.Error())
		}
		out = append(out, clone)
	}
	SortRecords(out, order)
	return out, nil
}

// Delete removes the matching records.
func (m *MemoryStore) Delete(ctx context.Context, collection string, filter Filter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(ctx, "delete", collection); err != nil {
		return 0, err
	}

	kept := m.collections[collection][:0]
	removed := 0
	for _, rec := range m.collections[collection] {
		if Matches(rec, filter) {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	m.collections[collection] = kept
	return removed, nil
}

// Ping reports whether the store is still open.
func (m *MemoryStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.check(ctx, "ping", "")
}

// Close marks the store closed; later calls fail with a connectivity error.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
