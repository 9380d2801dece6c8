// Package recordstore is the port to the opaque remote record store: generic
// insert/update/select/delete calls against named collections of flat records.
package recordstore

import (
	"context"
	"encoding/json"
	"fmt"
)

// Collections used by the loading core.
const (
	CollectionShipments     = "shipments"
	CollectionSessions      = "sessions"
	CollectionCartons       = "cartons"
	CollectionViolations    = "violations"
	CollectionReports       = "compliance_reports"
	CollectionDeliveryStops = "delivery_stops"
)

// IDField is the record key holding the store-assigned identifier.
const IDField = "id"

// Record is a flat key/value record. Values are JSON compatible; numbers read
// back from any adapter are float64.
type Record map[string]any

// Filter matches records whose fields equal every given value. An empty filter
// matches everything.
type Filter map[string]any

// Order sorts selected records by one field. A zero Order keeps insertion order.
type Order struct {
	Field string
	Desc  bool
}

// Store defines the remote record store operations.
// Every call may fail with a *RemoteError.
type Store interface {
	// Insert adds a record and returns its id. A caller-provided "id" is kept.
	Insert(ctx context.Context, collection string, record Record) (string, error)

	// Update merges patch into every matching record and returns how many changed.
	Update(ctx context.Context, collection string, filter Filter, patch Record) (int, error)

	// Select returns matching records in the requested order.
	Select(ctx context.Context, collection string, filter Filter, order Order) ([]Record, error)

	// Delete removes matching records and returns how many were removed.
	Delete(ctx context.Context, collection string, filter Filter) (int, error)

	// Ping checks if the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}

// String returns the field as a string, or "" when absent.
func (r Record) String(field string) string {
	switch v := r[field].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Int returns the field as an int, or 0 when absent or not numeric.
func (r Record) Int(field string) int {
	switch v := r[field].(type) {
	case float64:
		return int(v)
	case float32:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case int32:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	default:
		return 0
	}
}

// Bool returns the field as a bool.
func (r Record) Bool(field string) bool {
	v, _ := r[field].(bool)
	return v
}

// Clone deep-copies the record through its JSON form so that every adapter
// hands out values of the same shape.
func (r Record) Clone() (Record, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	var out Record
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	if out == nil {
		out = Record{}
	}
	return out, nil
}
