package domain

import (
	"slices"
	"strings"
)

// Kind discriminates the manifest variants.
type Kind string

const (
	// KindSingle is a manifest for one customer.
	KindSingle Kind = "SINGLE"
	// KindMultiCustomer is a consolidated load split into customer groups.
	KindMultiCustomer Kind = "MULTI_CUSTOMER"
)

// Encoding names the textual encoding a manifest was read from.
type Encoding string

const (
	EncodingJSON      Encoding = "json"
	EncodingDelimited Encoding = "delimited"
	EncodingKeyValue  Encoding = "key_value"
	EncodingLineText  Encoding = "line_text"
	EncodingBareID    Encoding = "bare_identifier"
)

// Fields that may be synthesized when absent from the scanned text.
const (
	FieldShipmentID = "shipment_id"
	FieldVehicleID  = "vehicle_id"
)

// PlaceholderCustomer is used when the manifest names no customer.
const PlaceholderCustomer = "UNSPECIFIED CUSTOMER"

// CustomerGroup is one customer's share of a consolidated load.
type CustomerGroup struct {
	CustomerName string   `json:"customer_name"`
	Destination  string   `json:"destination"`
	CartonIDs    []string `json:"carton_ids"`
}

// Manifest is the canonical description of one shipment. Values are only
// produced by the parser, which validates them once; downstream code reads the
// fields without re-checking them.
type Manifest struct {
	Kind                Kind            `json:"kind"`
	ShipmentID          string          `json:"shipment_id"`
	VehicleID           string          `json:"vehicle_id"`
	PrimaryCustomerName string          `json:"primary_customer_name"`
	ShipperName         string          `json:"shipper_name,omitempty"`
	Destination         string          `json:"destination,omitempty"`
	CartonIDs           []string        `json:"carton_ids"`
	CustomerGroups      []CustomerGroup `json:"customer_groups,omitempty"`
	// Quantity is the declared piece count, clamped to 1..9999.
	Quantity int `json:"quantity"`
	// DeclaredValue is clamped to 0..9,999,999.
	DeclaredValue float64 `json:"declared_value,omitempty"`
	Encoding      Encoding `json:"encoding"`
	// SynthesizedFields lists identifiers generated from the clock.
	SynthesizedFields []string `json:"synthesized_fields,omitempty"`
	Warnings          []string `json:"warnings,omitempty"`
}

// MultiCustomer reports whether the manifest is a consolidated load.
func (m *Manifest) MultiCustomer() bool {
	return m.Kind == KindMultiCustomer
}

// Contains reports whether id, after normalization, is one of the manifest cartons.
func (m *Manifest) Contains(id string) bool {
	return slices.Contains(m.CartonIDs, NormalizeID(id))
}

// TotalExpected is the number of cartons to load.
func (m *Manifest) TotalExpected() int {
	return len(m.CartonIDs)
}

// Synthesized reports whether field was generated rather than scanned.
func (m *Manifest) Synthesized(field string) bool {
	return slices.Contains(m.SynthesizedFields, field)
}

// NormalizeID trims and uppercases an identifier.
func NormalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
