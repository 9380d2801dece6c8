// Package parser turns raw scanned manifest text into a canonical domain.Manifest.
//
// Five encodings are tried in order: a braces-framed JSON object, pipe-delimited
// labeled fields, comma or newline separated key/value pairs, line-oriented
// labeled text and finally a bare identifier. The first encoding that both
// recognizes the text and yields a valid manifest wins.
package parser

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"dockload/internal/core/logger"
	"dockload/internal/features/manifest/domain"

	"go.uber.org/zap"
)

// MaxInputBytes bounds the raw manifest text.
const MaxInputBytes = 64 << 10

const sampleLength = 80

// ErrInvalidManifest is wrapped by every ParseError.
var ErrInvalidManifest = errors.New("invalid manifest")

// ParseError reports text that no encoding could turn into a valid manifest.
type ParseError struct {
	// Sample is the beginning of the rejected input.
	Sample string
	// Reason describes why the first recognizing encoding rejected it.
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse manifest: %s (input %q)", e.Reason, e.Sample)
}

func (e *ParseError) Unwrap() error {
	return ErrInvalidManifest
}

func newParseError(raw, reason string) *ParseError {
	sample := raw
	if utf8.RuneCountInString(sample) > sampleLength {
		sample = string([]rune(sample)[:sampleLength]) + "..."
	}
	return &ParseError{Sample: sample, Reason: reason}
}

// Parser parses manifests. Missing shipment and vehicle ids are synthesized
// from its clock.
type Parser struct {
	now func() time.Time
	log *zap.Logger
}

// New creates a Parser. A nil clock uses time.Now.
func New(now func() time.Time) *Parser {
	if now == nil {
		now = time.Now
	}
	return &Parser{
		now: now,
		log: logger.Named("parser"),
	}
}

// Parse converts raw text into a Manifest or returns a *ParseError.
// It never returns a partially populated Manifest.
func (p *Parser) Parse(raw string) (*domain.Manifest, error) {
	if len(raw) > MaxInputBytes {
		return nil, newParseError(raw, fmt.Sprintf("input exceeds %d bytes", MaxInputBytes))
	}
	text := strings.TrimSpace(strings.ReplaceAll(raw, "\r\n", "\n"))
	if text == "" {
		return nil, newParseError(raw, "input is empty")
	}

	reason := "unrecognized manifest encoding"
	recognized := false
	for _, det := range structuredDetectors {
		d, ok := det.detect(text)
		if !ok {
			continue
		}
		m, err := p.build(d, det.encoding)
		if err != nil {
			// The first recognizing encoding gives the most specific reason.
			if !recognized {
				reason = err.Error()
			}
			recognized = true
			continue
		}
		return m, nil
	}

	if !recognized {
		if d, ok := detectBareID(text); ok {
			return p.build(d, domain.EncodingBareID)
		}
	}

	return nil, newParseError(text, reason)
}

// build validates and normalizes a draft into a Manifest.
func (p *Parser) build(d *draft, encoding domain.Encoding) (*domain.Manifest, error) {
	m := &domain.Manifest{
		Kind:                domain.KindSingle,
		ShipmentID:          domain.NormalizeID(d.shipmentID),
		VehicleID:           domain.NormalizeID(d.vehicleID),
		PrimaryCustomerName: d.customer,
		ShipperName:         d.shipper,
		Destination:         d.destination,
		Encoding:            encoding,
	}

	if d.multi || len(d.groups) > 0 {
		if err := p.buildGroups(m, d.groups); err != nil {
			return nil, err
		}
	} else {
		seen := make(map[string]bool)
		for _, id := range normalizeIDs(d.cartons) {
			if seen[id] {
				m.Warnings = append(m.Warnings, fmt.Sprintf("carton %s listed more than once", id))
				continue
			}
			seen[id] = true
			m.CartonIDs = append(m.CartonIDs, id)
		}
	}

	if len(m.CartonIDs) == 0 {
		return nil, errors.New("manifest lists no cartons")
	}
	if m.PrimaryCustomerName == "" {
		m.PrimaryCustomerName = domain.PlaceholderCustomer
	}

	stamp := p.now().UnixMilli()
	if m.ShipmentID == "" {
		m.ShipmentID = fmt.Sprintf("SHP-%d", stamp)
		m.SynthesizedFields = append(m.SynthesizedFields, domain.FieldShipmentID)
	}
	if m.VehicleID == "" {
		m.VehicleID = fmt.Sprintf("VEH-%d", stamp)
		m.SynthesizedFields = append(m.SynthesizedFields, domain.FieldVehicleID)
	}

	m.Quantity = parseQuantity(d.quantity)
	if m.Quantity == 0 {
		m.Quantity = min(len(m.CartonIDs), maxQuantity)
	}
	m.DeclaredValue = parseValue(d.value)

	if len(m.Warnings) > 0 {
		p.log.Warn("Manifest cartons deduplicated",
			zap.String("shipment_id", m.ShipmentID),
			zap.Strings("warnings", m.Warnings),
		)
	}

	return m, nil
}

// buildGroups validates customer groups and unions their cartons. A carton
// listed by several groups stays with the first one and yields a warning.
func (p *Parser) buildGroups(m *domain.Manifest, groups []domain.CustomerGroup) error {
	if m.VehicleID == "" {
		return errors.New("multi-customer manifest requires a vehicle id")
	}
	if len(groups) == 0 {
		return errors.New("multi-customer manifest requires customer groups")
	}

	owner := make(map[string]string)
	for i, g := range groups {
		name := cleanValue(g.CustomerName)
		if name == "" {
			return fmt.Errorf("customer group %d has no customer name", i+1)
		}
		destination := cleanValue(g.Destination)
		if destination == "" {
			return fmt.Errorf("customer group %q has no destination", name)
		}
		ids := normalizeIDs(g.CartonIDs)
		if len(ids) == 0 {
			return fmt.Errorf("customer group %q has no cartons", name)
		}

		kept := make([]string, 0, len(ids))
		for _, id := range ids {
			if first, dup := owner[id]; dup {
				m.Warnings = append(m.Warnings,
					fmt.Sprintf("carton %s listed for %s and %s; kept with %s", id, first, name, first))
				continue
			}
			owner[id] = name
			kept = append(kept, id)
			m.CartonIDs = append(m.CartonIDs, id)
		}
		m.CustomerGroups = append(m.CustomerGroups, domain.CustomerGroup{
			CustomerName: name,
			Destination:  destination,
			CartonIDs:    kept,
		})
	}

	m.Kind = domain.KindMultiCustomer
	if m.PrimaryCustomerName == "" {
		m.PrimaryCustomerName = m.CustomerGroups[0].CustomerName
	}
	if m.Destination == "" {
		m.Destination = m.CustomerGroups[0].Destination
	}
	return nil
}
