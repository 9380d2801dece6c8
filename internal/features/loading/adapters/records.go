package adapters

import (
	"strings"
	"time"

	"dockload/internal/core/recordstore"
	"dockload/internal/features/loading/domain"
)

func formatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func cartonRecordID(sessionID, cartonID string) string {
	return sessionID + ":" + cartonID
}

func sessionRecord(s *domain.Session) recordstore.Record {
	rec := recordstore.Record{
		recordstore.IDField:    s.ID,
		"discipline":           string(s.Discipline),
		"stage":                string(s.Stage),
		"loaded_by":            s.LoadedBy,
		"confirmed_vehicle_id": s.ConfirmedVehicleID,
		"total_expected":       s.TotalExpected(),
		"scanned_count":        s.ScannedCount(),
		"violation_count":      len(s.Violations),
		"planned_slots":        len(s.ExpectedOrder),
		"created_at":           formatTime(s.CreatedAt),
		"completed_at":         formatTime(s.CompletedAt),
	}
	if s.Manifest != nil {
		rec["shipment_id"] = s.Manifest.ShipmentID
		rec["vehicle_id"] = s.Manifest.VehicleID
	}
	return rec
}

func shipmentRecord(s *domain.Session) recordstore.Record {
	m := s.Manifest
	groups := make([]any, 0, len(m.CustomerGroups))
	for _, g := range m.CustomerGroups {
		groups = append(groups, map[string]any{
			"customer_name": g.CustomerName,
			"destination":   g.Destination,
			"carton_ids":    strings.Join(g.CartonIDs, ","),
		})
	}

	return recordstore.Record{
		"session_id":            s.ID,
		"shipment_id":           m.ShipmentID,
		"vehicle_id":            m.VehicleID,
		"kind":                  string(m.Kind),
		"multi_customer":        m.MultiCustomer(),
		"primary_customer_name": m.PrimaryCustomerName,
		"shipper_name":          m.ShipperName,
		"destination":           m.Destination,
		"carton_ids":            strings.Join(m.CartonIDs, ","),
		"carton_count":          len(m.CartonIDs),
		"customer_groups":       groups,
		"quantity":              m.Quantity,
		"declared_value":        m.DeclaredValue,
		"encoding":              string(m.Encoding),
		"synthesized_fields":    strings.Join(m.SynthesizedFields, ","),
	}
}

func cartonRecord(s *domain.Session, cartonID string, loadSequence int) recordstore.Record {
	customer := s.Manifest.PrimaryCustomerName
	if s.Ledger != nil {
		if owner, ok := s.Ledger.CustomerOf(cartonID); ok {
			customer = owner
		}
	}
	return recordstore.Record{
		recordstore.IDField: cartonRecordID(s.ID, cartonID),
		"session_id":        s.ID,
		"shipment_id":       s.Manifest.ShipmentID,
		"carton_id":         cartonID,
		"customer_name":     customer,
		"load_sequence":     loadSequence,
		"scanned":           false,
		"loaded_by":         "",
		"loaded_at":         nil,
	}
}

func violationRecord(sessionID string, v domain.ScanViolation) recordstore.Record {
	return recordstore.Record{
		"session_id":               sessionID,
		"carton_id":                v.CartonID,
		"expected_carton_id":       v.ExpectedCartonID,
		"expected_position":        v.ExpectedPosition,
		"actual_expected_position": v.ActualExpectedPosition,
		"kind":                     string(v.Kind),
		"message":                  v.Message,
		"timestamp":                formatTime(v.Timestamp),
	}
}

func stopRecord(shipmentID string, index int, stop domain.DeliveryStopCarton) recordstore.Record {
	return recordstore.Record{
		"shipment_id":          shipmentID,
		"route_index":          index,
		"carton_id":            stop.CartonID,
		"stop_sequence_number": stop.StopSequenceNumber,
		"customer_name":        stop.CustomerName,
		"address":              stop.Address,
	}
}

func stopFromRecord(rec recordstore.Record) domain.DeliveryStopCarton {
	return domain.DeliveryStopCarton{
		CartonID:           rec.String("carton_id"),
		StopSequenceNumber: rec.Int("stop_sequence_number"),
		CustomerName:       rec.String("customer_name"),
		Address:            rec.String("address"),
	}
}
