// Package planner derives the strict loading order from delivery stops: the
// last stop is loaded first so that it is the first unloaded.
package planner

import (
	"slices"

	"dockload/internal/features/loading/domain"
	mdomain "dockload/internal/features/manifest/domain"
)

// Plan orders stops by stop number descending and numbers the slots 1..N.
// Ties keep their input order. A carton listed twice keeps its first stop.
func Plan(stops []domain.DeliveryStopCarton) []domain.ExpectedSlot {
	seen := make(map[string]bool, len(stops))
	unique := make([]domain.DeliveryStopCarton, 0, len(stops))
	for _, stop := range stops {
		id := mdomain.NormalizeID(stop.CartonID)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		stop.CartonID = id
		unique = append(unique, stop)
	}

	slices.SortStableFunc(unique, func(a, b domain.DeliveryStopCarton) int {
		return b.StopSequenceNumber - a.StopSequenceNumber
	})

	plan := make([]domain.ExpectedSlot, len(unique))
	for i, stop := range unique {
		plan[i] = domain.ExpectedSlot{
			CartonID:           stop.CartonID,
			StopSequenceNumber: stop.StopSequenceNumber,
			ExpectedPosition:   i + 1,
			CustomerName:       stop.CustomerName,
		}
	}
	return plan
}

// PlanFor returns an empty plan for unordered loading, which accepts any order.
func PlanFor(discipline domain.Discipline, stops []domain.DeliveryStopCarton) []domain.ExpectedSlot {
	if discipline != domain.DisciplineStrict {
		return nil
	}
	return Plan(stops)
}

// Restrict keeps the stops of cartons listed in the manifest.
func Restrict(stops []domain.DeliveryStopCarton, m *mdomain.Manifest) []domain.DeliveryStopCarton {
	out := make([]domain.DeliveryStopCarton, 0, len(stops))
	for _, stop := range stops {
		if m.Contains(stop.CartonID) {
			out = append(out, stop)
		}
	}
	return out
}

// Coverage returns the cartons that have no slot in the plan, in the given order.
func Coverage(plan []domain.ExpectedSlot, cartonIDs []string) []string {
	planned := make(map[string]bool, len(plan))
	for _, slot := range plan {
		planned[slot.CartonID] = true
	}

	var missing []string
	for _, id := range cartonIDs {
		if !planned[mdomain.NormalizeID(id)] {
			missing = append(missing, id)
		}
	}
	return missing
}

// PositionOf returns the planned slot of a carton, 0 when unplanned.
func PositionOf(plan []domain.ExpectedSlot, cartonID string) int {
	id := mdomain.NormalizeID(cartonID)
	for _, slot := range plan {
		if slot.CartonID == id {
			return slot.ExpectedPosition
		}
	}
	return 0
}
