package adapters

import (
	"time"

	"dockload/internal/features/loading/domain"
	"dockload/internal/features/loading/ledger"
	"dockload/internal/features/loading/planner"
	mdomain "dockload/internal/features/manifest/domain"
)

var testNow = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func clock() time.Time { return testNow }

// confirmedSession returns a strict session for TRK-01 with cartons A, B and C
// planned for stops 3, 1 and 2.
func confirmedSession() *domain.Session {
	s := domain.NewSession("sess-1", domain.DisciplineStrict, "op-7", testNow)
	s.Manifest = &mdomain.Manifest{
		Kind:                mdomain.KindSingle,
		ShipmentID:          "SHP-1",
		VehicleID:           "TRK-01",
		PrimaryCustomerName: "Acme",
		Destination:         "Quito",
		CartonIDs:           []string{"A", "B", "C"},
		Quantity:            3,
		Encoding:            mdomain.EncodingJSON,
	}
	s.Ledger = ledger.Build(s.Manifest)
	s.ConfirmedVehicleID = "TRK-01"
	s.Stage = domain.StageScanningInProgress
	s.ExpectedOrder = planner.Plan([]domain.DeliveryStopCarton{
		{CartonID: "A", StopSequenceNumber: 3},
		{CartonID: "B", StopSequenceNumber: 1},
		{CartonID: "C", StopSequenceNumber: 2},
	})
	return s
}
