package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeID(t *testing.T) {
	assert.Equal(t, "CTN-001", NormalizeID("  ctn-001\t"))
	assert.Equal(t, "", NormalizeID("   "))
}

func TestManifest_Queries(t *testing.T) {
	m := &Manifest{
		Kind:              KindMultiCustomer,
		CartonIDs:         []string{"A", "B"},
		SynthesizedFields: []string{FieldShipmentID},
	}

	assert.True(t, m.MultiCustomer())
	assert.True(t, m.Contains(" a "))
	assert.False(t, m.Contains("C"))
	assert.Equal(t, 2, m.TotalExpected())
	assert.True(t, m.Synthesized(FieldShipmentID))
	assert.False(t, m.Synthesized(FieldVehicleID))
}
