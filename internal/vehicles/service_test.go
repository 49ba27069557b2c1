package vehicles

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormaliseUppercasesIdentifiers(t *testing.T) {
	input := VehicleInput{
		LicensePlate: "  b 1234 xyz ",
		VIN:          "jtdkb20u893512345",
	}
	normalise(&input)
	require.Equal(t, "B 1234 XYZ", input.LicensePlate)
	require.Equal(t, "JTDKB20U893512345", input.VIN)
}
