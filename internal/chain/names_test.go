package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseName(t *testing.T) {
	tests := []struct {
		name    string
		z, a, m int
	}{
		{"H1", 1, 1, 0},
		{"U235", 92, 235, 0},
		{"Am242_m1", 95, 242, 1},
		{"Xe135", 54, 135, 0},
		{"Og294", 118, 294, 0},
		{"n1", 0, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			z, a, m, err := ParseName(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.z, z)
			assert.Equal(t, tt.a, a)
			assert.Equal(t, tt.m, m)
		})
	}
}

func TestParseName_Invalid(t *testing.T) {
	for _, name := range []string{"", "235", "U", "Zz123", "U235_mx", "U_m1"} {
		t.Run(name, func(t *testing.T) {
			_, _, _, err := ParseName(name)
			assert.Error(t, err)
		})
	}
}

func TestBuildName(t *testing.T) {
	assert.Equal(t, "U235", BuildName(92, 235, 0))
	assert.Equal(t, "Am242_m1", BuildName(95, 242, 1))
	assert.Equal(t, "H2", BuildName(1, 2, 0))
}

func TestBuildName_RoundTrip(t *testing.T) {
	for _, name := range []string{"H1", "Fe56", "U238", "Am242_m1", "Tc99_m2"} {
		z, a, m, err := ParseName(name)
		require.NoError(t, err)
		assert.Equal(t, name, BuildName(z, a, m))
	}
}

func TestGroundState(t *testing.T) {
	assert.Equal(t, "Am242", GroundState("Am242_m1"))
	assert.Equal(t, "U235", GroundState("U235"))
}
