package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w-flo/eu-emission-factors/internal/shared/testutil"
	"github.com/w-flo/eu-emission-factors/pkg/contracts/domain"
)

func TestNewMatch_DominantFuel(t *testing.T) {
	tests := []struct {
		name       string
		generation []domain.GenerationRecord
		expected   domain.Fuel
	}{
		{
			name:       "single unit",
			generation: []domain.GenerationRecord{testutil.Generation("DE", "A", domain.FuelLignite, 100)},
			expected:   domain.FuelLignite,
		},
		{
			name: "dominant fuel above 95 percent",
			generation: []domain.GenerationRecord{
				testutil.Generation("DE", "A", domain.FuelGas, 97),
				testutil.Generation("DE", "B", domain.FuelOil, 3),
			},
			expected: domain.FuelGas,
		},
		{
			name: "mixed fuels",
			generation: []domain.GenerationRecord{
				testutil.Generation("DE", "A", domain.FuelGas, 90),
				testutil.Generation("DE", "B", domain.FuelCoal, 10),
			},
			expected: "",
		},
		{
			name:       "zero output",
			generation: []domain.GenerationRecord{testutil.Generation("DE", "A", domain.FuelGas, 0)},
			expected:   "",
		},
		{
			name:       "negative output",
			generation: []domain.GenerationRecord{testutil.Generation("DE", "A", domain.FuelGas, -5)},
			expected:   "",
		},
		{
			name: "positive fuel dominates a zero total",
			generation: []domain.GenerationRecord{
				testutil.Generation("DE", "A", domain.FuelOther, 10),
				testutil.Generation("DE", "B", domain.FuelGas, -10),
			},
			expected: domain.FuelOther,
		},
		{
			name: "positive fuel dominates a negative total",
			generation: []domain.GenerationRecord{
				testutil.Generation("DE", "A", domain.FuelCoal, 5),
				testutil.Generation("DE", "B", domain.FuelGas, -20),
			},
			expected: domain.FuelCoal,
		},
		{
			name: "same fuel over several units",
			generation: []domain.GenerationRecord{
				testutil.Generation("PL", "A", domain.FuelCoal, 40),
				testutil.Generation("PL", "B", domain.FuelCoal, 60),
			},
			expected: domain.FuelCoal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMatch("m", tt.generation, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, m.Fuel)
			assert.Equal(t, tt.expected != "", m.HasFuel())
		})
	}
}

func TestNewMatch_Totals(t *testing.T) {
	m, err := NewMatch("m",
		[]domain.GenerationRecord{
			testutil.Generation("FR", "A", domain.FuelGas, 120),
			testutil.Generation("DE", "B", domain.FuelGas, 30),
		},
		[]domain.EmissionRecord{
			testutil.Emission("FR", "X", 40, 100, 0.5),
			testutil.Emission("FR", "Y", 10, 300, 0),
		})
	require.NoError(t, err)

	assert.Equal(t, "FR", m.Country)
	assert.Equal(t, 150.0, m.GenerationEl)
	assert.Equal(t, 50.0, m.EmissionSum())
	assert.Equal(t, 400.0, m.AllocationSum())
	assert.InDelta(t, 0.125, m.Sigma, 1e-12)
	assert.Equal(t, DefaultPlausibleRange, m.PlausibleRange)
	assert.Equal(t, []string{"A", "B"}, m.GenerationNames())
	assert.Equal(t, []string{"X", "Y"}, m.EmissionNames())
	assert.False(t, m.IsIgnored())
	assert.False(t, m.IsComputed())
}

func TestNewMatch_SigmaWithoutPrivilegedAllocation(t *testing.T) {
	m, err := NewMatch("m",
		[]domain.GenerationRecord{testutil.Generation("FR", "A", domain.FuelGas, 1)},
		[]domain.EmissionRecord{testutil.Emission("FR", "X", 1, 0, 0.7)})
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.Sigma)
}

func TestNewMatch_RequiresGeneration(t *testing.T) {
	_, err := NewMatch("m", nil, []domain.EmissionRecord{testutil.Emission("FR", "X", 1, 0, 0)})
	assert.ErrorIs(t, err, ErrNoGeneration)
}

func TestMatch_IgnoreIsTerminal(t *testing.T) {
	m, err := NewMatch("m", []domain.GenerationRecord{testutil.Generation("FR", "A", domain.FuelGas, 1)}, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, m.Ignore(""), ErrEmptyReason)
	assert.False(t, m.IsIgnored())

	require.NoError(t, m.Ignore("first"))
	assert.True(t, m.IsIgnored())
	assert.Equal(t, "first", m.IgnoreReason())
	assert.Equal(t, "ignored: first", m.Status().String())

	err = m.Ignore("second")
	assert.ErrorIs(t, err, ErrAlreadyIgnored)
	assert.Equal(t, "first", m.IgnoreReason())
}

func TestMatch_SetCHPResult(t *testing.T) {
	m, err := NewMatch("m", []domain.GenerationRecord{testutil.Generation("FR", "A", domain.FuelGas, 1)}, nil)
	require.NoError(t, err)

	m.SetCHPResult(CHPResult{GenerationHeat: 1, EmissionsHeat: 2, EmissionsEl: 3, EmissionFactor: 4})
	assert.True(t, m.IsComputed())
	assert.Equal(t, 1.0, m.GenerationHeat)
	assert.Equal(t, 2.0, m.EmissionsHeat)
	assert.Equal(t, 3.0, m.EmissionsEl)
	assert.Equal(t, 4.0, m.EmissionFactor)
	assert.Equal(t, "active", m.Status().String())
}

func TestPlausibleRange_Contains(t *testing.T) {
	r := PlausibleRange{Min: 100, Max: 500}
	assert.True(t, r.Contains(100))
	assert.True(t, r.Contains(499.99))
	assert.False(t, r.Contains(500))
	assert.False(t, r.Contains(99.9))
}
