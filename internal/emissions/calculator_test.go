package emissions

import (
	"context"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/w-flo/eu-emission-factors/internal/errors"
	"github.com/w-flo/eu-emission-factors/internal/matching"
	"github.com/w-flo/eu-emission-factors/internal/shared/testutil"
	"github.com/w-flo/eu-emission-factors/pkg/contracts/domain"
)

func flatTable(latestYear int, countries ...string) *DegreeDayTable {
	table := NewDegreeDayTable(latestYear)
	for _, c := range countries {
		values := make([]float64, latestYear-FirstDegreeDayYear+1)
		for i := range values {
			values[i] = 2500
		}
		table.Set(c, values)
	}
	return table
}

func newMatch(t *testing.T, country string, output, emissions, allocations, sigma float64) *matching.Match {
	t.Helper()
	m, err := matching.NewMatch("A",
		[]domain.GenerationRecord{testutil.Generation(country, "A", domain.FuelGas, output)},
		[]domain.EmissionRecord{testutil.Emission(country, "A", emissions, allocations, sigma)})
	require.NoError(t, err)
	return m
}

func TestCalculator_HandComputedExample(t *testing.T) {
	m := newMatch(t, "DE", 100, 50, 20, 0)

	calc, err := NewCalculator(2021, flatTable(2021, "DE"), nil, nil)
	require.NoError(t, err)
	require.NoError(t, calc.Calculate(context.Background(), []*matching.Match{m}))

	beta := 0.8782 - 0.022
	heat := 20 / (beta * 0.3) / (47.3 / 277.777777)
	shareHeat := heat / 0.8
	shareEl := 100 / 0.35
	emissionsHeat := 50 * shareHeat / (shareHeat + shareEl)

	assert.Equal(t, domain.FuelGas, m.Fuel)
	assert.Equal(t, 100.0, m.GenerationEl)
	assert.True(t, m.IsComputed())
	assert.False(t, m.IsIgnored())
	assert.InDelta(t, heat, m.GenerationHeat, 1e-9)
	assert.InDelta(t, 457.267015, m.GenerationHeat, 1e-6)
	assert.InDelta(t, emissionsHeat, m.EmissionsHeat, 1e-9)
	assert.InDelta(t, 166.636495, m.EmissionFactor, 1e-6)
	assert.InDelta(t, 50.0, m.EmissionsEl+m.EmissionsHeat, 1e-9)
}

func TestDisaggregate(t *testing.T) {
	p, err := ParametersForYear(2020)
	require.NoError(t, err)

	r := Disaggregate(p, 2000, 800, 1000, 0.5, 1.2)
	assert.InDelta(t, 12692.758800, r.GenerationHeat, 1e-5)
	assert.InDelta(t, 588.165943, r.EmissionsHeat, 1e-5)
	assert.InDelta(t, 211.834057, r.EmissionsEl, 1e-5)
	assert.InDelta(t, 105.917029, r.EmissionFactor, 1e-5)

	noHeat := Disaggregate(p, 1000, 400, 0, 0, 1)
	assert.Equal(t, 0.0, noHeat.GenerationHeat)
	assert.Equal(t, 0.0, noHeat.EmissionsHeat)
	assert.Equal(t, 400.0, noHeat.EmissionsEl)
	assert.Equal(t, 400.0, noHeat.EmissionFactor)
}

func TestDisaggregate_ConservesEmissions(t *testing.T) {
	p, err := ParametersForYear(2023)
	require.NoError(t, err)

	for _, sigma := range []float64{0, 0.25, 1} {
		for _, ratio := range []float64{0.8, 1, 1.3} {
			r := Disaggregate(p, 350, 1234.5, 789, sigma, ratio)
			assert.InDelta(t, 1234.5, r.EmissionsEl+r.EmissionsHeat, 1e-9)
			assert.GreaterOrEqual(t, r.EmissionsHeat, 0.0)
		}
	}
}

func TestCalculator_ImplausibleFactor(t *testing.T) {
	low := newMatch(t, "DE", 100, 50, 20, 0)
	low.PlausibleRange = matching.PlausibleRange{Min: 500, Max: 1500}
	high := newMatch(t, "DE", 1, 50000, 0, 0)
	ok := newMatch(t, "DE", 100, 50, 0, 0)

	calc, err := NewCalculator(2021, flatTable(2021, "DE"), nil, nil)
	require.NoError(t, err)
	require.NoError(t, calc.Calculate(context.Background(), []*matching.Match{low, high, ok}))

	assert.Equal(t, ReasonImplausible, low.IgnoreReason())
	assert.True(t, low.IsComputed())
	assert.Equal(t, ReasonImplausible, high.IgnoreReason())
	assert.False(t, ok.IsIgnored())
	assert.Equal(t, 500.0, ok.EmissionFactor)
}

func TestCalculator_SkipsIgnored(t *testing.T) {
	m := newMatch(t, "FR", 100, 50, 20, 0)
	require.NoError(t, m.Ignore("found 2 possibly matching ETS records"))

	calc, err := NewCalculator(2021, flatTable(2021), nil, nil)
	require.NoError(t, err)
	require.NoError(t, calc.Calculate(context.Background(), []*matching.Match{m}))
	assert.False(t, m.IsComputed())
}

func TestCalculator_MissingCountry(t *testing.T) {
	m := newMatch(t, "FR", 100, 50, 20, 0)

	calc, err := NewCalculator(2021, flatTable(2021, "DE"), nil, nil)
	require.NoError(t, err)

	err = calc.Calculate(context.Background(), []*matching.Match{m})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestCalculator_StaleDegreeDays(t *testing.T) {
	t.Run("rejected", func(t *testing.T) {
		m := newMatch(t, "DE", 100, 50, 20, 0)
		logger, handler := testutil.NewTestLogger(t)

		calc, err := NewCalculator(2022, flatTable(2021, "DE"), RejectStale{}, logger)
		require.NoError(t, err)

		err = calc.Calculate(context.Background(), []*matching.Match{m})
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeAborted))
		assert.False(t, m.IsComputed())
		testutil.AssertLogContains(t, handler, slog.LevelWarn, "Stale degree day data")
	})

	t.Run("accepted once", func(t *testing.T) {
		calls := 0
		var warning string
		ack := AcknowledgerFunc(func(w string) error {
			calls++
			warning = w
			return nil
		})
		matches := []*matching.Match{newMatch(t, "DE", 100, 50, 20, 0), newMatch(t, "DE", 200, 50, 20, 0)}

		calc, err := NewCalculator(2022, flatTable(2021, "DE"), ack, nil)
		require.NoError(t, err)
		require.NoError(t, calc.Calculate(context.Background(), matches))

		assert.Equal(t, 1, calls)
		assert.Contains(t, warning, "year 2022")
		assert.True(t, matches[0].IsComputed())
		assert.True(t, matches[1].IsComputed())
	})

	t.Run("refusal is wrapped", func(t *testing.T) {
		ack := AcknowledgerFunc(func(string) error { return ErrNotAcknowledged })
		calc, err := NewCalculator(2022, flatTable(2021, "DE"), ack, nil)
		require.NoError(t, err)

		err = calc.Calculate(context.Background(), nil)
		assert.ErrorIs(t, err, ErrNotAcknowledged)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeAborted))
	})

	t.Run("current table is not checked", func(t *testing.T) {
		ack := AcknowledgerFunc(func(string) error {
			t.Fatal("acknowledger must not be called")
			return nil
		})
		calc, err := NewCalculator(2021, flatTable(2023, "DE"), ack, nil)
		require.NoError(t, err)
		require.NoError(t, calc.Calculate(context.Background(), nil))
	})
}

func TestCalculator_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calc, err := NewCalculator(2021, flatTable(2021, "DE"), nil, nil)
	require.NoError(t, err)

	err = calc.Calculate(ctx, []*matching.Match{newMatch(t, "DE", 100, 50, 20, 0)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewCalculator_Errors(t *testing.T) {
	_, err := NewCalculator(2019, flatTable(2021, "DE"), nil, nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))

	_, err = NewCalculator(2021, nil, nil, nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestCalculator_DegreeDayScaling(t *testing.T) {
	table := NewDegreeDayTable(2021)
	table.Set("DE", []float64{2000, 2000, 2000, 2000, 2000, 2000, 2000, 2400})

	m := newMatch(t, "DE", 100, 50, 20, 0)
	calc, err := NewCalculator(2021, table, nil, nil)
	require.NoError(t, err)
	require.NoError(t, calc.Calculate(context.Background(), []*matching.Match{m}))

	unscaled := 20 / (calc.Parameters().Beta * 0.3) / (47.3 / MWhPerTJ)
	assert.InDelta(t, unscaled*1.2, m.GenerationHeat, 1e-9)
	assert.False(t, math.IsNaN(m.EmissionFactor))
}
