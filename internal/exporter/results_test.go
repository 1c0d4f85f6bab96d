package exporter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w-flo/eu-emission-factors/internal/matching"
	"github.com/w-flo/eu-emission-factors/internal/shared/testutil"
	"github.com/w-flo/eu-emission-factors/pkg/contracts/domain"
)

func testMatches(t *testing.T) []*matching.Match {
	t.Helper()

	active, err := matching.NewMatch("neurath",
		[]domain.GenerationRecord{
			testutil.Generation("DE", "Neurath F", domain.FuelLignite, 600),
			testutil.Generation("DE", "Neurath G", domain.FuelLignite, 400),
		},
		[]domain.EmissionRecord{testutil.Emission("DE", "KW Neurath", 1100, 0, 0)})
	require.NoError(t, err)
	active.SetCHPResult(matching.CHPResult{EmissionsEl: 1100, EmissionFactor: 1100})

	ignored, err := matching.NewMatch("",
		[]domain.GenerationRecord{testutil.Generation("DE", "GT 1", domain.FuelGas, 10)}, nil)
	require.NoError(t, err)
	require.NoError(t, ignored.Ignore(matching.ReasonMeaninglessName))

	return []*matching.Match{active, ignored}
}

func testStats() []domain.FuelStat {
	ef := 1100.0
	return []domain.FuelStat{
		{Country: "", Fuel: domain.FuelLignite, TotalGeneration: 1000, MatchedGeneration: 1000, CoveragePercentage: 100, EmissionsEl: 1100, EmissionFactor: &ef},
		{Country: "DE", Fuel: domain.FuelGas, TotalGeneration: 10, CoveragePercentage: 0},
	}
}

func TestResultExporter_ExportMatches(t *testing.T) {
	dir := t.TempDir()
	plants := filepath.Join(dir, "output", "powerplants.csv")
	ignored := filepath.Join(dir, "output", "ignored_powerplants.csv")

	logger, _ := testutil.NewTestLogger(t)
	require.NoError(t, NewResultExporter(logger).ExportMatches(testMatches(t), plants, ignored))

	content, err := os.ReadFile(plants)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(PlantHeader, ","), lines[0])
	assert.Equal(t, "DE,neurath,Neurath F|Neurath G,KW Neurath,lignite,0,1000,0,0,1100,1100", lines[1])

	content, err = os.ReadFile(ignored)
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(IgnoredPlantHeader, ","), lines[0])
	assert.Equal(t, "DE,,GT 1,,seems to be a meaningless generation unit name,gas,0,10,0,0,0,0", lines[1])
}

func TestResultExporter_ExportFuelStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "countries.csv")
	require.NoError(t, NewResultExporter(nil).ExportFuelStats(testStats(), path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"country,fuel,total_generation,matched_generation,coverage_percentage,emissions_el,emissions_heat,emission_factor\n"+
			",lignite,1000,1000,100,1100,0,1100\n"+
			"DE,gas,10,0,0,0,0,\n",
		string(content))
}

func TestIgnoredPlantRow_ColumnOrder(t *testing.T) {
	m := testMatches(t)[1]
	row := IgnoredPlantRow(m)
	require.Len(t, row, len(IgnoredPlantHeader))
	assert.Equal(t, m.IgnoreReason(), row[4])
	assert.Equal(t, "gas", row[5])
}
