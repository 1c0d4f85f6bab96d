package pipeline

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/w-flo/eu-emission-factors/internal/config"
	"github.com/w-flo/eu-emission-factors/internal/dataprocessing"
	"github.com/w-flo/eu-emission-factors/internal/shared/testutil"
	"github.com/w-flo/eu-emission-factors/pkg/contracts/domain"
)

const testYear = 2021

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Processing.DataDir = t.TempDir()
	cfg.Processing.Year = testYear
	cfg.Output.Workbook = true
	cfg.Output.PDF = true
	return cfg
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// writeDegreeDays writes a Eurostat style table from 2012 to latest with a flat
// 3000 HDD for every listed country
func writeDegreeDays(t *testing.T, paths *config.Paths, latest int, countries ...string) {
	t.Helper()
	header := []string{`freq,unit,indic_nrg,geo\TIME_PERIOD`}
	for year := 2012; year <= latest; year++ {
		header = append(header, strconv.Itoa(year)+" ")
	}
	lines := []string{strings.Join(header, "\t")}
	for _, c := range countries {
		row := []string{"A,NR,HDD," + c}
		for year := 2012; year <= latest; year++ {
			row = append(row, "3000")
		}
		lines = append(lines, strings.Join(row, "\t"))
	}
	writeFile(t, paths.DegreeDaysFile(), strings.Join(lines, "\n")+"\n")
}

// writeProcessInputs writes the preprocessed files, manual matches and degree days of
// a small German/French data set:
//
//	Lippendorf R+S (lignite, manual) -> KW Lippendorf, EF 1100
//	Neurath A (lignite, auto)        -> KW Neurath, EF 1125
//	Cordemais 4 (coal, auto)         -> EDF Cordemais, ignored for 0 generation
//	Mystery (other fuel)             -> dropped
func writeProcessInputs(t *testing.T, paths *config.Paths, degreeDayLatest int) {
	t.Helper()

	generation := []domain.GenerationRecord{
		testutil.Generation("DE", "Lippendorf R", domain.FuelLignite, 6000),
		testutil.Generation("DE", "Lippendorf S", domain.FuelLignite, 4000),
		testutil.Generation("DE", "Neurath A", domain.FuelLignite, 8000),
		testutil.Generation("DE", "Mystery", domain.FuelOther, 100),
		testutil.Generation("FR", "Cordemais 4", domain.FuelCoal, 0),
	}
	emission := []domain.EmissionRecord{
		testutil.Emission("DE", "KW Lippendorf", 11000, 0, 0),
		testutil.Emission("DE", "KW Neurath", 9000, 0, 0),
		testutil.Emission("FR", "EDF Cordemais", 500, 0, 0),
	}
	require.NoError(t, dataprocessing.WriteGenerationFile(paths.GenerationFile(), generation))
	require.NoError(t, dataprocessing.WriteEmissionFile(paths.EmissionsFile(), emission))

	writeFile(t, paths.ManualMatchesFile(), strings.Join([]string{
		"generation,emission,settings,comment",
		",,,DE",
		"Lippendorf R|Lippendorf S,KW Lippendorf,,",
	}, "\n")+"\n")

	writeDegreeDays(t, paths, degreeDayLatest, "DE", "FR")
}

var etsHeader = []interface{}{
	"REGISTRY_CODE", "INSTALLATION_NAME", "INSTALLATION_IDENTIFIER", "PERMIT_IDENTIFIER",
	"MAIN_ACTIVITY_TYPE_CODE", "ALLOCATION_2018", "ALLOCATION_2019",
	"ALLOCATION_" + strconv.Itoa(testYear), "VERIFIED_EMISSIONS_" + strconv.Itoa(testYear),
}

func writeVerifiedEmissions(t *testing.T, paths *config.Paths, rows ...[]interface{}) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(paths.VerifiedEmissionsFile()), 0755))

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &etsHeader))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, 2+i)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(paths.VerifiedEmissionsFile()))
}

const archiveHeader = "DateTime\tResolutionCode\tAreaCode\tAreaTypeCode\tAreaName\tMapCode\tGenerationUnitEIC\tPowerSystemResourceName\tProductionType\tActualGenerationOutput\tActualConsumption\tInstalledGenCapacity\tUpdateTime"

func archiveLine(mapCode, eic, name, production, output string) string {
	return strings.Join([]string{
		"2021-01-01 00:00:00.000", "PT60M", "10Y1001A1001A83F", "CTA", "CTA", mapCode,
		eic, name, production, output, "", "1000", "2021-01-02 00:00:00",
	}, "\t")
}

// writeArchives writes one archive per month containing lines
func writeArchives(t *testing.T, paths *config.Paths, months int, lines ...string) {
	t.Helper()
	dir := filepath.Join(paths.YearDir(), config.GenerationArchiveDir)
	require.NoError(t, os.MkdirAll(dir, 0755))

	for month := 1; month <= months; month++ {
		name := fmt.Sprintf(config.GenerationArchivePattern, paths.Year, month)
		f, err := os.Create(filepath.Join(dir, name))
		require.NoError(t, err)

		zw := zip.NewWriter(f)
		w, err := zw.Create(strings.TrimSuffix(name, ".zip") + ".csv")
		require.NoError(t, err)
		_, err = w.Write([]byte(archiveHeader + "\n" + strings.Join(lines, "\n") + "\n"))
		require.NoError(t, err)
		require.NoError(t, zw.Close())
		require.NoError(t, f.Close())
	}
}
