package dataprocessing

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "github.com/w-flo/eu-emission-factors/internal/errors"
)

var etsTestHeader = []interface{}{
	"REGISTRY_CODE", "INSTALLATION_NAME", "INSTALLATION_IDENTIFIER", "PERMIT_IDENTIFIER",
	"MAIN_ACTIVITY_TYPE_CODE", "ALLOCATION_2018", "ALLOCATION_2019", "ALLOCATION_2021", "VERIFIED_EMISSIONS_2021",
}

func writeETSWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "Verified emissions and allocations"))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &etsTestHeader))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, 4+i)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestETSReader_ReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verified_emissions.xlsx")
	writeETSWorkbook(t, path, [][]interface{}{
		{"DE", "KW Neurath", 1234, "DE-0001", 20, 1000, 900, 50, 15000000},
		{"PL", "Elektrownia Bełchatów", 55, "PL-0099", 1, 0, 0, 0, 30000000},
		{"DE", "Raffinerie", 77, "DE-0002", 21, 10, 10, 10, 500},
		{"GB", "Drax", 1, "GB-1", 20, 10, 10, 10, 1000},
		{"FI", "Hanasaari", 9, "FI-9", 20, 1000, 900, -5, -3},
		{"AT", "Mellach", 3, "AT-3", 20, 1000, 0, 100, 200},
	})

	res, err := NewETSReader(nil).ReadFile(path, 2021)
	require.NoError(t, err)

	assert.Equal(t, []string{"AT", "DE", "FI", "PL"}, res.Countries)
	require.Len(t, res.Records, 4)

	neurath := res.Records[0]
	assert.Equal(t, "DE", neurath.Country)
	assert.Equal(t, "KW Neurath", neurath.Name)
	assert.Equal(t, "DE-0001:1234", neurath.ID)
	assert.Equal(t, 15000000.0, neurath.Emissions)
	assert.Equal(t, 50.0, neurath.Allocations)
	assert.InDelta(t, 0.297156, neurath.Sigma, 1e-6)

	belchatow := res.Records[1]
	assert.Equal(t, "Elektrownia Bełchatów", belchatow.Name)
	assert.Equal(t, 0.0, belchatow.Sigma)

	hanasaari := res.Records[2]
	assert.Equal(t, 0.0, hanasaari.Emissions, "negative values are clamped")
	assert.Equal(t, 0.0, hanasaari.Allocations)
	assert.Equal(t, 0.0, hanasaari.Sigma, "no current allocation means no sigma")

	mellach := res.Records[3]
	assert.Equal(t, 0.0, mellach.Sigma, "missing 2019 allocation means no sigma")
}

func TestETSReader_Read(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verified_emissions.xlsx")
	writeETSWorkbook(t, path, [][]interface{}{
		{"CZ", "Elektrárna Počerady", 7, "CZ-7", 20, 0, 0, 0, 100},
	})

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	res, err := NewETSReader(nil).Read(&buf, 2021)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "CZ-7:7", res.Records[0].ID)
}

func TestETSReader_MissingYearColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verified_emissions.xlsx")
	writeETSWorkbook(t, path, nil)

	_, err := NewETSReader(nil).ReadFile(path, 2022)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
	assert.Contains(t, err.Error(), "VERIFIED_EMISSIONS_2022")
}

func TestETSReader_NoHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue(f.GetSheetName(0), "A1", "nothing here"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	_, err := NewETSReader(nil).ReadFile(path, 2021)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REGISTRY_CODE")
}

func TestPrivilegedHeatShare(t *testing.T) {
	tests := []struct {
		name     string
		alloc18  float64
		alloc19  float64
		expected float64
	}{
		{"no 2018 allocation", 0, 900, 0},
		{"no 2019 allocation", 1000, 0, 0},
		{"partly privileged", 1000, 900, 0.297156},
		{"mostly privileged", 1000, 950, 0.645593},
		{"clamped to 1", 1000, 1000, 1},
		{"clamped to 0", 1000, 800, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, PrivilegedHeatShare(tt.alloc18, tt.alloc19), 1e-6)
		})
	}
}
