package dataprocessing

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/w-flo/eu-emission-factors/internal/errors"
	"github.com/w-flo/eu-emission-factors/internal/validation"
	"github.com/w-flo/eu-emission-factors/pkg/contracts/domain"
)

const (
	etsHeaderMarker     = "REGISTRY_CODE"
	etsHeaderSearchRows = 100

	// main activity codes of combustion installations
	activityCombustion    = 20
	activityCombustionOld = 1
)

// excludedETSCountries no longer report to the EU ETS
var excludedETSCountries = map[string]bool{
	"GB": true,
}

// ETSResult holds the installations of one year and the countries they are located in
type ETSResult struct {
	Records   []domain.EmissionRecord
	Countries []string
}

// ETSReader reads the EU ETS verified emissions workbook
type ETSReader struct {
	logger    *slog.Logger
	validator *validation.RecordValidator
}

// NewETSReader creates a reader
func NewETSReader(logger *slog.Logger) *ETSReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &ETSReader{logger: logger, validator: validation.NewRecordValidator()}
}

// ReadFile reads the workbook at path
func (r *ETSReader) ReadFile(path string, year int) (*ETSResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParsingError("open verified emissions workbook", err).
			WithContext("file", path)
	}
	defer f.Close()

	res, err := r.read(f, year)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// Read reads a workbook from rd
func (r *ETSReader) Read(rd io.Reader, year int) (*ETSResult, error) {
	f, err := excelize.OpenReader(rd)
	if err != nil {
		return nil, apperrors.NewParsingError("open verified emissions workbook", err)
	}
	defer f.Close()
	return r.read(f, year)
}

func (r *ETSReader) read(f *excelize.File, year int) (*ETSResult, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewParsingError("verified emissions workbook has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewParsingError("read sheet "+sheets[0], err)
	}

	headerRow := -1
	for i := 0; i < len(rows) && i < etsHeaderSearchRows; i++ {
		if len(rows[i]) > 0 && strings.TrimSpace(rows[i][0]) == etsHeaderMarker {
			headerRow = i
			break
		}
	}
	if headerRow < 0 {
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("no %s header in the first %d rows", etsHeaderMarker, etsHeaderSearchRows), nil)
	}

	emissionsCol := fmt.Sprintf("VERIFIED_EMISSIONS_%d", year)
	allocationsCol := fmt.Sprintf("ALLOCATION_%d", year)
	cols, err := headerColumns(rows[headerRow],
		"INSTALLATION_NAME", "PERMIT_IDENTIFIER", "INSTALLATION_IDENTIFIER", "MAIN_ACTIVITY_TYPE_CODE",
		emissionsCol, allocationsCol, "ALLOCATION_2018", "ALLOCATION_2019")
	if err != nil {
		return nil, apperrors.NewParsingError("verified emissions header", err).
			WithContext("row", headerRow+1)
	}

	countrySet := make(map[string]bool)
	var records []domain.EmissionRecord
	skipped := 0

	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		activity := int(cellFloat(cols, row, "MAIN_ACTIVITY_TYPE_CODE"))
		if activity != activityCombustion && activity != activityCombustionOld {
			continue
		}

		country := ""
		if len(row) > 0 {
			country = strings.TrimSpace(row[0])
		}
		if excludedETSCountries[country] {
			skipped++
			continue
		}

		allocations := math.Max(cellFloat(cols, row, allocationsCol), 0)
		sigma := 0.0
		if allocations > 0 {
			sigma = PrivilegedHeatShare(
				math.Max(cellFloat(cols, row, "ALLOCATION_2018"), 0),
				math.Max(cellFloat(cols, row, "ALLOCATION_2019"), 0))
		}

		rec := domain.EmissionRecord{
			Country:     country,
			Name:        cols.get(row, "INSTALLATION_NAME"),
			ID:          cols.get(row, "PERMIT_IDENTIFIER") + ":" + cols.get(row, "INSTALLATION_IDENTIFIER"),
			Emissions:   math.Max(cellFloat(cols, row, emissionsCol), 0),
			Allocations: allocations,
			Sigma:       sigma,
		}
		if err := r.validator.Struct(rec); err != nil {
			return nil, apperrors.NewParsingError("invalid ETS installation", err).WithContext("row", i+1)
		}

		countrySet[country] = true
		records = append(records, rec)
	}

	countries := make([]string, 0, len(countrySet))
	for c := range countrySet {
		countries = append(countries, c)
	}
	slices.Sort(countries)

	r.logger.Info("Verified emissions loaded",
		slog.Int("year", year),
		slog.Int("installations", len(records)),
		slog.Int("countries", len(countries)),
		slog.Int("skipped_excluded_countries", skipped))

	return &ETSResult{Records: records, Countries: countries}, nil
}

// cellFloat returns the numeric value of a cell, 0 for empty or non-numeric cells
func cellFloat(cols columns, row []string, name string) float64 {
	v, err := strconv.ParseFloat(cols.get(row, name), 64)
	if err != nil || math.IsNaN(v) {
		return 0
	}
	return v
}

// PrivilegedHeatShare estimates sigma, the share of privileged heat in the free
// allocation, from the allocations of 2018 and 2019. Both years use different reduction
// factors for privileged and non-privileged heat, which makes the share solvable.
// The result is clamped to [0, 1] and is 0 when either allocation is 0.
func PrivilegedHeatShare(alloc2018, alloc2019 float64) float64 {
	if alloc2018 == 0 || alloc2019 == 0 {
		return 0
	}

	beta2018 := 1 - 0.0174*float64(2018-2013)
	beta2019 := 1 - 0.0174*float64(2019-2013)
	gamma2018 := 0.8 - (0.5/7)*float64(2018-2013)
	gamma2019 := 0.8 - (0.5/7)*float64(2019-2013)

	raw := (alloc2018*beta2019*gamma2019 - alloc2019*beta2018*gamma2018) /
		(alloc2019*beta2018*(1-gamma2018) - alloc2018*beta2019*(1-gamma2019))
	if math.IsNaN(raw) {
		return 0
	}
	return math.Min(math.Max(raw, 0), 1)
}
