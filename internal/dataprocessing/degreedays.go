package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/w-flo/eu-emission-factors/internal/emissions"
	apperrors "github.com/w-flo/eu-emission-factors/internal/errors"
)

const (
	degreeDayIndicator = "HDD"
	missingValue       = ":"
)

// degreeDayCountryAliases maps Eurostat country codes to ISO 3166 codes
var degreeDayCountryAliases = map[string]string{
	"EL": "GR", // Ελλάς
}

// ReadDegreeDaysFile loads the Eurostat nrg_chdd_a table at path
func ReadDegreeDaysFile(path string, logger *slog.Logger) (*emissions.DegreeDayTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError("open degree day table", err).WithContext("file", path)
	}
	defer f.Close()

	table, err := ReadDegreeDays(f, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// ReadDegreeDays parses a tab separated Eurostat nrg_chdd_a table.
//
// The first column holds the series descriptor "freq,unit,indic_nrg,geo", the other
// columns are years. The last column is the latest year. Only HDD series are kept, with
// the values from 2014 on. Values may carry a flag after a space; ":" marks a missing value.
func ReadDegreeDays(rd io.Reader, logger *slog.Logger) (*emissions.DegreeDayTable, error) {
	if logger == nil {
		logger = slog.Default()
	}

	reader := csv.NewReader(rd)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.NewParsingError("read degree day header", err)
	}
	if len(header) < 2 {
		return nil, apperrors.NewParsingError("degree day header has no year columns", nil)
	}

	latestYear, err := strconv.Atoi(strings.TrimSpace(header[len(header)-1]))
	if err != nil {
		return nil, apperrors.NewParsingError("latest degree day year", err)
	}

	yearCols := make([]int, 0, latestYear-emissions.FirstDegreeDayYear+1)
	for year := emissions.FirstDegreeDayYear; year <= latestYear; year++ {
		col := -1
		for i := 1; i < len(header); i++ {
			if strings.TrimSpace(header[i]) == strconv.Itoa(year) {
				col = i
				break
			}
		}
		if col < 0 {
			return nil, apperrors.NewParsingError(fmt.Sprintf("degree day table has no column for %d", year), nil)
		}
		yearCols = append(yearCols, col)
	}

	table := emissions.NewDegreeDayTable(latestYear)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError("read degree days", err).WithContext("line", line)
		}

		descriptor := strings.Split(strings.TrimSpace(record[0]), ",")
		if len(descriptor) < 4 || descriptor[2] != degreeDayIndicator {
			continue
		}
		country := descriptor[3]
		if alias, ok := degreeDayCountryAliases[country]; ok {
			country = alias
		}

		values := make([]float64, len(yearCols))
		for i, col := range yearCols {
			raw := ""
			if col < len(record) {
				raw = record[col]
			}
			v, err := parseDegreeDayValue(raw)
			if err != nil {
				return nil, apperrors.NewParsingError("bad degree day value", err).
					WithContext("line", line).
					WithContext("country", country).
					WithContext("year", emissions.FirstDegreeDayYear+i)
			}
			values[i] = v
		}
		table.Set(country, values)
	}

	logger.Info("Degree days loaded",
		slog.Int("latest_year", latestYear),
		slog.Int("countries", len(table.Countries())))
	return table, nil
}

// parseDegreeDayValue parses "1234.5", "1234.5 e" or ":" (NaN)
func parseDegreeDayValue(raw string) (float64, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 || fields[0] == missingValue {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(fields[0], 64)
}
