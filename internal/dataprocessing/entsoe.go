package dataprocessing

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/w-flo/eu-emission-factors/internal/errors"
	"github.com/w-flo/eu-emission-factors/internal/validation"
	"github.com/w-flo/eu-emission-factors/pkg/contracts/domain"
)

const (
	colResolution  = "ResolutionCode"
	colUnitName    = "PowerSystemResourceName"
	colMapCode     = "MapCode"
	colUnitEIC     = "GenerationUnitEIC"
	colProduction  = "ProductionType"
	colOutput      = "ActualGenerationOutput"
	colConsumption = "ActualConsumption"

	defaultArchiveWorkers = 4
	cancelCheckInterval   = 10000
)

// productionFuels maps ENTSO-E production types to fuels. Types mapped to "" are not
// relevant and skipped, unknown types are FuelOther.
var productionFuels = map[string]domain.Fuel{
	"Fossil Gas":                      domain.FuelGas,
	"Fossil Hard coal":                domain.FuelCoal,
	"Fossil Brown coal/Lignite":       domain.FuelLignite,
	"Fossil Oil":                      domain.FuelOil,
	"Nuclear":                         "",
	"Hydro Pumped Storage":            "",
	"Hydro Water Reservoir":           "",
	"Hydro Run-of-river and poundage": "",
	"Solar":                           "",
	"Wind Onshore":                    "",
	"Wind Offshore":                   "",
}

// resolutionDivisors converts the values of one interval to MWh
var resolutionDivisors = map[string]float64{
	"PT60M": 1,
	"PT30M": 2,
	"PT15M": 4,
}

// ErrUnknownResolution is returned for resolution codes other than 15, 30 or 60 minutes
var ErrUnknownResolution = errors.New("unknown resolution code")

// productionFuel returns the fuel of a production type and whether the unit is relevant
func productionFuel(productionType string) (domain.Fuel, bool) {
	fuel, known := productionFuels[productionType]
	if !known {
		return domain.FuelOther, true
	}
	return fuel, fuel != ""
}

// unitTotals accumulates the output of generation units in first seen order
type unitTotals struct {
	units map[string]*domain.GenerationRecord
	order []string
}

func newUnitTotals() *unitTotals {
	return &unitTotals{units: make(map[string]*domain.GenerationRecord)}
}

func (u *unitTotals) add(rec domain.GenerationRecord) {
	unit, ok := u.units[rec.EIC]
	if !ok {
		unit = &rec
		u.units[rec.EIC] = unit
		u.order = append(u.order, rec.EIC)
		return
	}
	unit.Output += rec.Output
}

// GenerationReader aggregates the monthly ENTSO-E unit generation archives to yearly
// net output per generation unit
type GenerationReader struct {
	logger    *slog.Logger
	validator *validation.RecordValidator
	workers   int
}

// NewGenerationReader creates a reader that parses up to workers archives at once
func NewGenerationReader(workers int, logger *slog.Logger) *GenerationReader {
	if workers <= 0 {
		workers = defaultArchiveWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerationReader{logger: logger, validator: validation.NewRecordValidator(), workers: workers}
}

// ReadArchives parses the archives concurrently and merges them in the given order.
// Only units located in countries are kept. The result is sorted by EIC.
func (r *GenerationReader) ReadArchives(ctx context.Context, paths []string, countries []string) ([]domain.GenerationRecord, error) {
	wanted := make(map[string]bool, len(countries))
	for _, c := range countries {
		wanted[c] = true
	}

	monthly := make([]*unitTotals, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, path := range paths {
		g.Go(func() error {
			r.logger.Info("Loading generation archive", slog.String("file", path))
			totals, err := r.readArchive(ctx, path, wanted)
			if err != nil {
				return err
			}
			monthly[i] = totals
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	year := newUnitTotals()
	for _, totals := range monthly {
		for _, eic := range totals.order {
			year.add(*totals.units[eic])
		}
	}

	records := make([]domain.GenerationRecord, 0, len(year.units))
	for _, unit := range year.units {
		records = append(records, *unit)
	}
	slices.SortFunc(records, func(a, b domain.GenerationRecord) int {
		return strings.Compare(a.EIC, b.EIC)
	})

	r.logger.Info("Generation archives loaded",
		slog.Int("archives", len(paths)),
		slog.Int("units", len(records)))
	return records, nil
}

// readArchive parses the first file of a zip archive
func (r *GenerationReader) readArchive(ctx context.Context, path string, countries map[string]bool) (*unitTotals, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, apperrors.NewParsingError("open generation archive", err).WithContext("file", path)
	}
	defer zr.Close()

	if len(zr.File) == 0 {
		return nil, apperrors.NewParsingError("generation archive is empty", nil).WithContext("file", path)
	}

	entry, err := zr.File[0].Open()
	if err != nil {
		return nil, apperrors.NewParsingError("open archive entry "+zr.File[0].Name, err).WithContext("file", path)
	}
	defer entry.Close()

	totals, err := r.parseUnitGeneration(ctx, entry, countries)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return totals, nil
}

// parseUnitGeneration reads one tab separated month of unit generation values
func (r *GenerationReader) parseUnitGeneration(ctx context.Context, rd io.Reader, countries map[string]bool) (*unitTotals, error) {
	reader := csv.NewReader(rd)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.NewParsingError("read generation header", err)
	}
	cols, err := headerColumns(header, colResolution, colUnitName, colMapCode, colUnitEIC, colProduction, colOutput, colConsumption)
	if err != nil {
		return nil, apperrors.NewParsingError("generation header", err)
	}

	totals := newUnitTotals()
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError("read generation values", err).WithContext("line", line)
		}
		if line%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		country, _, _ := strings.Cut(cols.get(record, colMapCode), "_")
		if !countries[country] {
			continue
		}

		fuel, relevant := productionFuel(cols.get(record, colProduction))
		if !relevant {
			continue
		}

		resolution := cols.get(record, colResolution)
		divisor, ok := resolutionDivisors[resolution]
		if !ok {
			return nil, apperrors.NewParsingError(resolution, ErrUnknownResolution).WithContext("line", line)
		}

		output, err := optionalFloat(cols.get(record, colOutput))
		if err != nil {
			return nil, apperrors.NewParsingError("bad "+colOutput, err).WithContext("line", line)
		}
		consumption, err := optionalFloat(cols.get(record, colConsumption))
		if err != nil {
			return nil, apperrors.NewParsingError("bad "+colConsumption, err).WithContext("line", line)
		}

		rec := domain.GenerationRecord{
			Country: country,
			Name:    cols.get(record, colUnitName),
			EIC:     cols.get(record, colUnitEIC),
			Fuel:    fuel,
			Output:  output/divisor - consumption/divisor,
		}
		if err := r.validator.Struct(rec); err != nil {
			return nil, apperrors.NewParsingError("invalid generation value", err).WithContext("line", line)
		}
		totals.add(rec)
	}
	return totals, nil
}

// optionalFloat parses s, treating an empty value as 0
func optionalFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
