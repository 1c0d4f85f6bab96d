package exporter

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/w-flo/eu-emission-factors/internal/errors"
	"github.com/w-flo/eu-emission-factors/internal/matching"
	"github.com/w-flo/eu-emission-factors/pkg/contracts/domain"
)

// Sheet names of the results workbook
const (
	SheetPlants    = "Power plants"
	SheetIgnored   = "Ignored"
	SheetCountries = "Countries"
)

// WorkbookExporter writes all results into one xlsx workbook
type WorkbookExporter struct {
	logger *slog.Logger
}

// NewWorkbookExporter creates an exporter
func NewWorkbookExporter(logger *slog.Logger) *WorkbookExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookExporter{logger: logger}
}

// ExportFile writes the workbook to path
func (e *WorkbookExporter) ExportFile(path string, year int, matches []*matching.Match, stats []domain.FuelStat) error {
	f, err := e.build(year, matches, stats)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return apperrors.NewStorageError("save workbook", err).WithContext("file", path)
	}
	e.logger.Info("Workbook written", slog.String("file", path))
	return nil
}

// Export writes the workbook to w
func (e *WorkbookExporter) Export(w io.Writer, year int, matches []*matching.Match, stats []domain.FuelStat) error {
	f, err := e.build(year, matches, stats)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return apperrors.NewStorageError("write workbook", err)
	}
	return nil
}

func (e *WorkbookExporter) build(year int, matches []*matching.Match, stats []domain.FuelStat) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetCountries); err != nil {
		f.Close()
		return nil, apperrors.NewStorageError("rename sheet", err)
	}
	for _, name := range []string{SheetPlants, SheetIgnored} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, apperrors.NewStorageError("create sheet "+name, err)
		}
	}

	countryRows := make([][]interface{}, 0, len(stats))
	for _, s := range stats {
		var ef interface{}
		if s.EmissionFactor != nil {
			ef = *s.EmissionFactor
		}
		countryRows = append(countryRows, []interface{}{
			countryLabel(s.Country), string(s.Fuel), s.TotalGeneration, s.MatchedGeneration,
			s.CoveragePercentage, s.EmissionsEl, s.EmissionsHeat, ef,
		})
	}

	var plantRows, ignoredRows [][]interface{}
	for _, m := range matches {
		values := []interface{}{
			m.Country, m.Name, formatNames(m.GenerationNames()), formatNames(m.EmissionNames()),
		}
		if m.IsIgnored() {
			values = append(values, m.IgnoreReason())
		}
		values = append(values, string(m.Fuel), m.Sigma, m.GenerationEl, m.GenerationHeat,
			m.EmissionsHeat, m.EmissionsEl, m.EmissionFactor)

		if m.IsIgnored() {
			ignoredRows = append(ignoredRows, values)
		} else {
			plantRows = append(plantRows, values)
		}
	}

	sheets := []struct {
		name   string
		header []string
		rows   [][]interface{}
	}{
		{SheetCountries, FuelStatHeader, countryRows},
		{SheetPlants, PlantHeader, plantRows},
		{SheetIgnored, IgnoredPlantHeader, ignoredRows},
	}
	for _, sheet := range sheets {
		if err := writeSheet(f, sheet.name, sheet.header, sheet.rows); err != nil {
			f.Close()
			return nil, apperrors.NewStorageError("fill sheet "+sheet.name, err)
		}
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   fmt.Sprintf("EU power plant emission factors %d", year),
		Subject: "CO2 emission factors per power plant, country and fuel",
	}); err != nil {
		f.Close()
		return nil, apperrors.NewStorageError("set document properties", err)
	}
	return f, nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]interface{}) error {
	headerValues := make([]interface{}, len(header))
	for i, h := range header {
		headerValues[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerValues); err != nil {
		return err
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
