package exporter

import (
	"log/slog"

	apperrors "github.com/w-flo/eu-emission-factors/internal/errors"
	"github.com/w-flo/eu-emission-factors/internal/matching"
	"github.com/w-flo/eu-emission-factors/pkg/contracts/domain"
)

// Column layouts of the result files
var (
	PlantHeader = []string{
		"country", "name", "generation", "emission", "fuel", "sigma",
		"generation_el", "generation_heat", "emissions_heat", "emissions_el", "emission_factor",
	}
	IgnoredPlantHeader = []string{
		"country", "name", "generation", "emission", "ignore_reason", "fuel", "sigma",
		"generation_el", "generation_heat", "emissions_heat", "emissions_el", "emission_factor",
	}
	FuelStatHeader = []string{
		"country", "fuel", "total_generation", "matched_generation", "coverage_percentage",
		"emissions_el", "emissions_heat", "emission_factor",
	}
)

// ResultExporter writes matches and fuel statistics as CSV
type ResultExporter struct {
	csv    *CSVWriter
	logger *slog.Logger
}

// NewResultExporter creates an exporter
func NewResultExporter(logger *slog.Logger) *ResultExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResultExporter{csv: NewCSVWriter(logger), logger: logger}
}

// ExportMatches writes active matches to plantsPath and ignored matches to ignoredPath,
// in the given order
func (e *ResultExporter) ExportMatches(matches []*matching.Match, plantsPath, ignoredPath string) error {
	plants, err := e.csv.CreateStreamWriter(plantsPath, PlantHeader)
	if err != nil {
		return err
	}
	ignored, err := e.csv.CreateStreamWriter(ignoredPath, IgnoredPlantHeader)
	if err != nil {
		plants.Close()
		return err
	}

	for _, m := range matches {
		stream, row := plants, PlantRow(m)
		if m.IsIgnored() {
			stream, row = ignored, IgnoredPlantRow(m)
		}
		if err := stream.WriteRecord(row); err != nil {
			plants.Close()
			ignored.Close()
			return apperrors.NewStorageError("write match", err).
				WithContext("country", m.Country).
				WithContext("name", m.Name)
		}
	}

	if err := plants.Close(); err != nil {
		ignored.Close()
		return apperrors.NewStorageError("close "+plantsPath, err)
	}
	if err := ignored.Close(); err != nil {
		return apperrors.NewStorageError("close "+ignoredPath, err)
	}

	e.logger.Info("Power plants exported",
		slog.Int("active", plants.Count()),
		slog.Int("ignored", ignored.Count()))
	return nil
}

// ExportFuelStats writes the country statistics to path
func (e *ResultExporter) ExportFuelStats(stats []domain.FuelStat, path string) error {
	records := make([][]string, len(stats))
	for i, s := range stats {
		records[i] = FuelStatRow(s)
	}
	return e.csv.WriteCSV(path, WriteOptions{Headers: FuelStatHeader, Records: records})
}

// PlantRow renders an active match in PlantHeader order
func PlantRow(m *matching.Match) []string {
	return []string{
		m.Country,
		m.Name,
		formatNames(m.GenerationNames()),
		formatNames(m.EmissionNames()),
		string(m.Fuel),
		formatFloat(m.Sigma),
		formatFloat(m.GenerationEl),
		formatFloat(m.GenerationHeat),
		formatFloat(m.EmissionsHeat),
		formatFloat(m.EmissionsEl),
		formatFloat(m.EmissionFactor),
	}
}

// IgnoredPlantRow renders a match in IgnoredPlantHeader order
func IgnoredPlantRow(m *matching.Match) []string {
	row := PlantRow(m)
	out := make([]string, 0, len(row)+1)
	out = append(out, row[:4]...)
	out = append(out, m.IgnoreReason())
	return append(out, row[4:]...)
}

// FuelStatRow renders a fuel statistic in FuelStatHeader order
func FuelStatRow(s domain.FuelStat) []string {
	return []string{
		s.Country,
		string(s.Fuel),
		formatFloat(s.TotalGeneration),
		formatFloat(s.MatchedGeneration),
		formatFloat(s.CoveragePercentage),
		formatFloat(s.EmissionsEl),
		formatFloat(s.EmissionsHeat),
		formatOptionalFloat(s.EmissionFactor),
	}
}
