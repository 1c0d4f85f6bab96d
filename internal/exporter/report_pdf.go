package exporter

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jung-kurt/gofpdf"

	apperrors "github.com/w-flo/eu-emission-factors/internal/errors"
	"github.com/w-flo/eu-emission-factors/pkg/contracts/domain"
)

// ReportSummary is the header information of the PDF report
type ReportSummary struct {
	Year           int
	RunID          string
	GeneratedAt    time.Time
	ActivePlants   int
	IgnoredPlants  int
	StaleDegreeDay bool
}

// PDFExporter renders the country statistics as a PDF table
type PDFExporter struct {
	logger *slog.Logger
}

// NewPDFExporter creates an exporter
func NewPDFExporter(logger *slog.Logger) *PDFExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFExporter{logger: logger}
}

// ExportFile writes the report to path
func (e *PDFExporter) ExportFile(path string, summary ReportSummary, stats []domain.FuelStat) error {
	var buf bytes.Buffer
	if err := e.Export(&buf, summary, stats); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return apperrors.NewStorageError("write PDF report", err).WithContext("file", path)
	}
	e.logger.Info("PDF report written", slog.String("file", path), slog.Int("bytes", buf.Len()))
	return nil
}

// Export renders the report to w
func (e *PDFExporter) Export(w io.Writer, summary ReportSummary, stats []domain.FuelStat) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Emission factors %d", summary.Year), true)
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, fmt.Sprintf("Power plant emission factors %d", summary.Year))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Run: %s", summary.RunID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", summary.GeneratedAt.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Power plants: %d matched, %d ignored", summary.ActivePlants, summary.IgnoredPlants))
	pdf.Ln(5)
	if summary.StaleDegreeDay {
		pdf.Cell(0, 6, "Degree days for this year were not available, heat estimates use the 2014-2018 average.")
		pdf.Ln(5)
	}
	pdf.Ln(4)

	widths := []float64{30, 30, 38, 38, 28, 38, 38, 34}
	headers := []string{"Country", "Fuel", "Total (MWh)", "Matched (MWh)", "Coverage %", "CO2 el (t)", "CO2 heat (t)", "EF (kg/MWh)"}

	writeHeader := func() {
		pdf.SetFont("Arial", "B", 9)
		for i, h := range headers {
			pdf.CellFormat(widths[i], 6, h, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}
	writeHeader()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, s := range stats {
		if pdf.GetY()+6 > pageHeight-bottom-10 {
			pdf.AddPage()
			writeHeader()
		}

		ef := "-"
		if s.EmissionFactor != nil {
			ef = fmt.Sprintf("%.1f", *s.EmissionFactor)
		}
		cells := []string{
			countryLabel(s.Country),
			string(s.Fuel),
			fmt.Sprintf("%.0f", s.TotalGeneration),
			fmt.Sprintf("%.0f", s.MatchedGeneration),
			fmt.Sprintf("%.1f", s.CoveragePercentage),
			fmt.Sprintf("%.0f", s.EmissionsEl),
			fmt.Sprintf("%.0f", s.EmissionsHeat),
			ef,
		}
		for i, c := range cells {
			align := "R"
			if i < 2 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 6, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return apperrors.NewStorageError("render PDF report", err)
	}
	return nil
}
