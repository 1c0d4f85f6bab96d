package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	apperrors "github.com/w-flo/eu-emission-factors/internal/errors"
)

// Paths is the single source of truth for the file layout of one reporting year.
//
//	data/
//	  ├── degree_days/nrg_chdd_a.tsv
//	  ├── verified_ets_emissions/verified_emissions.xlsx
//	  └── <year>/
//	      ├── entsoe_unit_generation/   (12 monthly ENTSO-E archives)
//	      ├── manual_matches.csv
//	      ├── preprocessed/
//	      └── output/
type Paths struct {
	DataDir string
	Year    int
}

// NewPaths returns the layout for year below dataDir
func NewPaths(dataDir string, year int) *Paths {
	return &Paths{DataDir: dataDir, Year: year}
}

// YearDir is the per-year directory
func (p *Paths) YearDir() string {
	return filepath.Join(p.DataDir, strconv.Itoa(p.Year))
}

// PreprocessedDir holds the CSV files produced by the preprocess stage
func (p *Paths) PreprocessedDir() string {
	return filepath.Join(p.YearDir(), PreprocessedDirName)
}

// OutputDir holds the result files of a processing run
func (p *Paths) OutputDir() string {
	return filepath.Join(p.YearDir(), OutputDirName)
}

// EnsureDirectories creates the preprocessed and output directories
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.PreprocessedDir(), p.OutputDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return apperrors.NewStorageError("failed to create directory", err).
				WithContext("dir", dir)
		}
	}
	return nil
}

func (p *Paths) DegreeDaysFile() string {
	return filepath.Join(p.DataDir, filepath.FromSlash(DegreeDaysFileName))
}

func (p *Paths) VerifiedEmissionsFile() string {
	return filepath.Join(p.DataDir, filepath.FromSlash(VerifiedEmissionsName))
}

func (p *Paths) EmissionsFile() string {
	return filepath.Join(p.PreprocessedDir(), EmissionsFileName)
}

func (p *Paths) GenerationFile() string {
	return filepath.Join(p.PreprocessedDir(), GenerationFileName)
}

func (p *Paths) ManualMatchesFile() string {
	return filepath.Join(p.YearDir(), ManualMatchesFileName)
}

func (p *Paths) PowerplantsFile() string {
	return filepath.Join(p.OutputDir(), PowerplantsFileName)
}

func (p *Paths) IgnoredPowerplantsFile() string {
	return filepath.Join(p.OutputDir(), IgnoredPowerplantsName)
}

func (p *Paths) CountriesFile() string {
	return filepath.Join(p.OutputDir(), CountriesFileName)
}

func (p *Paths) WorkbookFile() string {
	return filepath.Join(p.OutputDir(), WorkbookFileName)
}

func (p *Paths) ReportFile() string {
	return filepath.Join(p.OutputDir(), ReportFileName)
}

func (p *Paths) MetricsFile() string {
	return filepath.Join(p.OutputDir(), MetricsFileName)
}

func (p *Paths) TraceFile() string {
	return filepath.Join(p.OutputDir(), TraceFileName)
}

// GenerationArchive returns the ENTSO-E archive for month (1-12). The current
// revision name is preferred over the legacy one.
func (p *Paths) GenerationArchive(month int) (string, error) {
	if month < 1 || month > 12 {
		return "", apperrors.NewValidationError(fmt.Sprintf("invalid month %d", month), nil)
	}

	dir := filepath.Join(p.YearDir(), GenerationArchiveDir)
	candidates := []string{
		filepath.Join(dir, fmt.Sprintf(GenerationArchivePattern, p.Year, month)),
		filepath.Join(dir, fmt.Sprintf(LegacyGenerationArchivePattern, p.Year, month)),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", apperrors.NewNotFoundError("generation archive").
		WithContext("month", month).
		WithContext("path", candidates[len(candidates)-1])
}

// GenerationArchives resolves all twelve monthly archives in month order
func (p *Paths) GenerationArchives() ([]string, error) {
	paths := make([]string, 0, 12)
	for month := 1; month <= 12; month++ {
		path, err := p.GenerationArchive(month)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
