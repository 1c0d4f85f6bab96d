package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/w-flo/eu-emission-factors/internal/errors"
)

func TestPathsLayout(t *testing.T) {
	p := NewPaths("data", 2022)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"degree days", p.DegreeDaysFile(), "data/degree_days/nrg_chdd_a.tsv"},
		{"verified emissions", p.VerifiedEmissionsFile(), "data/verified_ets_emissions/verified_emissions.xlsx"},
		{"emissions", p.EmissionsFile(), "data/2022/preprocessed/powerplant_emissions.csv"},
		{"generation", p.GenerationFile(), "data/2022/preprocessed/powerplant_generation.csv"},
		{"manual matches", p.ManualMatchesFile(), "data/2022/manual_matches.csv"},
		{"powerplants", p.PowerplantsFile(), "data/2022/output/powerplants.csv"},
		{"ignored", p.IgnoredPowerplantsFile(), "data/2022/output/ignored_powerplants.csv"},
		{"countries", p.CountriesFile(), "data/2022/output/countries.csv"},
		{"workbook", p.WorkbookFile(), "data/2022/output/emission_factors.xlsx"},
		{"report", p.ReportFile(), "data/2022/output/countries.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, filepath.FromSlash(tt.want), tt.got)
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	p := NewPaths(t.TempDir(), 2021)
	require.NoError(t, p.EnsureDirectories())

	for _, dir := range []string{p.PreprocessedDir(), p.OutputDir()} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func touchArchive(t *testing.T, p *Paths, pattern string, month int) string {
	t.Helper()
	dir := filepath.Join(p.YearDir(), GenerationArchiveDir)
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, fmt.Sprintf(pattern, p.Year, month))
	require.NoError(t, os.WriteFile(path, []byte("zip"), 0644))
	return path
}

func TestGenerationArchive(t *testing.T) {
	p := NewPaths(t.TempDir(), 2023)

	legacy := touchArchive(t, p, LegacyGenerationArchivePattern, 1)
	got, err := p.GenerationArchive(1)
	require.NoError(t, err)
	assert.Equal(t, legacy, got)
	assert.Equal(t, "2023_01_ActualGenerationOutputPerGenerationUnit_16.1.A.zip", filepath.Base(got))

	current := touchArchive(t, p, GenerationArchivePattern, 1)
	got, err = p.GenerationArchive(1)
	require.NoError(t, err)
	assert.Equal(t, current, got, "current revision wins over legacy name")

	_, err = p.GenerationArchive(2)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))

	_, err = p.GenerationArchive(13)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestGenerationArchives(t *testing.T) {
	p := NewPaths(t.TempDir(), 2020)
	for month := 1; month <= 11; month++ {
		touchArchive(t, p, GenerationArchivePattern, month)
	}

	_, err := p.GenerationArchives()
	require.Error(t, err, "december is missing")

	touchArchive(t, p, LegacyGenerationArchivePattern, 12)
	paths, err := p.GenerationArchives()
	require.NoError(t, err)
	require.Len(t, paths, 12)
	assert.Contains(t, paths[11], "2020_12_")
}
