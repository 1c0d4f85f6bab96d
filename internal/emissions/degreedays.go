package emissions

import (
	"fmt"
	"math"
	"sort"

	apperrors "github.com/w-flo/eu-emission-factors/internal/errors"
)

const (
	// FirstDegreeDayYear is the year of the first value of every series
	FirstDegreeDayYear = 2014
	baselineYears      = 5
)

// DegreeDayTable holds the annual heating degree days per country, starting in 2014.
// Missing values are NaN. The table is read-only once built.
type DegreeDayTable struct {
	LatestYear int
	series     map[string][]float64
}

// NewDegreeDayTable creates an empty table whose newest column is latestYear
func NewDegreeDayTable(latestYear int) *DegreeDayTable {
	return &DegreeDayTable{LatestYear: latestYear, series: make(map[string][]float64)}
}

// Set stores the series of a country. values[0] is the value for 2014.
func (t *DegreeDayTable) Set(country string, values []float64) {
	t.series[country] = values
}

// Countries returns the countries in the table, sorted
func (t *DegreeDayTable) Countries() []string {
	countries := make([]string, 0, len(t.series))
	for c := range t.series {
		countries = append(countries, c)
	}
	sort.Strings(countries)
	return countries
}

// Series returns the values of a country
func (t *DegreeDayTable) Series(country string) ([]float64, bool) {
	s, ok := t.series[country]
	return s, ok
}

// Baseline is the 2014-2018 average of a country
func (t *DegreeDayTable) Baseline(country string) (float64, error) {
	s, ok := t.Series(country)
	if !ok {
		return 0, apperrors.NewNotFoundError("degree days for country " + country)
	}
	if len(s) < baselineYears {
		return 0, apperrors.NewValidationError(
			fmt.Sprintf("degree days for %s: need %d baseline years, got %d", country, baselineYears, len(s)), nil)
	}

	sum := 0.0
	for _, v := range s[:baselineYears] {
		sum += v
	}
	baseline := sum / baselineYears
	if math.IsNaN(baseline) || baseline == 0 {
		return 0, apperrors.NewValidationError("degree days for "+country+": no usable baseline", nil)
	}
	return baseline, nil
}

// Current returns the value of a country for year, falling back to the baseline when
// the table has no value for it. The second result reports whether the fallback was used.
func (t *DegreeDayTable) Current(country string, year int) (float64, bool, error) {
	baseline, err := t.Baseline(country)
	if err != nil {
		return 0, false, err
	}

	s, _ := t.Series(country)
	i := year - FirstDegreeDayYear
	if i < 0 || i >= len(s) || math.IsNaN(s[i]) {
		return baseline, true, nil
	}
	return s[i], false, nil
}

// Ratio is current/baseline for a country, exactly 1 when the year has no value
func (t *DegreeDayTable) Ratio(country string, year int) (float64, error) {
	current, fallback, err := t.Current(country, year)
	if err != nil {
		return 0, err
	}
	if fallback {
		return 1, nil
	}
	baseline, err := t.Baseline(country)
	if err != nil {
		return 0, err
	}
	return current / baseline, nil
}
