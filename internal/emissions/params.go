package emissions

import (
	"fmt"

	apperrors "github.com/w-flo/eu-emission-factors/internal/errors"
)

// MWhPerTJ converts TJ to MWh
const MWhPerTJ = 277.777777

const (
	minSupportedYear = 2020
	carbonLeakage    = 0.3
	efficiencyHeat   = 0.8
	efficiencyEl     = 0.35
)

// Parameters are the regulatory constants for one processing year
type Parameters struct {
	Year int
	// Beta is the linear reduction factor
	Beta float64
	// Gamma is the carbon leakage exposure factor for non-privileged heat
	Gamma float64
	// HeatBenchmark in t CO2/TJ
	HeatBenchmark  float64
	EfficiencyHeat float64
	EfficiencyEl   float64
}

// ParametersForYear returns the constants valid for year. Years before 2020 and years
// without a known heat benchmark are configuration errors.
func ParametersForYear(year int) (Parameters, error) {
	if year < minSupportedYear {
		return Parameters{}, apperrors.NewConfigError(fmt.Sprintf("year %d < %d unsupported", year, minSupportedYear), nil)
	}

	var benchmark float64
	switch {
	case year >= 2013 && year <= 2020:
		benchmark = 62.3
	case year >= 2021 && year <= 2025:
		benchmark = 47.3
	default:
		return Parameters{}, apperrors.NewConfigError(fmt.Sprintf("year %d is unsupported", year), nil).
			WithContext("reason", "no heat benchmark")
	}

	return Parameters{
		Year:           year,
		Beta:           0.8782 - 0.022*float64(year-minSupportedYear),
		Gamma:          carbonLeakage,
		HeatBenchmark:  benchmark,
		EfficiencyHeat: efficiencyHeat,
		EfficiencyEl:   efficiencyEl,
	}, nil
}
