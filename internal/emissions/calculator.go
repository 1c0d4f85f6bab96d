package emissions

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "github.com/w-flo/eu-emission-factors/internal/errors"
	"github.com/w-flo/eu-emission-factors/internal/matching"
)

// ReasonImplausible is the ignore reason for emission factors outside the plausible range
const ReasonImplausible = "emission factor seems implausible"

// Calculator computes the CHP corrected emission factors of matches for one year
type Calculator struct {
	params Parameters
	table  *DegreeDayTable
	ack    Acknowledger
	logger *slog.Logger
}

// NewCalculator creates a calculator. ack is consulted when the degree day table does
// not cover year; a nil ack refuses.
func NewCalculator(year int, table *DegreeDayTable, ack Acknowledger, logger *slog.Logger) (*Calculator, error) {
	params, err := ParametersForYear(year)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, apperrors.NewConfigError("degree day table is required", nil)
	}
	if ack == nil {
		ack = RejectStale{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{params: params, table: table, ack: ack, logger: logger}, nil
}

// Parameters returns the constants used by the calculator
func (c *Calculator) Parameters() Parameters {
	return c.params
}

// Calculate sets the heat/electricity split of every active match and ignores matches
// whose emission factor is outside their plausible range. Ignored matches are skipped.
func (c *Calculator) Calculate(ctx context.Context, matches []*matching.Match) error {
	if err := c.checkStaleness(); err != nil {
		return err
	}

	computed, implausible := 0, 0
	for _, m := range matches {
		if m.IsIgnored() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return apperrors.NewAbortedError("emission factor calculation cancelled", err)
		}

		ratio, err := c.table.Ratio(m.Country, c.params.Year)
		if err != nil {
			return fmt.Errorf("calculate %s %q: %w", m.Country, m.Name, err)
		}

		result := Disaggregate(c.params, m.GenerationEl, m.EmissionSum(), m.AllocationSum(), m.Sigma, ratio)
		m.SetCHPResult(result)
		computed++

		if !m.PlausibleRange.Contains(result.EmissionFactor) {
			if err := m.Ignore(ReasonImplausible); err != nil {
				return err
			}
			implausible++
			c.logger.Debug("Implausible emission factor",
				slog.String("country", m.Country),
				slog.String("name", m.Name),
				slog.Float64("emission_factor", result.EmissionFactor))
		}
	}

	c.logger.Info("Emission factors calculated",
		slog.Int("year", c.params.Year),
		slog.Int("computed", computed),
		slog.Int("implausible", implausible))
	return nil
}

func (c *Calculator) checkStaleness() error {
	if c.table.LatestYear >= c.params.Year {
		return nil
	}

	warning := fmt.Sprintf("Degree days database does not include data for year %d.", c.params.Year)
	c.logger.Warn("Stale degree day data",
		slog.Int("year", c.params.Year),
		slog.Int("latest_year", c.table.LatestYear))

	if err := c.ack.Acknowledge(warning); err != nil {
		if apperrors.IsType(err, apperrors.ErrTypeAborted) {
			return err
		}
		return apperrors.NewAbortedError("stale degree day data", err)
	}
	return nil
}

// Disaggregate splits emissionSum into heat and electricity emissions.
//
// hddRatio is the heating degree days of the year divided by the baseline. generationEl
// must be positive for the emission factor to be finite.
func Disaggregate(p Parameters, generationEl, emissionSum, allocationSum, sigma, hddRatio float64) matching.CHPResult {
	allocPrivileged := sigma * allocationSum
	allocNonPrivileged := (1 - sigma) * allocationSum

	// allocation before reduction factors, i.e. the plain heat benchmark result
	prelimPrivileged := allocPrivileged / p.Beta
	prelimNonPrivileged := allocNonPrivileged / (p.Beta * p.Gamma)

	// non-privileged heat is mostly district heating and follows winter temperatures
	scaledNonPrivileged := prelimNonPrivileged * hddRatio

	generationHeat := (scaledNonPrivileged + prelimPrivileged) / (p.HeatBenchmark / MWhPerTJ)

	shareHeat := generationHeat / p.EfficiencyHeat
	shareEl := generationEl / p.EfficiencyEl
	emissionsHeat := emissionSum * shareHeat / (shareHeat + shareEl)
	emissionsEl := emissionSum - emissionsHeat

	return matching.CHPResult{
		GenerationHeat: generationHeat,
		EmissionsHeat:  emissionsHeat,
		EmissionsEl:    emissionsEl,
		EmissionFactor: emissionsEl * 1000 / generationEl,
	}
}
