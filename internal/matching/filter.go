package matching

import (
	"log/slog"
)

// Ignore reasons set by Filter
const (
	ReasonZeroGeneration = "0 generation"
	ReasonMixedFuels     = "uses mixed fuels"
	ReasonZeroEmissions  = "0 emissions"
)

// Filter applies the validity rules in order and returns the retained matches.
//
// Plants dominated by a non-fossil fuel are dropped entirely. Already ignored matches are kept
// unchanged. Remaining matches are ignored for zero generation, mixed fuels or zero
// emissions, in that order.
func Filter(matches []*Match, logger *slog.Logger) ([]*Match, error) {
	if logger == nil {
		logger = slog.Default()
	}

	retained := make([]*Match, 0, len(matches))
	dropped := 0
	for _, m := range matches {
		if m.HasFuel() && !m.Fuel.IsFossil() {
			dropped++
			continue
		}

		var err error
		switch {
		case m.IsIgnored():
		case m.GenerationEl == 0:
			err = m.Ignore(ReasonZeroGeneration)
		case !m.HasFuel():
			err = m.Ignore(ReasonMixedFuels)
		case m.EmissionSum() == 0:
			err = m.Ignore(ReasonZeroEmissions)
		}
		if err != nil {
			return nil, err
		}
		retained = append(retained, m)
	}

	logger.Debug("Matches filtered",
		slog.Int("retained", len(retained)),
		slog.Int("dropped_other_fuel", dropped))

	return retained, nil
}
