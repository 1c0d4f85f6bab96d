// Package stats rolls finalized matches up into per country and fuel statistics.
package stats

import (
	"cmp"
	"slices"

	"github.com/w-flo/eu-emission-factors/internal/matching"
	"github.com/w-flo/eu-emission-factors/pkg/contracts/domain"
)

type statKey struct {
	country string
	fuel    domain.Fuel
}

// Aggregate builds the FuelStat rows for the given generation records and matches.
//
// Total generation sums every non-other generation unit, matched or not. Active matches
// add their generation and emissions to the row of their country and fuel. The
// AllCountries rollup and the coal+lignite rows are derived from those rows. Rows are
// returned ordered by country and fuel.
func Aggregate(generation []domain.GenerationRecord, matches []*matching.Match) []domain.FuelStat {
	rows := make(map[statKey]*domain.FuelStat)
	row := func(k statKey) *domain.FuelStat {
		s, ok := rows[k]
		if !ok {
			s = &domain.FuelStat{Country: k.country, Fuel: k.fuel}
			rows[k] = s
		}
		return s
	}

	for _, g := range generation {
		if !g.Fuel.IsFossil() {
			continue
		}
		row(statKey{g.Country, g.Fuel}).TotalGeneration += g.Output
	}

	for _, m := range matches {
		if m.IsIgnored() || !m.HasFuel() {
			continue
		}
		s := row(statKey{m.Country, m.Fuel})
		s.MatchedGeneration += m.GenerationEl
		s.EmissionsEl += m.EmissionsEl
		s.EmissionsHeat += m.EmissionsHeat
	}

	// rollups are derived from the per country rows only
	base := make([]domain.FuelStat, 0, len(rows))
	for _, s := range rows {
		base = append(base, *s)
	}

	for _, s := range base {
		row(statKey{domain.AllCountries, s.Fuel}).Add(s)
	}

	derived := make([]domain.FuelStat, 0, len(rows))
	for _, s := range rows {
		if s.Fuel == domain.FuelCoal || s.Fuel == domain.FuelLignite {
			derived = append(derived, *s)
		}
	}
	for _, s := range derived {
		row(statKey{s.Country, domain.FuelCoalLignite}).Add(s)
	}

	out := make([]domain.FuelStat, 0, len(rows))
	for _, s := range rows {
		s.Finalize()
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b domain.FuelStat) int {
		return cmp.Or(cmp.Compare(a.Country, b.Country), cmp.Compare(a.Fuel, b.Fuel))
	})
	return out
}
