package matching

import (
	"cmp"
	"slices"
)

// SortMatches orders matches by country, name and first generation unit name
func SortMatches(matches []*Match) {
	slices.SortStableFunc(matches, func(a, b *Match) int {
		return cmp.Or(
			cmp.Compare(a.Country, b.Country),
			cmp.Compare(a.Name, b.Name),
			cmp.Compare(a.firstGenerationName(), b.firstGenerationName()),
		)
	})
}
