// Package matching pairs ENTSO-E generation units with EU ETS installations.
//
// A Match represents one physical power plant. Matches are built in two passes:
//
//  1. ManualResolver applies curated directives from manual_matches.csv and claims the
//     named records from shared pools. A record can be claimed exactly once.
//  2. AutoMatcher groups every unclaimed record by (country, Key(name)).
//
// Filter then applies the ordered validity rules and SortMatches establishes the output
// order (country, name, first generation unit name) used by every writer.
//
// Individual plants never fail the run: they transition to Ignored with a reason and are
// reported in the ignored output. Inconsistent manual input is fatal.
package matching
