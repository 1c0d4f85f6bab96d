package exporter

import (
	"strconv"
	"strings"
)

const nameSeparator = "|"

// formatFloat renders the shortest representation that parses back to f
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatOptionalFloat renders nil as an empty field
func formatOptionalFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}

// formatNames joins record names the way manual_matches.csv lists them
func formatNames(names []string) string {
	return strings.Join(names, nameSeparator)
}

// countryLabel names the rollup row
func countryLabel(country string) string {
	if country == "" {
		return "all countries"
	}
	return country
}
