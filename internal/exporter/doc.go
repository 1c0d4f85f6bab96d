// Package exporter writes the results of a processing run.
//
// CSV files are the primary output: powerplants.csv for active matches,
// ignored_powerplants.csv for ignored matches (with an ignore_reason column) and
// countries.csv for the per country and fuel statistics. An xlsx workbook and a PDF
// summary of the country statistics can be written in addition.
//
// Example usage:
//
//	csvExporter := exporter.NewResultExporter(logger)
//	err := csvExporter.ExportMatches(matches, paths.PowerplantsFile(), paths.IgnoredPowerplantsFile())
//	err = csvExporter.ExportFuelStats(stats, paths.CountriesFile())
package exporter
