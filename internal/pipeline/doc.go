// Package pipeline wires the readers, matchers, calculator and exporters into the two
// batch runs of a reporting year.
//
// Preprocess turns the raw inputs (verified ETS emissions workbook and monthly
// ENTSO-E generation archives) into powerplant_emissions.csv and
// powerplant_generation.csv. Process matches the preprocessed records, computes CHP
// corrected emission factors and writes the result files.
//
// Each run is a fixed sequence of steps executed by a Runner. Every step gets its own
// span, a duration metric and a log line carrying the run ID.
package pipeline
