// Package dataprocessing turns the raw yearly inputs into structured records.
//
// # Inputs
//
//   - the EU ETS verified emissions workbook (xlsx), read with excelize
//   - twelve monthly ENTSO-E "actual generation per generation unit" archives (zip of
//     tab separated text), parsed concurrently
//   - the Eurostat heating degree day table nrg_chdd_a (tsv)
//   - manual_matches.csv
//
// The preprocessed records are stored as CSV (powerplant_emissions.csv and
// powerplant_generation.csv) and read back by the processing run.
//
// # Error Handling
//
// Malformed input is reported as a PARSING AppError carrying the file and line.
package dataprocessing
