// Package validation checks input files before a run and validates parsed records and
// configuration structs against their validate tags.
package validation
