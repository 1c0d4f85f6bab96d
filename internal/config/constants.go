package config

import "time"

// Application constants
const (
	// Application Info
	AppName    = "EU Emission Factors"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable, e.g. EMFACTORS_PROCESSING_YEAR
	EnvPrefix = "EMFACTORS"

	// Supported reporting years
	MinYear = 2020
	MaxYear = 2025

	// File Paths (relative to the data directory)
	DefaultDataDir          = "data"
	DegreeDaysFileName      = "degree_days/nrg_chdd_a.tsv"
	VerifiedEmissionsName   = "verified_ets_emissions/verified_emissions.xlsx"
	PreprocessedDirName     = "preprocessed"
	OutputDirName           = "output"
	GenerationArchiveDir    = "entsoe_unit_generation"
	EmissionsFileName       = "powerplant_emissions.csv"
	GenerationFileName      = "powerplant_generation.csv"
	ManualMatchesFileName   = "manual_matches.csv"
	PowerplantsFileName     = "powerplants.csv"
	IgnoredPowerplantsName  = "ignored_powerplants.csv"
	CountriesFileName       = "countries.csv"
	WorkbookFileName        = "emission_factors.xlsx"
	ReportFileName          = "countries.pdf"
	MetricsFileName         = "emission_factors.prom"
	TraceFileName           = "trace.json"

	// ENTSO-E archive names, newest revision first
	GenerationArchivePattern       = "%d_%02d_ActualGenerationOutputPerGenerationUnit_16.1.A_r2.1.zip"
	LegacyGenerationArchivePattern = "%d_%02d_ActualGenerationOutputPerGenerationUnit_16.1.A.zip"

	// Plausible emission factor range in g/kWh
	DefaultPlausibleMin = 0.0
	DefaultPlausibleMax = 2000.0

	// Worker limits
	DefaultArchiveWorkers = 4
	MaxArchiveWorkers     = 12

	// Store
	DefaultStoreTimeout = 30 * time.Second
)
