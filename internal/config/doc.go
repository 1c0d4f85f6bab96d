// Package config provides configuration loading and the on-disk file layout for
// emission factor runs.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML file (config.yaml or configs/config.yaml)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern EMFACTORS_<SECTION>_<KEY>:
//
//	EMFACTORS_PROCESSING_YEAR=2023
//	EMFACTORS_PROCESSING_DATA_DIR=/srv/emission-factors/data
//	EMFACTORS_PROCESSING_ACCEPT_STALE_DEGREE_DAYS=true
//	EMFACTORS_LOGGING_LEVEL=debug
//	EMFACTORS_STORE_ENABLED=true
//	EMFACTORS_STORE_DSN=postgres://...
//
// # File Layout
//
// Paths resolves every input and output file of a reporting year:
//
//	paths := cfg.Paths()
//	archives, err := paths.GenerationArchives()
//	if err != nil {
//	    return err
//	}
//
// Validation uses go-playground/validator struct tags; failures are returned as
// CONFIG application errors with the offending keys as context.
package config
