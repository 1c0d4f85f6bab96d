// Package shared holds helpers used by more than one package of the emission factor
// pipeline. It must not contain business logic.
//
// The testutil subpackage provides:
//
//   - BufferedSlogHandler to capture and assert structured log output
//   - record fixtures for generation units and ETS installations
package shared
