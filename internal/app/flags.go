package app

import (
	"flag"
	"fmt"
	"io"

	"github.com/w-flo/eu-emission-factors/internal/config"
	apperrors "github.com/w-flo/eu-emission-factors/internal/errors"
)

// CommandLine holds the flags shared by the command line tools
type CommandLine struct {
	Year                  int
	AcceptStaleDegreeDays bool
	ConfigFile            string
}

// ParseCommandLine parses args for the named tool. withStaleFlag adds
// -accept-stale-degree-days. Usage and errors go to output.
func ParseCommandLine(name string, args []string, withStaleFlag bool, output io.Writer) (*CommandLine, error) {
	cl := &CommandLine{}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)
	fs.IntVar(&cl.Year, "year", 0, fmt.Sprintf("reporting year (%d-%d)", config.MinYear, config.MaxYear))
	fs.StringVar(&cl.ConfigFile, "config", "", "path to a YAML configuration file")
	if withStaleFlag {
		fs.BoolVar(&cl.AcceptStaleDegreeDays, "accept-stale-degree-days", false,
			"continue without prompting when degree day data is older than the reporting year")
	}

	if err := fs.Parse(args); err != nil {
		return nil, apperrors.NewValidationError("invalid command line", err)
	}
	if fs.NArg() > 0 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unexpected arguments: %v", fs.Args()), nil)
	}
	if cl.Year == 0 {
		return nil, apperrors.NewValidationError("-year is required", nil)
	}
	return cl, nil
}

// LoadConfig loads the configuration file and lets the flags override it
func (cl *CommandLine) LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(cl.ConfigFile)
	if err != nil {
		return nil, err
	}

	cfg.Processing.Year = cl.Year
	if cl.AcceptStaleDegreeDays {
		cfg.Processing.AcceptStaleDegreeDays = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
