package pipeline

import (
	"context"
	"log/slog"

	"github.com/w-flo/eu-emission-factors/internal/config"
	"github.com/w-flo/eu-emission-factors/internal/dataprocessing"
	"github.com/w-flo/eu-emission-factors/internal/infrastructure"
	"github.com/w-flo/eu-emission-factors/internal/validation"
)

// Preprocessor converts the raw ETS and ENTSO-E inputs of a year to CSV
type Preprocessor struct {
	cfg     *config.Config
	paths   *config.Paths
	runner  *Runner
	metrics *infrastructure.RunMetrics
	files   *validation.FileValidator
	logger  *slog.Logger
}

// NewPreprocessor creates a preprocessor for the year in opts.Config
func NewPreprocessor(opts Options) (*Preprocessor, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	logger := infrastructure.WithComponent(opts.logger(), "preprocess")
	return &Preprocessor{
		cfg:     opts.Config,
		paths:   opts.Config.Paths(),
		runner:  NewRunner(opts.Tracer, opts.Metrics, logger),
		metrics: opts.Metrics,
		files:   validation.NewFileValidator(logger),
		logger:  logger,
	}, nil
}

// Run reads the verified emissions workbook and the twelve generation archives and
// writes the preprocessed CSV files. Generation units outside ETS countries are dropped.
func (p *Preprocessor) Run(ctx context.Context) (*State, error) {
	state := NewState(infrastructure.GetRunID(infrastructure.EnsureRunID(ctx)), p.cfg.Processing.Year)
	var archives []string

	steps := []Step{
		NewStep("check_inputs", func(ctx context.Context, state *State) error {
			workbook := p.paths.VerifiedEmissionsFile()
			if err := p.files.ValidateFile(workbook); err != nil {
				return err
			}
			if err := p.files.ValidateFileType(workbook, ".xlsx"); err != nil {
				return err
			}

			var err error
			archives, err = p.paths.GenerationArchives()
			if err != nil {
				return err
			}
			return p.paths.EnsureDirectories()
		}),
		NewStep("read_ets", func(ctx context.Context, state *State) error {
			res, err := dataprocessing.NewETSReader(p.logger).ReadFile(p.paths.VerifiedEmissionsFile(), state.Year)
			if err != nil {
				return err
			}
			state.Emission = res.Records
			state.Countries = res.Countries
			p.metrics.RecordRecordsRead(ctx, "ets", len(res.Records))
			return nil
		}),
		NewStep("read_generation", func(ctx context.Context, state *State) error {
			reader := dataprocessing.NewGenerationReader(p.cfg.Processing.ArchiveWorkers, p.logger)
			records, err := reader.ReadArchives(ctx, archives, state.Countries)
			if err != nil {
				return err
			}
			state.Generation = records
			p.metrics.RecordRecordsRead(ctx, "entsoe", len(records))
			return nil
		}),
		NewStep("write_preprocessed", func(ctx context.Context, state *State) error {
			if err := dataprocessing.WriteEmissionFile(p.paths.EmissionsFile(), state.Emission); err != nil {
				return err
			}
			p.metrics.RecordRecordsWritten(ctx, "emissions", len(state.Emission))

			if err := dataprocessing.WriteGenerationFile(p.paths.GenerationFile(), state.Generation); err != nil {
				return err
			}
			p.metrics.RecordRecordsWritten(ctx, "generation", len(state.Generation))

			p.logger.InfoContext(ctx, "Preprocessed files written",
				slog.String("emissions", p.paths.EmissionsFile()),
				slog.Int("installations", len(state.Emission)),
				slog.String("generation", p.paths.GenerationFile()),
				slog.Int("units", len(state.Generation)))
			return nil
		}),
	}

	return state, p.runner.Run(ctx, "preprocess", state, steps)
}
