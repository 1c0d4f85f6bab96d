package pipeline

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/w-flo/eu-emission-factors/internal/config"
	"github.com/w-flo/eu-emission-factors/internal/dataprocessing"
	"github.com/w-flo/eu-emission-factors/internal/emissions"
	"github.com/w-flo/eu-emission-factors/internal/exporter"
	"github.com/w-flo/eu-emission-factors/internal/infrastructure"
	"github.com/w-flo/eu-emission-factors/internal/matching"
	"github.com/w-flo/eu-emission-factors/internal/stats"
	"github.com/w-flo/eu-emission-factors/internal/store/postgres"
	"github.com/w-flo/eu-emission-factors/internal/validation"
	"github.com/w-flo/eu-emission-factors/pkg/contracts/domain"
)

// ResultStore persists the results of a run
type ResultStore interface {
	SaveRun(ctx context.Context, run postgres.Run, matches []*matching.Match, stats []domain.FuelStat) error
}

// Processor computes the emission factors of a year from the preprocessed files
type Processor struct {
	cfg     *config.Config
	paths   *config.Paths
	ack     emissions.Acknowledger
	store   ResultStore
	runner  *Runner
	metrics *infrastructure.RunMetrics
	files   *validation.FileValidator
	logger  *slog.Logger
}

// NewProcessor creates a processor. ack decides about stale degree day data; store
// may be nil.
func NewProcessor(opts Options, ack emissions.Acknowledger, store ResultStore) (*Processor, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	logger := infrastructure.WithComponent(opts.logger(), "processor")
	return &Processor{
		cfg:     opts.Config,
		paths:   opts.Config.Paths(),
		ack:     ack,
		store:   store,
		runner:  NewRunner(opts.Tracer, opts.Metrics, logger),
		metrics: opts.Metrics,
		files:   validation.NewFileValidator(logger),
		logger:  logger,
	}, nil
}

func (p *Processor) plausibleRange() matching.PlausibleRange {
	return matching.PlausibleRange{Min: p.cfg.Processing.PlausibleMin, Max: p.cfg.Processing.PlausibleMax}
}

// Run matches, calculates and exports. The returned state is populated up to the
// failing step when an error is returned.
func (p *Processor) Run(ctx context.Context) (*State, error) {
	state := NewState(infrastructure.GetRunID(infrastructure.EnsureRunID(ctx)), p.cfg.Processing.Year)

	steps := []Step{
		NewStep("load_inputs", p.loadInputs),
		NewStep("match_manual", p.matchManual),
		NewStep("match_auto", p.matchAuto),
		NewStep("filter", p.filter),
		NewStep("calculate", p.calculate),
		NewStep("aggregate", p.aggregate),
		NewStep("export", p.export),
	}
	if p.store != nil {
		steps = append(steps, NewStep("store", p.save))
	}

	return state, p.runner.Run(ctx, "process", state, steps)
}

func (p *Processor) loadInputs(ctx context.Context, state *State) error {
	if err := p.files.ValidateFiles(
		p.paths.GenerationFile(),
		p.paths.EmissionsFile(),
		p.paths.ManualMatchesFile(),
		p.paths.DegreeDaysFile(),
	); err != nil {
		return err
	}
	if err := p.paths.EnsureDirectories(); err != nil {
		return err
	}

	var err error
	if state.Generation, err = dataprocessing.ReadGenerationFile(p.paths.GenerationFile()); err != nil {
		return err
	}
	if state.Emission, err = dataprocessing.ReadEmissionFile(p.paths.EmissionsFile()); err != nil {
		return err
	}
	if state.Directives, err = dataprocessing.ReadDirectivesFile(p.paths.ManualMatchesFile()); err != nil {
		return err
	}
	if state.DegreeDays, err = dataprocessing.ReadDegreeDaysFile(p.paths.DegreeDaysFile(), p.logger); err != nil {
		return err
	}
	state.StaleDegreeDays = state.DegreeDays.LatestYear < state.Year

	p.metrics.RecordRecordsRead(ctx, "generation", len(state.Generation))
	p.metrics.RecordRecordsRead(ctx, "emissions", len(state.Emission))
	p.metrics.RecordRecordsRead(ctx, "manual_matches", len(state.Directives))
	p.metrics.RecordRecordsRead(ctx, "degree_days", len(state.DegreeDays.Countries()))
	return nil
}

func (p *Processor) matchManual(ctx context.Context, state *State) error {
	manual, err := matching.NewManualResolver(p.plausibleRange(), p.logger).
		Resolve(state.Directives, state.Generation, state.Emission)
	if err != nil {
		return err
	}
	state.Matches = manual
	state.ManualMatches = len(manual)
	state.manual = make(map[*matching.Match]bool, len(manual))
	for _, m := range manual {
		state.manual[m] = true
	}
	return nil
}

func (p *Processor) matchAuto(ctx context.Context, state *State) error {
	auto, err := matching.NewAutoMatcher(p.plausibleRange(), p.logger).
		Match(state.Matches, state.Generation, state.Emission)
	if err != nil {
		return err
	}
	state.Matches = append(state.Matches, auto...)
	state.AutoMatches = len(auto)

	p.logger.InfoContext(ctx, "Power plants matched",
		slog.Int("manual", state.ManualMatches),
		slog.Int("auto", state.AutoMatches))
	return nil
}

func (p *Processor) filter(ctx context.Context, state *State) error {
	retained, err := matching.Filter(state.Matches, p.logger)
	if err != nil {
		return err
	}
	state.Matches = retained
	return nil
}

func (p *Processor) calculate(ctx context.Context, state *State) error {
	calc, err := emissions.NewCalculator(state.Year, state.DegreeDays, p.ack, p.logger)
	if err != nil {
		return err
	}
	if state.StaleDegreeDays {
		infrastructure.SpanEvent(ctx, "stale_degree_days",
			attribute.Int("latest_year", state.DegreeDays.LatestYear),
			attribute.Int("year", state.Year))
	}
	if err := calc.Calculate(ctx, state.Matches); err != nil {
		return err
	}

	for _, m := range state.Matches {
		if m.IsIgnored() {
			continue
		}
		if _, fallback, err := state.DegreeDays.Current(m.Country, state.Year); err == nil && fallback {
			p.metrics.RecordDegreeDayFallback(ctx, m.Country)
		}
	}

	matching.SortMatches(state.Matches)
	return nil
}

func (p *Processor) aggregate(ctx context.Context, state *State) error {
	state.Stats = stats.Aggregate(state.Generation, state.Matches)
	p.recordMatchMetrics(ctx, state)
	return nil
}

func (p *Processor) recordMatchMetrics(ctx context.Context, state *State) {
	counts := make(map[[2]string]int)
	for _, m := range state.Matches {
		origin := "auto"
		if state.manual[m] {
			origin = "manual"
		}
		status := "active"
		if m.IsIgnored() {
			status = "ignored"
		}
		counts[[2]string{origin, status}]++
	}
	for k, n := range counts {
		p.metrics.RecordMatches(ctx, k[0], k[1], n)
	}
}

func (p *Processor) export(ctx context.Context, state *State) error {
	results := exporter.NewResultExporter(p.logger)
	if err := results.ExportMatches(state.Matches, p.paths.PowerplantsFile(), p.paths.IgnoredPowerplantsFile()); err != nil {
		return err
	}
	if err := results.ExportFuelStats(state.Stats, p.paths.CountriesFile()); err != nil {
		return err
	}

	active := state.ActiveMatches()
	p.metrics.RecordRecordsWritten(ctx, "powerplants", active)
	p.metrics.RecordRecordsWritten(ctx, "ignored_powerplants", len(state.Matches)-active)
	p.metrics.RecordRecordsWritten(ctx, "countries", len(state.Stats))

	if p.cfg.Output.Workbook {
		err := exporter.NewWorkbookExporter(p.logger).
			ExportFile(p.paths.WorkbookFile(), state.Year, state.Matches, state.Stats)
		if err != nil {
			return err
		}
	}

	if p.cfg.Output.PDF {
		summary := exporter.ReportSummary{
			Year:           state.Year,
			RunID:          state.RunID,
			GeneratedAt:    state.StartedAt,
			ActivePlants:   active,
			IgnoredPlants:  len(state.Matches) - active,
			StaleDegreeDay: state.StaleDegreeDays,
		}
		if err := exporter.NewPDFExporter(p.logger).ExportFile(p.paths.ReportFile(), summary, state.Stats); err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) save(ctx context.Context, state *State) error {
	run := postgres.Run{
		ID:              state.RunID,
		Year:            state.Year,
		CreatedAt:       state.StartedAt,
		StaleDegreeDays: state.StaleDegreeDays,
	}
	if err := p.store.SaveRun(ctx, run, state.Matches, state.Stats); err != nil {
		return err
	}
	p.logger.InfoContext(ctx, "Results stored", slog.Int("plants", len(state.Matches)))
	return nil
}
