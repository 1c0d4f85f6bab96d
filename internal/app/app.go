package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/w-flo/eu-emission-factors/internal/config"
	"github.com/w-flo/eu-emission-factors/internal/emissions"
	"github.com/w-flo/eu-emission-factors/internal/infrastructure"
	"github.com/w-flo/eu-emission-factors/internal/pipeline"
	"github.com/w-flo/eu-emission-factors/internal/store/postgres"
)

// Application holds everything a single command run needs
type Application struct {
	Config  *config.Config
	Logger  *slog.Logger
	OTel    *infrastructure.OTelProviders
	Metrics *infrastructure.RunMetrics
	System  *infrastructure.SystemMetrics
	Results *postgres.ResultRepository

	db        *sql.DB
	startedAt time.Time
}

// NewApplication wires telemetry and the optional result store for cfg.
// cfg must already be validated.
func NewApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	logger.InfoContext(ctx, "Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.Int("year", cfg.Processing.Year),
		slog.String("data_dir", cfg.Processing.DataDir))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:    cfg,
		Logger:    logger,
		OTel:      otelProviders,
		startedAt: time.Now(),
	}

	if err := app.initializeServices(ctx); err != nil {
		if shutdownErr := otelProviders.Shutdown(ctx); shutdownErr != nil {
			err = errors.Join(err, shutdownErr)
		}
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return app, nil
}

func (a *Application) initializeServices(ctx context.Context) error {
	metrics, err := infrastructure.NewRunMetrics(a.OTel.Meter)
	if err != nil {
		return err
	}
	a.Metrics = metrics

	system, err := infrastructure.NewSystemMetrics(a.OTel.Meter)
	if err != nil {
		return err
	}
	a.System = system

	if !a.Config.Store.Enabled {
		return nil
	}

	storeCtx, cancel := context.WithTimeout(ctx, a.Config.Store.Timeout)
	defer cancel()

	db, err := postgres.Open(storeCtx, a.Config.Store.DSN)
	if err != nil {
		return err
	}
	repo := postgres.NewResultRepository(db)
	if err := repo.EnsureSchema(storeCtx); err != nil {
		db.Close()
		return err
	}
	a.db = db
	a.Results = repo
	a.Logger.InfoContext(ctx, "Result store connected")
	return nil
}

func (a *Application) options() pipeline.Options {
	return pipeline.Options{
		Config:  a.Config,
		Tracer:  a.OTel.Tracer,
		Metrics: a.Metrics,
		Logger:  a.Logger,
	}
}

// Acknowledger picks how stale degree day data is handled. An explicit
// acceptance wins, then an interactive prompt on in/out, otherwise the run aborts.
func (a *Application) Acknowledger(in io.Reader, out io.Writer) emissions.Acknowledger {
	switch {
	case a.Config.Processing.AcceptStaleDegreeDays:
		return emissions.AcceptStale{Logger: a.Logger}
	case a.Config.Processing.Interactive:
		return emissions.PromptAcknowledger{In: in, Out: out}
	default:
		return emissions.RejectStale{}
	}
}

// Preprocess converts the raw inputs of the configured year
func (a *Application) Preprocess(ctx context.Context) (*pipeline.State, error) {
	p, err := pipeline.NewPreprocessor(a.options())
	if err != nil {
		return nil, err
	}
	return p.Run(ctx)
}

// Process computes and exports the emission factors of the configured year
func (a *Application) Process(ctx context.Context, ack emissions.Acknowledger) (*pipeline.State, error) {
	var store pipeline.ResultStore
	if a.Results != nil {
		store = a.Results
	}

	p, err := pipeline.NewProcessor(a.options(), ack, store)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx)
}

// MetricsFile is where Stop writes the metrics textfile
func (a *Application) MetricsFile() string {
	if a.Config.Metrics.TextfilePath != "" {
		return a.Config.Metrics.TextfilePath
	}
	return a.Config.Paths().MetricsFile()
}

// Stop records the runtime statistics, flushes telemetry and releases the store.
// All steps run even if one fails.
func (a *Application) Stop(ctx context.Context) error {
	var errs []error

	stats := a.System.Collect(ctx, a.startedAt)
	a.Logger.InfoContext(ctx, "Run statistics", stats.LogAttrs()...)

	if err := a.OTel.WriteMetricsTextfile(a.MetricsFile()); err != nil {
		errs = append(errs, fmt.Errorf("write metrics textfile: %w", err))
	}

	if err := a.OTel.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close result store: %w", err))
		}
		a.db = nil
	}

	return errors.Join(errs...)
}
