package pipeline

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/w-flo/eu-emission-factors/internal/config"
	apperrors "github.com/w-flo/eu-emission-factors/internal/errors"
	"github.com/w-flo/eu-emission-factors/internal/infrastructure"
)

// Options carries the collaborators shared by both runs
type Options struct {
	Config  *config.Config
	Tracer  trace.Tracer
	Metrics *infrastructure.RunMetrics
	Logger  *slog.Logger
}

func (o Options) validate() error {
	if o.Config == nil {
		return apperrors.NewConfigError("configuration is required", nil)
	}
	if o.Config.Processing.Year == 0 {
		return apperrors.NewConfigError("reporting year is required", nil)
	}
	return o.Config.Validate()
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}
