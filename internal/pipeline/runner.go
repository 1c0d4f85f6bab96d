package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/w-flo/eu-emission-factors/internal/infrastructure"
)

// Step is a single step of a run
type Step interface {
	// ID returns the unique identifier for this step
	ID() string

	// Execute runs the step, reading and updating the run state
	Execute(ctx context.Context, state *State) error
}

// StepStatus represents the outcome of a step
type StepStatus string

const (
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepResult records how a step ended
type StepResult struct {
	ID       string
	Status   StepStatus
	Duration time.Duration
	Err      error
}

// stepFunc adapts a function to Step
type stepFunc struct {
	id string
	fn func(ctx context.Context, state *State) error
}

func (s stepFunc) ID() string { return s.id }

func (s stepFunc) Execute(ctx context.Context, state *State) error { return s.fn(ctx, state) }

// NewStep creates a step from a function
func NewStep(id string, fn func(ctx context.Context, state *State) error) Step {
	return stepFunc{id: id, fn: fn}
}

// Runner executes steps sequentially with tracing, metrics and logging
type Runner struct {
	tracer  trace.Tracer
	metrics *infrastructure.RunMetrics
	logger  *slog.Logger
}

// NewRunner creates a runner. A nil tracer disables spans and nil metrics disable recording.
func NewRunner(tracer trace.Tracer, metrics *infrastructure.RunMetrics, logger *slog.Logger) *Runner {
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer("")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{tracer: tracer, metrics: metrics, logger: logger}
}

// Run executes steps in order under one parent span named after the run. The first
// failing step stops the run; the remaining steps are recorded as skipped.
func (r *Runner) Run(ctx context.Context, name string, state *State, steps []Step) error {
	ctx = infrastructure.WithRunID(ctx, state.RunID)
	ctx, span := r.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", state.RunID),
			attribute.Int("run.year", state.Year),
		),
	)
	defer span.End()

	r.logger.InfoContext(ctx, "Run started", slog.String("run", name), slog.Int("year", state.Year))
	started := time.Now()

	for i, step := range steps {
		if err := r.executeStep(ctx, state, step); err != nil {
			for _, skipped := range steps[i+1:] {
				state.Steps = append(state.Steps, StepResult{ID: skipped.ID(), Status: StepStatusSkipped})
			}
			infrastructure.RecordSpanError(ctx, err)
			infrastructure.WithError(r.logger, err).ErrorContext(ctx, "Run failed",
				slog.String("run", name),
				slog.String("step", step.ID()))
			return err
		}
	}

	r.logger.InfoContext(ctx, "Run completed",
		slog.String("run", name),
		slog.Duration("duration", time.Since(started)))
	return nil
}

func (r *Runner) executeStep(ctx context.Context, state *State, step Step) error {
	if err := ctx.Err(); err != nil {
		state.Steps = append(state.Steps, StepResult{ID: step.ID(), Status: StepStatusFailed, Err: err})
		return fmt.Errorf("step %s: %w", step.ID(), err)
	}

	ctx, span := r.tracer.Start(ctx, "step."+step.ID())
	defer span.End()

	r.logger.DebugContext(ctx, "Step started", slog.String("step", step.ID()))
	started := time.Now()
	err := step.Execute(ctx, state)
	duration := time.Since(started)

	r.metrics.RecordStage(ctx, step.ID(), duration, err)

	result := StepResult{ID: step.ID(), Status: StepStatusCompleted, Duration: duration, Err: err}
	if err != nil {
		result.Status = StepStatusFailed
		infrastructure.RecordSpanError(ctx, err)
	}
	state.Steps = append(state.Steps, result)

	if err != nil {
		return err
	}

	r.logger.DebugContext(ctx, "Step completed",
		slog.String("step", step.ID()),
		slog.Duration("duration", duration))
	return nil
}
