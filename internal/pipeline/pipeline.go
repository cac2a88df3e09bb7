package pipeline

import (
	"context"
	"log/slog"

	"github.com/publintel/mfascan/internal/adbehavior"
	"github.com/publintel/mfascan/internal/content"
	"github.com/publintel/mfascan/internal/model"
)

// Scan is the accumulated state of one observation moving through the
// pipeline. Steps read what earlier steps produced and attach their own
// results.
type Scan struct {
	// Observation is the input page capture. Never nil.
	Observation *model.CrawlObservation

	// Content holds the content-analysis result once that step ran.
	Content *content.Analysis

	// Behavior holds the ad-behavior result once that step ran.
	Behavior *adbehavior.Assessment

	// Assessment is the final merged verdict, set by the assess step.
	Assessment *model.RiskAssessment

	// PerformedSteps lists completed step names in execution order.
	PerformedSteps []string

	// Error and ErrorMessage record the first step failure.
	Error        error
	ErrorMessage string

	// TimedOut is set when the pipeline was cancelled mid-scan.
	TimedOut bool
}

// NewScan wraps an observation for pipeline execution.
func NewScan(obs *model.CrawlObservation) *Scan {
	return &Scan{Observation: obs}
}

// Step is one scoring stage. Steps are executed in sequence, each
// receiving the accumulated scan state.
//
// Design decision: We use an interface rather than function types
// because steps carry configuration state, a Name() method serves
// logging, and the shape stays extensible.
type Step interface {
	// Do executes the step. Critical failures return an error;
	// per-analyzer degradation is recorded inside the result reports
	// and returns nil.
	Do(ctx context.Context, scan *Scan) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger

	// continueOnError determines whether to continue executing steps
	// after one fails.
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to keep executing steps
// after a failure. Failed steps are logged and recorded on the scan,
// and later steps still run.
//
// Design decision: The default is to stop, because the assess step is
// meaningless when a scoring step failed critically. Continuing is for
// diagnostic runs where partial results are still worth writing.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates an empty Pipeline. Steps are added with AddStep.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{steps: make([]Step, 0)}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps in sequence over one scan.
//
// Cancellation is checked between steps rather than inside them;
// steps own their internal cancellation handling.
func (p *Pipeline) Execute(ctx context.Context, scan *Scan) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"url", scan.Observation.URL,
				"reason", ctx.Err(),
			)
			scan.TimedOut = true
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"url", scan.Observation.URL,
		)

		if err := step.Do(ctx, scan); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"url", scan.Observation.URL,
				"error", err,
			)

			scan.Error = err
			scan.ErrorMessage = err.Error()

			if !p.continueOnError {
				return err
			}
		}

		scan.PerformedSteps = append(scan.PerformedSteps, step.Name())
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
