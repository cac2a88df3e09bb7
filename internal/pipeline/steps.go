package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/publintel/mfascan/internal/adbehavior"
	"github.com/publintel/mfascan/internal/assess"
	"github.com/publintel/mfascan/internal/config"
	"github.com/publintel/mfascan/internal/content"
)

// ContentStep runs the content-quality analysis over the observation
// text.
type ContentStep struct {
	analyzer *content.Analyzer
	logger   *slog.Logger
}

// ContentStepOption configures a ContentStep.
type ContentStepOption func(*ContentStep)

// WithContentLogger sets a custom logger for the content step.
func WithContentLogger(logger *slog.Logger) ContentStepOption {
	return func(s *ContentStep) {
		s.logger = logger
	}
}

// NewContentStep creates a content analysis step. The reference clock
// anchors freshness scoring for the whole batch.
func NewContentStep(cfg config.Config, now time.Time, opts ...ContentStepOption) *ContentStep {
	s := &ContentStep{
		analyzer: content.NewAnalyzer(cfg, now),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ContentStep) Name() string {
	return "content_analysis"
}

// Do executes the content analysis step.
func (s *ContentStep) Do(ctx context.Context, scan *Scan) error {
	analysis, err := s.analyzer.Analyze(ctx, scan.Observation)
	if err != nil {
		return fmt.Errorf("content analysis: %w", err)
	}

	scan.Content = analysis
	s.logger.Debug("content analysis complete",
		"url", scan.Observation.URL,
		"flag", analysis.FlagStatus,
		"risk", analysis.RiskScore,
	)
	return nil
}

// AdBehaviorStep runs the seven ad-behavior analyzers through the
// aggregator.
type AdBehaviorStep struct {
	aggregator *adbehavior.Aggregator
	logger     *slog.Logger
}

// AdBehaviorStepOption configures an AdBehaviorStep.
type AdBehaviorStepOption func(*AdBehaviorStep)

// WithAdBehaviorLogger sets a custom logger for the ad-behavior step.
func WithAdBehaviorLogger(logger *slog.Logger) AdBehaviorStepOption {
	return func(s *AdBehaviorStep) {
		s.logger = logger
	}
}

// NewAdBehaviorStep creates an ad-behavior analysis step.
func NewAdBehaviorStep(cfg config.Config, opts ...AdBehaviorStepOption) *AdBehaviorStep {
	s := &AdBehaviorStep{
		aggregator: adbehavior.NewAggregator(cfg),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *AdBehaviorStep) Name() string {
	return "ad_behavior"
}

// Do executes the ad-behavior step.
func (s *AdBehaviorStep) Do(ctx context.Context, scan *Scan) error {
	behavior, err := s.aggregator.Analyze(ctx, scan.Observation)
	if err != nil {
		return fmt.Errorf("ad behavior analysis: %w", err)
	}

	scan.Behavior = behavior
	s.logger.Debug("ad behavior analysis complete",
		"url", scan.Observation.URL,
		"risk", behavior.OverallRiskScore,
		"level", behavior.RiskLevel,
	)
	return nil
}

// AssessStep merges the content and ad-behavior results into the final
// assessment. It must run after both scoring steps; a missing component
// contributes zero risk, so diagnostic partial runs still produce an
// assessment.
type AssessStep struct {
	logger *slog.Logger
}

// AssessStepOption configures an AssessStep.
type AssessStepOption func(*AssessStep)

// WithAssessLogger sets a custom logger for the assess step.
func WithAssessLogger(logger *slog.Logger) AssessStepOption {
	return func(s *AssessStep) {
		s.logger = logger
	}
}

// NewAssessStep creates the final merge step.
func NewAssessStep(opts ...AssessStepOption) *AssessStep {
	s := &AssessStep{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *AssessStep) Name() string {
	return "assess"
}

// Do executes the merge step.
func (s *AssessStep) Do(_ context.Context, scan *Scan) error {
	scan.Assessment = assess.Merge(scan.Observation, scan.Content, scan.Behavior)

	s.logger.Info("assessment complete",
		"url", scan.Observation.URL,
		"risk", scan.Assessment.OverallRiskScore,
		"level", scan.Assessment.RiskLevel,
		"flag", scan.Assessment.ContentFlagStatus,
	)
	return nil
}

// NewScoringPipeline assembles the standard three-step pipeline.
func NewScoringPipeline(cfg config.Config, now time.Time, logger *slog.Logger) *Pipeline {
	p := New(WithLogger(logger))
	p.AddSteps(
		NewContentStep(cfg, now, WithContentLogger(logger)),
		NewAdBehaviorStep(cfg, WithAdBehaviorLogger(logger)),
		NewAssessStep(WithAssessLogger(logger)),
	)
	return p
}
