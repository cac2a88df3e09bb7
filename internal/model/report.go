package model

import "math"

// AnalyzerReport is the output of one analyzer run. Reports are pure
// functions of the observation and configuration: identical inputs
// produce byte-identical reports.
//
// Design decision: We use loosely-typed maps for metrics and summary
// rather than one struct per analyzer because:
//  1. The persistence collaborator treats reports as opaque JSON
//  2. Analyzers evolve their metric sets independently
//  3. A shared shape lets the aggregator and report writers handle
//     every analyzer uniformly
type AnalyzerReport struct {
	// Analyzer is the name of the analyzer that produced this report.
	Analyzer string `json:"analyzer"`

	// Metrics holds numeric, string, and boolean measurements.
	Metrics map[string]any `json:"metrics"`

	// Problems are the findings raised by the analyzer.
	Problems []Problem `json:"problems,omitempty"`

	// Summary holds derived headline values for quick consumption.
	Summary map[string]any `json:"summary,omitempty"`
}

// NewAnalyzerReport builds an empty report for the named analyzer.
func NewAnalyzerReport(analyzer string) *AnalyzerReport {
	return &AnalyzerReport{
		Analyzer: analyzer,
		Metrics:  make(map[string]any),
		Problems: make([]Problem, 0),
		Summary:  make(map[string]any),
	}
}

// AddProblem appends a finding to the report.
func (r *AnalyzerReport) AddProblem(severity Severity, message, recommendation string) {
	r.Problems = append(r.Problems, NewProblem(severity, message, recommendation))
}

// SetError records a computation error on the report. A report with an
// error still has the safe zero shape for every other field so the
// aggregator can consume it without special cases.
func (r *AnalyzerReport) SetError(err error) {
	if err == nil {
		return
	}
	r.Summary["error"] = err.Error()
}

// HasError reports whether a computation error was recorded.
func (r *AnalyzerReport) HasError() bool {
	_, ok := r.Summary["error"]
	return ok
}

// CountBySeverity returns the number of problems at the given severity.
func (r *AnalyzerReport) CountBySeverity(severity Severity) int {
	n := 0
	for _, p := range r.Problems {
		if p.Severity == severity {
			n++
		}
	}
	return n
}

// Round3 rounds a score to three decimal places. All floating scores
// that leave the engine are rounded this way for stable storage and
// diffing.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Clamp01 clamps a score into [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
