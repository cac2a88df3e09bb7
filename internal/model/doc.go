// Package model defines the data structures shared across the MFA
// scoring engine: the CrawlObservation input snapshot, per-analyzer
// reports, and the final RiskAssessment output.
//
// All types are JSON-serializable and carry no behavior beyond small
// pure helpers (geometry, rounding, severity ordering). Analyzers in
// other packages consume these types but never mutate an observation.
package model
