package model

import (
	"time"

	"github.com/google/uuid"
)

// ContentFlagStatus is the single dominant content problem of a page,
// chosen by a fixed priority order (first match wins):
// AI-generated, potential duplicate, clickbait, stale, clean.
type ContentFlagStatus string

const (
	// FlagAIGenerated marks content that looks machine-written.
	FlagAIGenerated ContentFlagStatus = "ai_generated"
	// FlagPotentialDuplicate marks templated low-entropy content long
	// enough to be a near-duplicate candidate.
	FlagPotentialDuplicate ContentFlagStatus = "potential_duplicate"
	// FlagClickbait marks content dominated by clickbait patterns.
	FlagClickbait ContentFlagStatus = "clickbait"
	// FlagStale marks content older than the very-stale threshold.
	FlagStale ContentFlagStatus = "stale"
	// FlagClean marks content with no dominant problem.
	FlagClean ContentFlagStatus = "clean"
)

// RiskAssessment is the final output of the scoring engine for one
// observation: the combined content and ad-behavior verdict.
type RiskAssessment struct {
	// AuditID uniquely identifies this assessment for persistence.
	AuditID string `json:"audit_id"`

	// URL is the page the assessment describes.
	URL string `json:"url"`

	// ScannedAt is when the underlying observation was captured.
	ScannedAt time.Time `json:"scanned_at"`

	// OverallRiskScore is the combined MFA risk in [0,1], rounded to
	// three decimal places.
	OverallRiskScore float64 `json:"overall_risk_score"`

	// RiskLevel buckets OverallRiskScore for reporting.
	RiskLevel RiskLevel `json:"risk_level"`

	// Factors maps factor names to their individual risk contributions,
	// each in [0,1] and rounded to three decimal places.
	Factors map[string]float64 `json:"factors"`

	// Recommendations is the priority-ordered, deduplicated remediation
	// list, truncated to five entries.
	Recommendations []string `json:"recommendations,omitempty"`

	// ContentFlagStatus is the dominant content problem.
	ContentFlagStatus ContentFlagStatus `json:"content_flag_status"`

	// Problems merges the findings of every analyzer that contributed
	// to this assessment.
	Problems []Problem `json:"problems,omitempty"`

	// Reports carries the raw per-analyzer reports for the persistence
	// collaborator. Reports are opaque to consumers of the assessment.
	Reports []*AnalyzerReport `json:"reports,omitempty"`
}

// NewRiskAssessment builds an assessment shell for the given page.
func NewRiskAssessment(url string, scannedAt time.Time) *RiskAssessment {
	return &RiskAssessment{
		AuditID:           uuid.NewString(),
		URL:               url,
		ScannedAt:         scannedAt,
		Factors:           make(map[string]float64),
		ContentFlagStatus: FlagClean,
	}
}

// CountBySeverity returns the number of merged problems at the given
// severity.
func (a *RiskAssessment) CountBySeverity(severity Severity) int {
	n := 0
	for _, p := range a.Problems {
		if p.Severity == severity {
			n++
		}
	}
	return n
}
