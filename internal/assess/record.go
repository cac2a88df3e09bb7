package assess

import (
	"strings"
	"time"

	"github.com/publintel/mfascan/internal/model"
)

// Record is the flat persistence shape of one assessment: one row, no
// nesting, ready for a relational store or a CSV export.
type Record struct {
	AuditID          string    `json:"audit_id"`
	URL              string    `json:"url"`
	ScannedAt        time.Time `json:"scanned_at"`
	OverallRiskScore float64   `json:"overall_risk_score"`
	RiskLevel        string    `json:"risk_level"`

	PatternRisk    float64 `json:"pattern_risk"`
	RefreshRisk    float64 `json:"refresh_risk"`
	VisibilityRisk float64 `json:"visibility_risk"`
	DensityRisk    float64 `json:"density_risk"`
	VideoRisk      float64 `json:"video_risk"`
	ContentRisk    float64 `json:"content_risk"`

	ContentFlag      string `json:"content_flag"`
	ProblemCount     int    `json:"problem_count"`
	CriticalProblems int    `json:"critical_problems"`
	HighProblems     int    `json:"high_problems"`

	// Recommendations is the newline-joined remediation list.
	Recommendations string `json:"recommendations"`
}

// FlattenAssessment adapts an assessment into its Record. Missing
// factors flatten to zero so partial assessments stay storable.
func FlattenAssessment(a *model.RiskAssessment) Record {
	return Record{
		AuditID:          a.AuditID,
		URL:              a.URL,
		ScannedAt:        a.ScannedAt,
		OverallRiskScore: a.OverallRiskScore,
		RiskLevel:        string(a.RiskLevel),
		PatternRisk:      a.Factors["pattern_risk"],
		RefreshRisk:      a.Factors["refresh_risk"],
		VisibilityRisk:   a.Factors["visibility_risk"],
		DensityRisk:      a.Factors["density_risk"],
		VideoRisk:        a.Factors["video_risk"],
		ContentRisk:      a.Factors["content_risk"],
		ContentFlag:      string(a.ContentFlagStatus),
		ProblemCount:     len(a.Problems),
		CriticalProblems: a.CountBySeverity(model.SeverityCritical),
		HighProblems:     a.CountBySeverity(model.SeverityHigh),
		Recommendations:  strings.Join(a.Recommendations, "\n"),
	}
}
