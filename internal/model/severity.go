package model

// Severity represents how strongly a single problem signals MFA behavior.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed.
type Severity int

const (
	// SeverityLow indicates minor issues with limited impact.
	// Examples: a handful of small ad units, mildly stale content.
	SeverityLow Severity = iota

	// SeverityMedium indicates moderate issues that warrant attention.
	// Examples: more than four large ad units, elevated ad-network diversity.
	SeverityMedium

	// SeverityHigh indicates serious issues strongly correlated with MFA.
	// Examples: ad density above the acceptable threshold, tiny-ad farms,
	// aggressive monetization scripts.
	SeverityHigh

	// SeverityCritical indicates behavior that almost certainly marks an
	// MFA site. Examples: programmatic ad refresh below 30 seconds,
	// ad stacking, density above the warning threshold.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// RiskLevel buckets an overall risk score for reporting.
type RiskLevel string

const (
	// RiskMinimal covers scores below 0.1.
	RiskMinimal RiskLevel = "minimal"
	// RiskLow covers scores in [0.1, 0.3).
	RiskLow RiskLevel = "low"
	// RiskMedium covers scores in [0.3, 0.5).
	RiskMedium RiskLevel = "medium"
	// RiskHigh covers scores in [0.5, 0.7).
	RiskHigh RiskLevel = "high"
	// RiskCritical covers scores of 0.7 and above.
	RiskCritical RiskLevel = "critical"
)

// RiskLevelFor maps an overall risk score in [0,1] to its bucket.
// Thresholds are inclusive lower bounds: >=0.7 critical, >=0.5 high,
// >=0.3 medium, >=0.1 low, else minimal.
func RiskLevelFor(score float64) RiskLevel {
	switch {
	case score >= 0.7:
		return RiskCritical
	case score >= 0.5:
		return RiskHigh
	case score >= 0.3:
		return RiskMedium
	case score >= 0.1:
		return RiskLow
	default:
		return RiskMinimal
	}
}

// Problem is a single finding raised by an analyzer.
type Problem struct {
	// Severity is the impact classification of the finding.
	Severity Severity `json:"severity"`

	// SeverityText is the string form of Severity, kept alongside the
	// numeric value so serialized reports stay readable without the
	// enum mapping.
	SeverityText string `json:"severity_text"`

	// Message describes what was detected.
	Message string `json:"message"`

	// Recommendation describes how a publisher could remediate it.
	Recommendation string `json:"recommendation,omitempty"`
}

// NewProblem builds a Problem with SeverityText populated.
func NewProblem(severity Severity, message, recommendation string) Problem {
	return Problem{
		Severity:       severity,
		SeverityText:   severity.String(),
		Message:        message,
		Recommendation: recommendation,
	}
}
