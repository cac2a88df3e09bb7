package assess

import "github.com/publintel/mfascan/internal/model"

// Explanation levels bucket a single factor, not the overall score.
const (
	explainHighCutoff     = 0.7
	explainModerateCutoff = 0.4
)

// Explanation is one human-readable factor interpretation for reports.
type Explanation struct {
	Factor string  `json:"factor"`
	Risk   float64 `json:"risk"`
	Level  string  `json:"level"` // high, moderate, or low
	Text   string  `json:"text"`
}

// factorOrder is the presentation order of explained factors.
var factorOrder = []string{
	"density_risk", "visibility_risk", "refresh_risk",
	"pattern_risk", "video_risk", "content_risk",
}

// factorTexts maps each factor to its per-level interpretation.
var factorTexts = map[string]struct{ high, moderate, low string }{
	"density_risk": {
		high:     "Ad coverage dominates the layout, far past the 30% industry ceiling.",
		moderate: "Ad coverage is elevated and approaching the industry ceiling.",
		low:      "Ad coverage sits within normal editorial bounds.",
	},
	"visibility_risk": {
		high:     "Most ad slots are hidden or unviewable, a hallmark of impression fraud.",
		moderate: "A meaningful share of ad slots renders outside the viewable area.",
		low:      "Ad slots are predominantly viewable.",
	},
	"refresh_risk": {
		high:     "Ad slots refresh on aggressive timers to multiply impressions per visit.",
		moderate: "Some ad slots refresh automatically at a moderate cadence.",
		low:      "No aggressive ad refresh behavior was observed.",
	},
	"pattern_risk": {
		high:     "Traffic and DOM patterns match scripted, revenue-first monetization.",
		moderate: "Some network or injection patterns resemble MFA monetization.",
		low:      "Network and DOM behavior looks organic.",
	},
	"video_risk": {
		high:     "Video players are stuffed or autoplay muted to farm video impressions.",
		moderate: "Video monetization is heavier than the content justifies.",
		low:      "Video usage looks editorial.",
	},
	"content_risk": {
		high:     "The content itself reads as low-value: thin, templated, stale, or machine-written.",
		moderate: "Content quality signals are mixed, with some low-value markers.",
		low:      "Content quality signals look healthy.",
	},
}

// Explain interprets each scored factor of an assessment. Factors the
// assessment does not carry are skipped, so partial assessments still
// explain cleanly.
func Explain(a *model.RiskAssessment) []Explanation {
	var out []Explanation
	for _, name := range factorOrder {
		risk, ok := a.Factors[name]
		if !ok {
			continue
		}
		texts := factorTexts[name]

		e := Explanation{Factor: name, Risk: risk}
		switch {
		case risk >= explainHighCutoff:
			e.Level, e.Text = "high", texts.high
		case risk >= explainModerateCutoff:
			e.Level, e.Text = "moderate", texts.moderate
		default:
			e.Level, e.Text = "low", texts.low
		}
		out = append(out, e)
	}
	return out
}
