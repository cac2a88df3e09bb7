package assess

import (
	"sort"

	"github.com/publintel/mfascan/internal/adbehavior"
	"github.com/publintel/mfascan/internal/content"
	"github.com/publintel/mfascan/internal/model"
)

// Final score weights. Ad behavior dominates because layout and
// monetization mechanics are harder to fake than prose.
const (
	adBehaviorWeight = 0.55
	contentWeight    = 0.45
)

// maxRecommendations caps the merged remediation list.
const maxRecommendations = 5

// Merge combines one content analysis and one ad-behavior assessment
// into the final RiskAssessment for the observed page.
//
// Design decision: Merge is a pure function rather than a method on a
// stateful merger because it carries no configuration: every threshold
// already lives in the two component results. Either component may be
// nil when its analyzer was skipped; a nil component contributes zero
// risk and no findings.
func Merge(obs *model.CrawlObservation, contentRes *content.Analysis, behavior *adbehavior.Assessment) *model.RiskAssessment {
	out := model.NewRiskAssessment(obs.URL, obs.TimestampUTC)

	contentRisk := 0.0
	if contentRes != nil {
		contentRisk = contentRes.RiskScore
		out.ContentFlagStatus = contentRes.FlagStatus
		out.Factors["content_risk"] = model.Round3(contentRisk)
		if contentRes.Report != nil {
			out.Reports = append(out.Reports, contentRes.Report)
			out.Problems = append(out.Problems, contentRes.Report.Problems...)
		}
	}

	behaviorRisk := 0.0
	if behavior != nil {
		behaviorRisk = behavior.OverallRiskScore
		for name, risk := range behavior.Factors {
			out.Factors[name] = model.Round3(risk)
		}
		out.Reports = append(out.Reports, behavior.Reports...)
		for _, r := range behavior.Reports {
			out.Problems = append(out.Problems, r.Problems...)
		}
	}

	out.OverallRiskScore = model.Round3(model.Clamp01(
		adBehaviorWeight*behaviorRisk + contentWeight*contentRisk))
	out.RiskLevel = model.RiskLevelFor(out.OverallRiskScore)

	sort.SliceStable(out.Problems, func(i, j int) bool {
		return out.Problems[i].Severity > out.Problems[j].Severity
	})

	out.Recommendations = mergeRecommendations(contentRes, behavior)
	return out
}

// mergeRecommendations keeps the ad-behavior priority ordering, then
// fills remaining slots with remediation text from high-severity
// content findings.
func mergeRecommendations(contentRes *content.Analysis, behavior *adbehavior.Assessment) []string {
	var recs []string
	add := func(r string) {
		if r == "" {
			return
		}
		for _, existing := range recs {
			if existing == r {
				return
			}
		}
		recs = append(recs, r)
	}

	if behavior != nil {
		for _, r := range behavior.Recommendations {
			add(r)
		}
	}
	if contentRes != nil && contentRes.Report != nil {
		for _, p := range contentRes.Report.Problems {
			if p.Severity >= model.SeverityHigh {
				add(p.Recommendation)
			}
		}
	}

	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}
