package adbehavior

import (
	"context"
	"fmt"
	"strings"

	"github.com/publintel/mfascan/internal/config"
	"github.com/publintel/mfascan/internal/model"
)

// factorWeight is the contribution cap of each of the five risk
// factors. Weights sum to 1.0.
const factorWeight = 0.20

// Refresh-risk escalation values.
const (
	refreshRiskCritical = 1.0
	refreshRiskWarning  = 0.6
	refreshRiskSlow     = 0.3
)

// densityRiskByLevel maps the benchmark level to factor risk.
var densityRiskByLevel = map[DensityLevel]float64{
	DensityExcellent:  0.05,
	DensityGood:       0.15,
	DensityAcceptable: 0.4,
	DensityWarning:    0.7,
	DensityCritical:   1.0,
	DensityNoAds:      0,
}

// Assessment is the merged ad-behavior verdict of one page.
type Assessment struct {
	// OverallRiskScore is the weighted factor sum in [0,1].
	OverallRiskScore float64 `json:"overall_risk_score"`

	// RiskLevel buckets OverallRiskScore.
	RiskLevel model.RiskLevel `json:"risk_level"`

	// Factors holds the per-factor risk values in [0,1], keyed by
	// factor name.
	Factors map[string]float64 `json:"factors"`

	// Recommendations is the priority-ordered remediation list,
	// deduplicated and truncated to five entries.
	Recommendations []string `json:"recommendations,omitempty"`

	// Correlations maps ad element ids to request URLs that appear to
	// serve them. Reporting detail only; never scored.
	Correlations map[string][]string `json:"correlations,omitempty"`

	// Density through Commercial are the component results.
	Density    *DensityResult         `json:"density"`
	Visibility *VisibilityResult      `json:"visibility"`
	Refresh    *RefreshResult         `json:"refresh"`
	Scroll     *ScrollInjectionResult `json:"scroll_injection"`
	Video      *VideoResult           `json:"video"`
	Network    *NetworkPatternResult  `json:"network_pattern"`
	Commercial *CommercialResult      `json:"commercial"`

	// Layout is the placement-abuse summary derived from the density
	// and visibility results.
	Layout *LayoutRisk `json:"layout"`

	// Reports collects every component report in layout order.
	Reports []*model.AnalyzerReport `json:"-"`
}

// Aggregator runs the seven ad-behavior analyzers and merges their
// findings into one weighted risk score.
//
// Design decision: Each component call is wrapped in its own panic
// recovery that substitutes an error report and a zero result. One
// pathological observation field must never take down the sibling
// analyzers or leave the page unscored.
type Aggregator struct {
	density    *DensityCalculator
	visibility *VisibilityChecker
	refresh    *RefreshDetector
	scroll     *ScrollInjectionDetector
	video      *VideoAnalyzer
	network    *NetworkPatternDetector
	commercial *CommercialIntentDetector
}

// NewAggregator creates an Aggregator from validated configuration.
func NewAggregator(cfg config.Config) *Aggregator {
	return &Aggregator{
		density:    NewDensityCalculator(cfg),
		visibility: NewVisibilityChecker(cfg),
		refresh:    NewRefreshDetector(cfg),
		scroll:     NewScrollInjectionDetector(cfg),
		video:      NewVideoAnalyzer(cfg),
		network:    NewNetworkPatternDetector(cfg),
		commercial: NewCommercialIntentDetector(cfg),
	}
}

// Analyze runs all components over one observation.
func (a *Aggregator) Analyze(ctx context.Context, obs *model.CrawlObservation) (*Assessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &Assessment{Factors: make(map[string]float64)}

	runComponent("ad_density", out, func() *model.AnalyzerReport {
		out.Density = a.density.Analyze(obs)
		return out.Density.Report
	})
	runComponent("visibility", out, func() *model.AnalyzerReport {
		out.Visibility = a.visibility.Analyze(obs)
		return out.Visibility.Report
	})
	runComponent("auto_refresh", out, func() *model.AnalyzerReport {
		out.Refresh = a.refresh.Analyze(obs)
		return out.Refresh.Report
	})
	runComponent("scroll_injection", out, func() *model.AnalyzerReport {
		out.Scroll = a.scroll.Analyze(obs)
		return out.Scroll.Report
	})
	runComponent("video", out, func() *model.AnalyzerReport {
		out.Video = a.video.Analyze(obs)
		return out.Video.Report
	})
	runComponent("network_pattern", out, func() *model.AnalyzerReport {
		out.Network = a.network.Analyze(obs)
		return out.Network.Report
	})
	runComponent("commercial_intent", out, func() *model.AnalyzerReport {
		out.Commercial = a.commercial.Analyze(obs)
		return out.Commercial.Report
	})

	out.Layout = computeLayoutRisk(out.Density, out.Visibility)
	out.Reports = append(out.Reports, out.Layout.Report)

	out.Correlations = correlate(obs)
	a.scoreFactors(out)
	out.Recommendations = a.recommendations(out)

	return out, nil
}

// runComponent executes one analyzer with panic recovery, appending
// either its real report or a substitute error report.
func runComponent(name string, out *Assessment, fn func() *model.AnalyzerReport) {
	defer func() {
		if r := recover(); r != nil {
			report := model.NewAnalyzerReport(name)
			report.SetError(fmt.Errorf("%s analysis panicked: %v", name, r))
			out.Reports = append(out.Reports, report)
		}
	}()
	out.Reports = append(out.Reports, fn())
}

// scoreFactors computes the five weighted factors and the overall
// score. Each factor is in [0,1], so every contribution is capped at
// its 0.20 weight.
func (a *Aggregator) scoreFactors(out *Assessment) {
	out.Factors["pattern_risk"] = patternRisk(out.Scroll, out.Network)
	out.Factors["refresh_risk"] = refreshRisk(out.Refresh)
	out.Factors["visibility_risk"] = visibilityRisk(out.Visibility)
	out.Factors["density_risk"] = densityRisk(out.Density)
	out.Factors["video_risk"] = videoRisk(out.Video)

	overall := 0.0
	for _, risk := range out.Factors {
		overall += model.Clamp01(risk) * factorWeight
	}
	out.OverallRiskScore = model.Round3(model.Clamp01(overall))
	out.RiskLevel = model.RiskLevelFor(out.OverallRiskScore)
}

// patternRisk is the worse of the scroll-injection and network risks.
func patternRisk(scroll *ScrollInjectionResult, network *NetworkPatternResult) float64 {
	risk := 0.0
	if scroll != nil && scroll.RiskScore > risk {
		risk = scroll.RiskScore
	}
	if network != nil && network.RiskScore > risk {
		risk = network.RiskScore
	}
	return risk
}

// refreshRisk escalates to 1.0 on any critical pattern and 0.6 on
// warning-only; slower patterns carry a reduced base risk.
func refreshRisk(refresh *RefreshResult) float64 {
	if refresh == nil {
		return 0
	}
	switch {
	case refresh.CriticalCount > 0:
		return refreshRiskCritical
	case refresh.WarningCount > 0:
		return refreshRiskWarning
	case len(refresh.Patterns) > 0:
		return refreshRiskSlow
	default:
		return 0
	}
}

// visibilityRisk grows as the viewable share shrinks, with a floor
// when deliberately hidden ads were found.
func visibilityRisk(vis *VisibilityResult) float64 {
	if vis == nil || len(vis.Ads) == 0 {
		return 0
	}
	risk := 1 - vis.ViewablePercentage/100
	if vis.HiddenCount > 0 && risk < 0.7 {
		risk = 0.7
	}
	return model.Clamp01(risk)
}

// densityRisk maps the benchmark level, escalating to 1.0 when ad
// stacking was reported.
func densityRisk(density *DensityResult) float64 {
	if density == nil {
		return 0
	}
	for _, p := range density.Report.Problems {
		if strings.Contains(p.Message, "ad stacking") {
			return 1.0
		}
	}
	return densityRiskByLevel[density.Level]
}

// videoRisk passes the component risk through.
func videoRisk(video *VideoResult) float64 {
	if video == nil {
		return 0
	}
	return video.RiskScore
}

// correlate maps ad element identifiers to request URLs that appear to
// serve them. Substring correlation is deliberately loose; the map is
// reporting detail, never a scoring input.
func correlate(obs *model.CrawlObservation) map[string][]string {
	if len(obs.AdElements) == 0 || len(obs.NetworkRequests) == 0 {
		return nil
	}

	out := make(map[string][]string)
	for _, ad := range obs.AdElements {
		key := ad.ID
		if key == "" {
			key = ad.ClassName
		}
		if key == "" {
			continue
		}
		for _, req := range obs.NetworkRequests {
			lower := strings.ToLower(req.URL)
			if (len(key) > 3 && strings.Contains(lower, strings.ToLower(key))) ||
				strings.Contains(lower, "/ad") || strings.Contains(lower, "slot") {
				out[key] = append(out[key], req.URL)
			}
		}
	}
	return out
}

// recommendations assembles the priority-ordered remediation list,
// deduplicated by construction and truncated to five entries.
func (a *Aggregator) recommendations(out *Assessment) []string {
	var recs []string
	add := func(r string) {
		for _, existing := range recs {
			if existing == r {
				return
			}
		}
		recs = append(recs, r)
	}

	if out.Refresh != nil && out.Refresh.CriticalCount > 0 {
		add("Disable ad auto-refresh faster than 30 seconds.")
	}
	if out.Density != nil {
		if out.Density.StackedPairs > 0 || out.Density.Level == DensityCritical {
			add("Remove stacked and excess ad units; coverage is far past the industry ceiling.")
		}
	}
	if out.Visibility != nil && len(out.Visibility.Ads) > 0 && !out.Visibility.Compliant {
		add("Raise viewable ad share above 50% by moving slots into the initial viewport.")
	}
	if out.Density != nil && out.Density.HasAds && out.Density.Level == DensityWarning {
		add("Reduce ad density toward the 30% industry ceiling.")
	}
	if out.Density != nil && out.Density.MfaIndicator {
		add("Consolidate tiny ad slots; slot farming is a hallmark of MFA layouts.")
	}
	if out.Video != nil {
		if out.Video.StuffingDetected {
			add("Remove surplus video players.")
		}
		if out.Video.MutedAutoplayCount > 0 {
			add("Disable muted autoplay video.")
		}
	}

	if len(recs) > 5 {
		recs = recs[:5]
	}
	return recs
}
