package adbehavior

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/publintel/mfascan/internal/config"
	"github.com/publintel/mfascan/internal/model"
)

// adKeywordPattern classifies a DOM selector, id, or class as
// ad-related. Shared by the refresh and scroll-injection detectors.
var adKeywordPattern = regexp.MustCompile(
	`(?i)(^|[^a-z])(ads?|advert(isement)?|banner|sponsor(ed)?|promo|gpt|dfp|adsense|doubleclick|taboola|outbrain|mgid|revcontent)([^a-z]|$)`)

// scrollTriggerWindowMs is how close an ad insertion must be to a
// scroll event to count as scroll-triggered.
const scrollTriggerWindowMs = 2000

// Burst detection: a run of at least burstMinRun consecutive ad
// insertions, each within burstGapMs of the previous one.
const (
	burstMinRun = 3
	burstGapMs  = 500
)

// mfaLikelyScrollRisk is the risk score above which the page is
// flagged as MFA-likely on injection behavior alone.
const mfaLikelyScrollRisk = 0.5

// ScrollInjectionResult holds scroll-triggered ad injection findings.
type ScrollInjectionResult struct {
	// InjectedCount is the number of ad insertions within the scroll
	// trigger window of a scroll event.
	InjectedCount int `json:"injected_count"`

	// InjectionRatio is InjectedCount over the page's ad element
	// count, 0 when the page has no ads.
	InjectionRatio float64 `json:"injection_ratio"`

	// BurstCount is the number of rapid insertion runs.
	BurstCount int `json:"burst_count"`

	// RiskScore is the stepped injection risk in [0,1].
	RiskScore float64 `json:"risk_score"`

	// IsMfaLikely is true when RiskScore exceeds 0.5.
	IsMfaLikely bool `json:"is_mfa_likely"`

	Report *model.AnalyzerReport `json:"-"`
}

// ScrollInjectionDetector finds ads inserted in reaction to scrolling.
// Legitimate lazy loading fills predeclared slots; MFA pages inject
// new slots as the user moves, so every scroll mints impressions.
type ScrollInjectionDetector struct {
	cfg config.Config
}

// NewScrollInjectionDetector creates a ScrollInjectionDetector.
func NewScrollInjectionDetector(cfg config.Config) *ScrollInjectionDetector {
	return &ScrollInjectionDetector{cfg: cfg}
}

// Analyze correlates ad insertions with scroll timing.
func (d *ScrollInjectionDetector) Analyze(obs *model.CrawlObservation) *ScrollInjectionResult {
	report := model.NewAnalyzerReport("scroll_injection")
	out := &ScrollInjectionResult{Report: report}

	insertions := adInsertions(obs.MutationLog)
	if len(insertions) == 0 {
		report.Summary["status"] = "no_ad_mutations"
		return out
	}

	for _, m := range insertions {
		if nearScroll(m.TimestampMs, obs.ScrollEvents) {
			out.InjectedCount++
		}
	}

	if n := len(obs.AdElements); n > 0 {
		out.InjectionRatio = float64(out.InjectedCount) / float64(n)
	}
	out.BurstCount = countBursts(insertions)

	out.RiskScore = d.score(out)
	out.IsMfaLikely = out.RiskScore > mfaLikelyScrollRisk

	d.fillReport(out)
	return out
}

// adInsertions returns the time-sorted ad-related Added mutations.
func adInsertions(mutations []model.DomMutation) []model.DomMutation {
	var out []model.DomMutation
	for _, m := range mutations {
		if m.Type == model.MutationAdded && adKeywordPattern.MatchString(m.TargetSelector) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TimestampMs < out[j].TimestampMs
	})
	return out
}

// nearScroll reports whether t falls within the trigger window of any
// scroll event.
func nearScroll(t int64, scrolls []model.ScrollEvent) bool {
	for _, s := range scrolls {
		delta := t - s.TimestampMs
		if delta < 0 {
			delta = -delta
		}
		if delta <= scrollTriggerWindowMs {
			return true
		}
	}
	return false
}

// countBursts counts runs of rapid consecutive insertions. Once a run
// is counted the scan resumes past it, so one long volley is one
// burst.
func countBursts(insertions []model.DomMutation) int {
	bursts := 0
	for i := 0; i < len(insertions); {
		run := 1
		for i+run < len(insertions) &&
			insertions[i+run].TimestampMs-insertions[i+run-1].TimestampMs < burstGapMs {
			run++
		}
		if run >= burstMinRun {
			bursts++
		}
		i += run
	}
	return bursts
}

// score applies the stepped risk contributions, clamped to 1.
func (d *ScrollInjectionDetector) score(out *ScrollInjectionResult) float64 {
	risk := 0.0

	switch {
	case out.InjectedCount > 10:
		risk += 0.4
	case out.InjectedCount > 5:
		risk += 0.25
	case out.InjectedCount > 2:
		risk += 0.1
	}

	switch {
	case out.InjectionRatio > 0.5:
		risk += 0.3
	case out.InjectionRatio > 0.3:
		risk += 0.2
	case out.InjectionRatio > 0.15:
		risk += 0.1
	}

	switch {
	case out.BurstCount > 2:
		risk += 0.2
	case out.BurstCount > 0:
		risk += 0.1
	}

	return model.Clamp01(risk)
}

// fillReport populates the scroll-injection report.
func (d *ScrollInjectionDetector) fillReport(out *ScrollInjectionResult) {
	r := out.Report
	r.Metrics["injected_count"] = out.InjectedCount
	r.Metrics["injection_ratio"] = model.Round3(out.InjectionRatio)
	r.Metrics["burst_count"] = out.BurstCount
	r.Metrics["risk_score"] = model.Round3(out.RiskScore)
	r.Summary["is_mfa_likely"] = out.IsMfaLikely

	if out.InjectedCount > d.cfg.LazyLoadThreshold {
		r.AddProblem(model.SeverityHigh,
			fmt.Sprintf("%d ads injected on scroll", out.InjectedCount),
			"Predeclare ad slots instead of injecting them as the user scrolls.")
	}
	if out.BurstCount > 0 {
		r.AddProblem(model.SeverityMedium,
			fmt.Sprintf("%d rapid ad insertion bursts", out.BurstCount),
			"Throttle ad insertion; sub-second volleys indicate scripted slot stuffing.")
	}
}
