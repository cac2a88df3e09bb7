package adbehavior

import (
	"math"

	"github.com/publintel/mfascan/internal/model"
)

// Layout risk contribution caps. The sum of all caps is 1.0.
const (
	layoutAboveFoldCap = 0.30
	layoutStackedCap   = 0.30
	layoutHiddenCap    = 0.25
	layoutOversizedCap = 0.15

	layoutAboveFoldWeight = 0.10
	layoutStackedWeight   = 0.15
	layoutHiddenWeight    = 0.10
	layoutOversizedWeight = 0.05

	// layoutAboveFoldAllowance is the number of above-fold ads that
	// carry no layout penalty.
	layoutAboveFoldAllowance = 2
)

// LayoutRisk summarizes placement abuse: too many ads above the fold,
// stacked slots, hidden slots, and oversized units. It is reported,
// not weighted into the overall score, because each signal already
// feeds a scored factor.
type LayoutRisk struct {
	AboveFoldAds int `json:"above_fold_ads"`
	StackedPairs int `json:"stacked_pairs"`
	HiddenAds    int `json:"hidden_ads"`
	OversizedAds int `json:"oversized_ads"`

	// Score is the combined layout risk in [0,1].
	Score float64 `json:"score"`

	Report *model.AnalyzerReport `json:"-"`
}

// computeLayoutRisk derives the layout summary from the density and
// visibility results. Either input may be nil when its component
// failed.
func computeLayoutRisk(density *DensityResult, visibility *VisibilityResult) *LayoutRisk {
	out := &LayoutRisk{}

	if density != nil {
		out.StackedPairs = density.StackedPairs
		out.OversizedAds = density.LargeCount
	}
	if visibility != nil {
		out.AboveFoldAds = visibility.AboveFoldCount
		out.HiddenAds = visibility.HiddenCount
	}

	score := 0.0
	if excess := out.AboveFoldAds - layoutAboveFoldAllowance; excess > 0 {
		score += math.Min(layoutAboveFoldCap, float64(excess)*layoutAboveFoldWeight)
	}
	score += math.Min(layoutStackedCap, float64(out.StackedPairs)*layoutStackedWeight)
	score += math.Min(layoutHiddenCap, float64(out.HiddenAds)*layoutHiddenWeight)
	score += math.Min(layoutOversizedCap, float64(out.OversizedAds)*layoutOversizedWeight)
	out.Score = model.Round3(model.Clamp01(score))

	out.Report = out.report()
	return out
}

func (out *LayoutRisk) report() *model.AnalyzerReport {
	r := model.NewAnalyzerReport("layout")
	r.Metrics["above_fold_ads"] = out.AboveFoldAds
	r.Metrics["stacked_pairs"] = out.StackedPairs
	r.Metrics["hidden_ads"] = out.HiddenAds
	r.Metrics["oversized_ads"] = out.OversizedAds
	r.Metrics["layout_risk"] = out.Score
	return r
}
