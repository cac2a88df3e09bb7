package adbehavior

import (
	"fmt"
	"sort"

	"github.com/publintel/mfascan/internal/config"
	"github.com/publintel/mfascan/internal/model"
)

// DensityLevel benchmarks ad pixel coverage against industry norms.
type DensityLevel string

const (
	// DensityExcellent is coverage at or below 10%.
	DensityExcellent DensityLevel = "excellent"
	// DensityGood is coverage at or below 20%.
	DensityGood DensityLevel = "good"
	// DensityAcceptable is coverage at or below 30%, the IAB "better
	// ads" ceiling.
	DensityAcceptable DensityLevel = "acceptable"
	// DensityWarning is coverage at or below 40%.
	DensityWarning DensityLevel = "warning"
	// DensityCritical is coverage above 40%.
	DensityCritical DensityLevel = "critical"
	// DensityNoAds marks the short-circuit report for pages without
	// any classified ad elements.
	DensityNoAds DensityLevel = "no_ads_detected"
)

// Ad size bucket areas in square pixels.
const (
	largeAdArea  = 300 * 600
	mediumAdArea = 300 * 250
	smallAdArea  = 120 * 600
)

// Oversupply counts that trigger placement problems.
const (
	maxLargeAds = 4
	maxTinyAds  = 20
)

// densityWarningLevel is the coverage above which density problems are
// reported as critical rather than high.
const densityWarningLevel = 0.40

// stackingOverlapRatio is the fraction of the smaller box that must be
// covered by a pairwise intersection before two ads count as stacked.
const stackingOverlapRatio = 0.5

// CumulativeStep is one entry of the top-to-bottom running density,
// used to locate where on the page coverage first exceeds the
// threshold.
type CumulativeStep struct {
	Top           float64 `json:"top"`
	RunningPixels float64 `json:"running_pixels"`
	Density       float64 `json:"density"`
	Exceeded      bool    `json:"exceeded"`
}

// DensityResult holds the ad-coverage measurements of one page.
type DensityResult struct {
	// HasAds distinguishes an analyzed page from the no-ads
	// short-circuit. When false every score field holds its zero
	// value and must not be read as "0% coverage".
	HasAds bool `json:"has_ads"`

	// TotalAdPixels is the summed ad element area.
	TotalAdPixels float64 `json:"total_ad_pixels"`

	// ViewportPixels is the viewport area used for normalization.
	ViewportPixels float64 `json:"viewport_pixels"`

	// Density is TotalAdPixels / ViewportPixels.
	Density float64 `json:"density"`

	// Level and Score are the benchmark classification.
	Level DensityLevel `json:"level"`
	Score int          `json:"score"`

	// LargeCount through TinyCount bucket ads by area.
	LargeCount  int `json:"large_count"`
	MediumCount int `json:"medium_count"`
	SmallCount  int `json:"small_count"`
	TinyCount   int `json:"tiny_count"`

	// AboveFoldDensity and BelowFoldDensity are normalized against
	// each region's own pixel area.
	AboveFoldDensity float64 `json:"above_fold_density"`
	BelowFoldDensity float64 `json:"below_fold_density"`

	// CumulativeSteps is the top-to-bottom running density.
	CumulativeSteps []CumulativeStep `json:"cumulative_steps,omitempty"`

	// StackedPairs counts ad pairs whose boxes overlap by at least
	// half of the smaller box, the ad-stacking fraud signal.
	StackedPairs int `json:"stacked_pairs"`

	// MfaIndicator is set when the tiny-ad oversupply pattern fires.
	MfaIndicator bool `json:"mfa_indicator"`

	Report *model.AnalyzerReport `json:"-"`
}

// DensityCalculator measures how much of the viewport is covered by
// ad elements.
type DensityCalculator struct {
	cfg config.Config
}

// NewDensityCalculator creates a DensityCalculator.
func NewDensityCalculator(cfg config.Config) *DensityCalculator {
	return &DensityCalculator{cfg: cfg}
}

// Analyze computes ad density for an observation. A page without ad
// elements short-circuits into the no_ads_detected report shape so
// "no data" never reads as "compliant".
func (d *DensityCalculator) Analyze(obs *model.CrawlObservation) *DensityResult {
	report := model.NewAnalyzerReport("ad_density")

	if len(obs.AdElements) == 0 {
		report.Summary["density_level"] = string(DensityNoAds)
		return &DensityResult{Level: DensityNoAds, Report: report}
	}

	width, height := effectiveViewport(obs.Viewport)
	out := &DensityResult{
		HasAds:         true,
		ViewportPixels: float64(width * height),
		Report:         report,
	}

	for _, ad := range obs.AdElements {
		area := ad.BoundingBox.Area()
		out.TotalAdPixels += area

		switch {
		case area >= largeAdArea:
			out.LargeCount++
		case area >= mediumAdArea:
			out.MediumCount++
		case area >= smallAdArea:
			out.SmallCount++
		default:
			out.TinyCount++
		}
	}

	out.Density = out.TotalAdPixels / out.ViewportPixels
	out.Level, out.Score = densityBenchmark(out.Density)

	d.splitByFold(obs, width, height, out)
	d.cumulative(obs, out)
	out.StackedPairs = stackedPairs(obs.AdElements)

	d.fillReport(out)
	return out
}

// densityBenchmark maps coverage to its level and score. Bounds are
// inclusive on the upper edge.
func densityBenchmark(density float64) (DensityLevel, int) {
	switch {
	case density <= 0.10:
		return DensityExcellent, 95
	case density <= 0.20:
		return DensityGood, 80
	case density <= 0.30:
		return DensityAcceptable, 65
	case density <= densityWarningLevel:
		return DensityWarning, 40
	default:
		return DensityCritical, 10
	}
}

// splitByFold computes per-region densities, each normalized against
// its own pixel area. An ad belongs to the region holding its vertical
// midpoint.
func (d *DensityCalculator) splitByFold(obs *model.CrawlObservation, width, height int, out *DensityResult) {
	foldLine := float64(config.DefaultFoldLine)
	if foldLine > float64(height) {
		foldLine = float64(height)
	}

	var abovePixels, belowPixels float64
	for _, ad := range obs.AdElements {
		if ad.BoundingBox.VerticalMidpoint() <= foldLine {
			abovePixels += ad.BoundingBox.Area()
		} else {
			belowPixels += ad.BoundingBox.Area()
		}
	}

	aboveArea := float64(width) * foldLine
	if aboveArea > 0 {
		out.AboveFoldDensity = abovePixels / aboveArea
	}
	belowArea := float64(width) * (float64(height) - foldLine)
	if belowArea > 0 {
		out.BelowFoldDensity = belowPixels / belowArea
	}
}

// cumulative fills the top-to-bottom running density, tagging the
// steps past the point where coverage exceeds the threshold.
func (d *DensityCalculator) cumulative(obs *model.CrawlObservation, out *DensityResult) {
	ads := make([]model.AdElement, len(obs.AdElements))
	copy(ads, obs.AdElements)
	sort.SliceStable(ads, func(i, j int) bool {
		return ads[i].BoundingBox.Top < ads[j].BoundingBox.Top
	})

	running := 0.0
	for _, ad := range ads {
		running += ad.BoundingBox.Area()
		density := running / out.ViewportPixels
		out.CumulativeSteps = append(out.CumulativeSteps, CumulativeStep{
			Top:           ad.BoundingBox.Top,
			RunningPixels: running,
			Density:       density,
			Exceeded:      density > d.cfg.AdDensityThreshold,
		})
	}
}

// stackedPairs counts ad pairs whose intersection covers at least half
// of the smaller box. Stacked ads render on top of each other so
// every layer bills an impression while only the top one is seen.
func stackedPairs(ads []model.AdElement) int {
	pairs := 0
	for i := 0; i < len(ads); i++ {
		for j := i + 1; j < len(ads); j++ {
			overlap, ok := ads[i].BoundingBox.Intersect(ads[j].BoundingBox)
			if !ok {
				continue
			}
			smaller := ads[i].BoundingBox.Area()
			if other := ads[j].BoundingBox.Area(); other < smaller {
				smaller = other
			}
			if smaller > 0 && overlap.Area()/smaller >= stackingOverlapRatio {
				pairs++
			}
		}
	}
	return pairs
}

// fillReport populates the density report.
func (d *DensityCalculator) fillReport(out *DensityResult) {
	r := out.Report
	r.Metrics["ad_count"] = out.LargeCount + out.MediumCount + out.SmallCount + out.TinyCount
	r.Metrics["total_ad_pixels"] = out.TotalAdPixels
	r.Metrics["ad_density"] = model.Round3(out.Density)
	r.Metrics["above_fold_density"] = model.Round3(out.AboveFoldDensity)
	r.Metrics["below_fold_density"] = model.Round3(out.BelowFoldDensity)
	r.Metrics["density_score"] = out.Score
	r.Metrics["large_ads"] = out.LargeCount
	r.Metrics["tiny_ads"] = out.TinyCount
	r.Metrics["stacked_pairs"] = out.StackedPairs
	r.Summary["density_level"] = string(out.Level)

	switch {
	case out.Density > densityWarningLevel:
		r.AddProblem(model.SeverityCritical,
			fmt.Sprintf("ad density %.1f%% exceeds the critical limit", out.Density*100),
			"Remove ad units until coverage falls below 30% of the viewport.")
	case out.Density > d.cfg.AdDensityThreshold:
		r.AddProblem(model.SeverityHigh,
			fmt.Sprintf("ad density %.1f%% exceeds the acceptable limit", out.Density*100),
			"Reduce ad coverage toward the 30% industry ceiling.")
	}

	if out.StackedPairs > 0 {
		r.AddProblem(model.SeverityCritical,
			fmt.Sprintf("ad stacking detected: %d overlapping ad pairs", out.StackedPairs),
			"Unstack overlapping ad slots; hidden layers bill unviewable impressions.")
	}
	if out.LargeCount > maxLargeAds {
		r.AddProblem(model.SeverityMedium,
			fmt.Sprintf("%d large ad units on one page", out.LargeCount),
			"Limit large-format placements to a handful per page.")
	}
	if out.TinyCount > maxTinyAds {
		out.MfaIndicator = true
		r.Summary["mfa_indicator"] = true
		r.AddProblem(model.SeverityHigh,
			fmt.Sprintf("%d tiny ad slots is an MFA indicator", out.TinyCount),
			"Consolidate micro ad slots; slot farming is a hallmark of MFA layouts.")
	}
}

// effectiveViewport returns the observation viewport, falling back to
// the standard desktop size when the crawler did not record one.
func effectiveViewport(v model.Viewport) (int, int) {
	if v.IsZero() {
		return config.DefaultViewportWidth, config.DefaultViewportHeight
	}
	return v.Width, v.Height
}
