package adbehavior

import (
	"fmt"

	"github.com/publintel/mfascan/internal/config"
	"github.com/publintel/mfascan/internal/model"
)

// Hidden-ad reason codes.
const (
	// HiddenReasonCSS marks display:none / visibility:hidden ads.
	HiddenReasonCSS = "css_hidden"
	// HiddenReasonDeepNesting marks ads nested more than three iframes
	// deep.
	HiddenReasonDeepNesting = "deep_nesting"
	// HiddenReasonBelowFold marks below-fold ads with almost no
	// viewport overlap.
	HiddenReasonBelowFold = "below_fold"
)

// aboveFoldTop is the top coordinate at or above which an ad counts as
// above the fold for viewability reporting.
const aboveFoldTop = 600

// hiddenBelowFoldRatio is the intersection ratio below which a
// below-fold ad counts as hidden.
const hiddenBelowFoldRatio = 0.3

// maxIframeDepth is the nesting depth above which an ad iframe is
// treated as deliberately obscured.
const maxIframeDepth = 3

// compliantViewablePct is the MRC-style viewable percentage at or
// above which the page is compliant.
const compliantViewablePct = 50.0

// AdVisibility is the per-ad viewability verdict.
type AdVisibility struct {
	ID                string  `json:"id"`
	IntersectionRatio float64 `json:"intersection_ratio"`
	Viewable          bool    `json:"viewable"`
	AboveFold         bool    `json:"above_fold"`

	// Category is viewable, partially_viewable, or not_viewable.
	Category string `json:"category"`

	// HiddenReasons lists the hidden-ad reason codes that apply.
	HiddenReasons []string `json:"hidden_reasons,omitempty"`
}

// VisibilityResult holds the page-level viewability summary.
type VisibilityResult struct {
	Ads []AdVisibility `json:"ads,omitempty"`

	ViewableCount  int `json:"viewable_count"`
	PartialCount   int `json:"partial_count"`
	NotViewable    int `json:"not_viewable_count"`
	HiddenCount    int `json:"hidden_count"`
	AboveFoldCount int `json:"above_fold_count"`

	// ViewablePercentage is viewable ads over total ads, in percent.
	ViewablePercentage float64 `json:"viewable_percentage"`

	// Compliant is true when ViewablePercentage meets the MRC-style
	// 50% bar.
	Compliant bool `json:"compliant"`

	Report *model.AnalyzerReport `json:"-"`
}

// VisibilityChecker classifies each ad's viewport overlap and hunts
// for deliberately hidden ads.
type VisibilityChecker struct {
	cfg config.Config
}

// NewVisibilityChecker creates a VisibilityChecker.
func NewVisibilityChecker(cfg config.Config) *VisibilityChecker {
	return &VisibilityChecker{cfg: cfg}
}

// Analyze computes per-ad intersection ratios against the viewport
// rectangle and summarizes compliance.
func (v *VisibilityChecker) Analyze(obs *model.CrawlObservation) *VisibilityResult {
	report := model.NewAnalyzerReport("visibility")
	out := &VisibilityResult{Report: report}

	if len(obs.AdElements) == 0 {
		report.Summary["status"] = "no_ads_detected"
		out.Compliant = true
		return out
	}

	width, height := effectiveViewport(obs.Viewport)
	viewportBox := model.BoundingBox{Right: float64(width), Bottom: float64(height)}

	for _, ad := range obs.AdElements {
		av := v.checkAd(ad, viewportBox)
		out.Ads = append(out.Ads, av)

		switch av.Category {
		case "viewable":
			out.ViewableCount++
		case "partially_viewable":
			out.PartialCount++
		default:
			out.NotViewable++
		}
		if av.AboveFold {
			out.AboveFoldCount++
		}
		if len(av.HiddenReasons) > 0 {
			out.HiddenCount++
		}
	}

	out.ViewablePercentage = float64(out.ViewableCount) * 100 / float64(len(obs.AdElements))
	out.Compliant = out.ViewablePercentage >= compliantViewablePct

	v.fillReport(out)
	return out
}

// checkAd computes the viewability verdict for one ad.
func (v *VisibilityChecker) checkAd(ad model.AdElement, viewport model.BoundingBox) AdVisibility {
	av := AdVisibility{
		ID:        ad.ID,
		AboveFold: ad.BoundingBox.Top <= aboveFoldTop,
	}

	// Intersection ratio: overlap area over the ad's own area. A
	// zero-area ad can never be viewable.
	adArea := ad.BoundingBox.Area()
	if adArea > 0 {
		if overlap, ok := ad.BoundingBox.Intersect(viewport); ok {
			av.IntersectionRatio = overlap.Area() / adArea
		}
	}

	// Negative z-index renders the ad behind the page content, so even
	// a full viewport overlap is not viewable.
	av.Viewable = av.IntersectionRatio >= v.cfg.MinVisibilityRatio && ad.ZIndex >= 0

	switch {
	case av.Viewable:
		av.Category = "viewable"
	case av.IntersectionRatio > 0:
		av.Category = "partially_viewable"
	default:
		av.Category = "not_viewable"
	}

	if ad.DisplayNone || ad.VisibilityHidden {
		av.HiddenReasons = append(av.HiddenReasons, HiddenReasonCSS)
	}
	if ad.IframeDepth > maxIframeDepth {
		av.HiddenReasons = append(av.HiddenReasons, HiddenReasonDeepNesting)
	}
	if !av.AboveFold && av.IntersectionRatio < hiddenBelowFoldRatio {
		av.HiddenReasons = append(av.HiddenReasons, HiddenReasonBelowFold)
	}

	return av
}

// fillReport populates the visibility report.
func (v *VisibilityChecker) fillReport(out *VisibilityResult) {
	r := out.Report
	r.Metrics["viewable_count"] = out.ViewableCount
	r.Metrics["partially_viewable_count"] = out.PartialCount
	r.Metrics["not_viewable_count"] = out.NotViewable
	r.Metrics["hidden_count"] = out.HiddenCount
	r.Metrics["above_fold_count"] = out.AboveFoldCount
	r.Metrics["viewable_percentage"] = model.Round3(out.ViewablePercentage)
	r.Summary["compliant"] = out.Compliant

	if !out.Compliant {
		r.AddProblem(model.SeverityHigh,
			fmt.Sprintf("only %.0f%% of ads are viewable", out.ViewablePercentage),
			"Move ad slots into the initial viewport and remove placements users never reach.")
	}
	if out.HiddenCount > 0 {
		r.AddProblem(model.SeverityCritical,
			fmt.Sprintf("%d hidden ad placements detected", out.HiddenCount),
			"Remove hidden ad slots; invisible placements bill fraudulent impressions.")
	}
}
