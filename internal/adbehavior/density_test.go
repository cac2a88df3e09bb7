package adbehavior

import (
	"math"
	"strings"
	"testing"

	"github.com/publintel/mfascan/internal/config"
	"github.com/publintel/mfascan/internal/model"
)

// testCfg returns a validated default configuration for analyzer
// construction.
func testCfg(t *testing.T) config.Config {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Inputs = []string{"obs.json"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return *cfg
}

// adAt builds an ad element with the given geometry.
func adAt(id string, top, left, width, height float64) model.AdElement {
	return model.AdElement{
		ID: id,
		BoundingBox: model.BoundingBox{
			Top:    top,
			Left:   left,
			Right:  left + width,
			Bottom: top + height,
		},
	}
}

// TestDensityCleanPage tests the benchmark on a typical compliant
// layout: three 300x250 units on a desktop viewport.
func TestDensityCleanPage(t *testing.T) {
	t.Parallel()

	calc := NewDensityCalculator(testCfg(t))
	obs := &model.CrawlObservation{
		Viewport: model.Viewport{Width: 1920, Height: 1080},
		AdElements: []model.AdElement{
			adAt("ad-1", 100, 0, 300, 250),
			adAt("ad-2", 100, 500, 300, 250),
			adAt("ad-3", 900, 0, 300, 250),
		},
	}

	got := calc.Analyze(obs)
	if got.TotalAdPixels != 225000 {
		t.Errorf("TotalAdPixels = %v, expected 225000", got.TotalAdPixels)
	}
	if math.Abs(got.Density-0.1085) > 0.001 {
		t.Errorf("Density = %v, expected about 0.1085", got.Density)
	}
	if got.Level != DensityGood || got.Score != 80 {
		t.Errorf("benchmark = %s/%d, expected good/80", got.Level, got.Score)
	}
	if got.MediumCount != 3 {
		t.Errorf("MediumCount = %d, expected 3", got.MediumCount)
	}
	if len(got.Report.Problems) != 0 {
		t.Errorf("unexpected problems: %+v", got.Report.Problems)
	}
}

// TestDensityNoAds tests the short-circuit report shape: level
// no_ads_detected with no density metric, distinguishable from a
// measured zero.
func TestDensityNoAds(t *testing.T) {
	t.Parallel()

	calc := NewDensityCalculator(testCfg(t))
	got := calc.Analyze(&model.CrawlObservation{
		Viewport: model.Viewport{Width: 1920, Height: 1080},
	})

	if got.HasAds {
		t.Error("HasAds = true with no ad elements")
	}
	if got.Level != DensityNoAds {
		t.Errorf("Level = %q, expected no_ads_detected", got.Level)
	}
	if _, present := got.Report.Metrics["ad_density"]; present {
		t.Error("ad_density metric must be absent, not zero, on the no-ads report")
	}
	if got.Report.Summary["density_level"] != string(DensityNoAds) {
		t.Errorf("summary = %v, expected no_ads_detected", got.Report.Summary["density_level"])
	}
}

// TestDensityBenchmark tests the level table boundaries, inclusive on
// the upper edge.
func TestDensityBenchmark(t *testing.T) {
	t.Parallel()

	tests := []struct {
		density   float64
		wantLevel DensityLevel
		wantScore int
	}{
		{0.05, DensityExcellent, 95},
		{0.10, DensityExcellent, 95},
		{0.101, DensityGood, 80},
		{0.20, DensityGood, 80},
		{0.201, DensityAcceptable, 65},
		{0.30, DensityAcceptable, 65},
		{0.301, DensityWarning, 40},
		{0.40, DensityWarning, 40},
		{0.401, DensityCritical, 10},
		{0.95, DensityCritical, 10},
	}

	for _, tt := range tests {
		level, score := densityBenchmark(tt.density)
		if level != tt.wantLevel || score != tt.wantScore {
			t.Errorf("densityBenchmark(%v) = %s/%d, want %s/%d",
				tt.density, level, score, tt.wantLevel, tt.wantScore)
		}
	}
}

// TestDensityMonotonicity tests that adding a non-overlapping ad never
// decreases total pixels or density.
func TestDensityMonotonicity(t *testing.T) {
	t.Parallel()

	calc := NewDensityCalculator(testCfg(t))
	base := &model.CrawlObservation{
		Viewport: model.Viewport{Width: 1920, Height: 1080},
		AdElements: []model.AdElement{
			adAt("ad-1", 0, 0, 300, 250),
		},
	}
	before := calc.Analyze(base)

	grown := &model.CrawlObservation{
		Viewport: base.Viewport,
		AdElements: append([]model.AdElement{
			adAt("ad-2", 500, 500, 120, 600),
		}, base.AdElements...),
	}
	after := calc.Analyze(grown)

	if after.TotalAdPixels <= before.TotalAdPixels {
		t.Errorf("TotalAdPixels %v -> %v, must grow", before.TotalAdPixels, after.TotalAdPixels)
	}
	if after.Density <= before.Density {
		t.Errorf("Density %v -> %v, must grow", before.Density, after.Density)
	}
}

// TestDensitySizeBuckets tests the area bucket boundaries.
func TestDensitySizeBuckets(t *testing.T) {
	t.Parallel()

	calc := NewDensityCalculator(testCfg(t))
	got := calc.Analyze(&model.CrawlObservation{
		Viewport: model.Viewport{Width: 1920, Height: 1080},
		AdElements: []model.AdElement{
			adAt("large", 0, 0, 300, 600),
			adAt("medium", 0, 400, 300, 250),
			adAt("small", 700, 0, 120, 600),
			adAt("tiny", 700, 200, 50, 50),
		},
	})

	if got.LargeCount != 1 || got.MediumCount != 1 || got.SmallCount != 1 || got.TinyCount != 1 {
		t.Errorf("buckets = %d/%d/%d/%d, expected 1 each",
			got.LargeCount, got.MediumCount, got.SmallCount, got.TinyCount)
	}
}

// TestDensityAdStacking tests pairwise overlap detection and its
// critical problem.
func TestDensityAdStacking(t *testing.T) {
	t.Parallel()

	calc := NewDensityCalculator(testCfg(t))
	got := calc.Analyze(&model.CrawlObservation{
		Viewport: model.Viewport{Width: 1920, Height: 1080},
		AdElements: []model.AdElement{
			adAt("bottom-layer", 100, 100, 300, 250),
			adAt("top-layer", 100, 100, 300, 250),
			adAt("elsewhere", 800, 800, 300, 250),
		},
	})

	if got.StackedPairs != 1 {
		t.Fatalf("StackedPairs = %d, expected 1", got.StackedPairs)
	}

	found := false
	for _, p := range got.Report.Problems {
		if p.Severity == model.SeverityCritical && strings.Contains(p.Message, "ad stacking") {
			found = true
		}
	}
	if !found {
		t.Errorf("no critical ad-stacking problem in %+v", got.Report.Problems)
	}
}

// TestDensityTinyAdFarm tests the tiny-slot MFA indicator.
func TestDensityTinyAdFarm(t *testing.T) {
	t.Parallel()

	calc := NewDensityCalculator(testCfg(t))
	var ads []model.AdElement
	for i := 0; i < 25; i++ {
		ads = append(ads, adAt("tiny", float64(i*60), float64((i%10)*60), 50, 50))
	}

	got := calc.Analyze(&model.CrawlObservation{
		Viewport:   model.Viewport{Width: 1920, Height: 1080},
		AdElements: ads,
	})
	if !got.MfaIndicator {
		t.Errorf("MfaIndicator = false with %d tiny ads", got.TinyCount)
	}
}

// TestDensityMissingViewport tests the desktop fallback.
func TestDensityMissingViewport(t *testing.T) {
	t.Parallel()

	calc := NewDensityCalculator(testCfg(t))
	got := calc.Analyze(&model.CrawlObservation{
		AdElements: []model.AdElement{adAt("ad-1", 0, 0, 300, 250)},
	})
	if got.ViewportPixels != 1920*1080 {
		t.Errorf("ViewportPixels = %v, expected 1920x1080 fallback", got.ViewportPixels)
	}
}
