package pipeline

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/publintel/mfascan/internal/config"
	applog "github.com/publintel/mfascan/internal/log"
	"github.com/publintel/mfascan/internal/model"
)

// scoringClock anchors freshness scoring in every pipeline test.
var scoringClock = time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC)

func testConfig(t *testing.T) config.Config {
	t.Helper()

	cfg := config.NewConfig()
	cfg.Inputs = []string{"obs.json"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return *cfg
}

// editorialObservation builds a plausible news page capture.
func editorialObservation() *model.CrawlObservation {
	var sb strings.Builder
	sb.WriteString("Published on August 25, 2026. ")
	for i := 0; i < 12; i++ {
		fmt.Fprintf(&sb, "Residents told us the zoning change near parcel %d surprised them. ", i)
		fmt.Fprintf(&sb, "We reviewed the planning files and our reading of section %d differs from the county summary. ", i)
	}

	return &model.CrawlObservation{
		URL:          "https://example.org/story",
		TimestampUTC: scoringClock,
		TextContent:  sb.String(),
		Headline:     "County rezoning vote draws a crowd",
		AdElements: []model.AdElement{
			{ID: "ad-top", BoundingBox: model.BoundingBox{Top: 100, Left: 0, Right: 300, Bottom: 350}},
			{ID: "ad-rail", BoundingBox: model.BoundingBox{Top: 500, Left: 0, Right: 300, Bottom: 750}},
		},
	}
}

// TestScoringPipelineEndToEnd tests the assembled three-step pipeline
// over one observation.
func TestScoringPipelineEndToEnd(t *testing.T) {
	t.Parallel()

	logger := applog.NewLogger(io.Discard, false)
	p := NewScoringPipeline(testConfig(t), scoringClock, logger)

	wantSteps := []string{"content_analysis", "ad_behavior", "assess"}
	if !reflect.DeepEqual(p.StepNames(), wantSteps) {
		t.Fatalf("StepNames = %v, expected %v", p.StepNames(), wantSteps)
	}

	scan := NewScan(editorialObservation())
	if err := p.Execute(context.Background(), scan); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if !reflect.DeepEqual(scan.PerformedSteps, wantSteps) {
		t.Errorf("PerformedSteps = %v, expected %v", scan.PerformedSteps, wantSteps)
	}

	if scan.Content == nil || !scan.Content.HasText {
		t.Fatalf("Content = %+v, expected text analysis", scan.Content)
	}
	if scan.Behavior == nil || len(scan.Behavior.Factors) != 5 {
		t.Fatalf("Behavior = %+v, expected five ad factors", scan.Behavior)
	}
	if scan.Assessment == nil {
		t.Fatal("Assessment is nil after the assess step")
	}

	for _, factor := range []string{"content_risk", "density_risk", "refresh_risk"} {
		if _, ok := scan.Assessment.Factors[factor]; !ok {
			t.Errorf("assessment factor %s missing from %v", factor, scan.Assessment.Factors)
		}
	}
	if scan.Assessment.URL != "https://example.org/story" {
		t.Errorf("assessment URL = %q", scan.Assessment.URL)
	}
	if !scan.Assessment.ScannedAt.Equal(scoringClock) {
		t.Errorf("ScannedAt = %v, expected observation timestamp", scan.Assessment.ScannedAt)
	}
	if scan.Assessment.RiskLevel == model.RiskCritical {
		t.Errorf("clean editorial page scored critical: %+v", scan.Assessment)
	}
}

// TestAssessStepAlone tests that the merge step tolerates missing
// scoring results.
func TestAssessStepAlone(t *testing.T) {
	t.Parallel()

	scan := NewScan(&model.CrawlObservation{URL: "https://example.org/empty"})
	step := NewAssessStep(WithAssessLogger(applog.NewLogger(io.Discard, false)))

	if err := step.Do(context.Background(), scan); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if scan.Assessment == nil {
		t.Fatal("Assessment is nil")
	}
	if scan.Assessment.OverallRiskScore != 0 || scan.Assessment.RiskLevel != model.RiskMinimal {
		t.Errorf("assessment = %+v, expected zero risk", scan.Assessment)
	}
}

// TestAdBehaviorStepCancellation tests error propagation from the
// aggregator.
func TestAdBehaviorStepCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	step := NewAdBehaviorStep(testConfig(t), WithAdBehaviorLogger(applog.NewLogger(io.Discard, false)))
	if err := step.Do(ctx, testScan()); err == nil {
		t.Error("Do returned nil on a cancelled context")
	}
}
