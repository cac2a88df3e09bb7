package adbehavior

import (
	"math"
	"testing"

	"github.com/publintel/mfascan/internal/model"
)

// adInsertion builds an ad-slot insertion mutation.
func adInsertion(ts int64) model.DomMutation {
	return model.DomMutation{
		Type:           model.MutationAdded,
		TimestampMs:    ts,
		TargetSelector: "div.ad-slot-injected",
	}
}

// TestScrollInjectionVolley tests a page injecting a dozen slots right
// after a scroll: count, ratio, and burst contributions stack up past
// the MFA line.
func TestScrollInjectionVolley(t *testing.T) {
	t.Parallel()

	detector := NewScrollInjectionDetector(testCfg(t))

	var mutations []model.DomMutation
	for i := 0; i < 12; i++ {
		mutations = append(mutations, adInsertion(int64(1000+100*i)))
	}
	var ads []model.AdElement
	for i := 0; i < 10; i++ {
		ads = append(ads, adAt("slot", float64(i*300), 0, 300, 250))
	}

	got := detector.Analyze(&model.CrawlObservation{
		AdElements:   ads,
		MutationLog:  mutations,
		ScrollEvents: []model.ScrollEvent{{TimestampMs: 1000}},
	})

	if got.InjectedCount != 12 {
		t.Errorf("InjectedCount = %d, expected 12", got.InjectedCount)
	}
	if math.Abs(got.InjectionRatio-1.2) > 1e-9 {
		t.Errorf("InjectionRatio = %v, expected 1.2", got.InjectionRatio)
	}
	if got.BurstCount != 1 {
		t.Errorf("BurstCount = %d, one continuous volley is one burst", got.BurstCount)
	}
	// count 0.4 + ratio 0.3 + burst 0.1
	if math.Abs(got.RiskScore-0.8) > 1e-9 {
		t.Errorf("RiskScore = %v, expected 0.8", got.RiskScore)
	}
	if !got.IsMfaLikely {
		t.Error("IsMfaLikely = false at risk 0.8")
	}
}

// TestScrollInjectionLazyLoadTolerance tests that a couple of
// insertions near scrolling stay low risk.
func TestScrollInjectionLazyLoadTolerance(t *testing.T) {
	t.Parallel()

	detector := NewScrollInjectionDetector(testCfg(t))
	got := detector.Analyze(&model.CrawlObservation{
		AdElements: []model.AdElement{
			adAt("a", 0, 0, 300, 250), adAt("b", 400, 0, 300, 250),
			adAt("c", 800, 0, 300, 250), adAt("d", 1200, 0, 300, 250),
			adAt("e", 1600, 0, 300, 250), adAt("f", 2000, 0, 300, 250),
			adAt("g", 2400, 0, 300, 250), adAt("h", 2800, 0, 300, 250),
		},
		MutationLog: []model.DomMutation{
			adInsertion(1500),
			adInsertion(8000),
		},
		ScrollEvents: []model.ScrollEvent{{TimestampMs: 1000}, {TimestampMs: 7000}},
	})

	if got.InjectedCount != 2 {
		t.Errorf("InjectedCount = %d, expected 2", got.InjectedCount)
	}
	if got.IsMfaLikely {
		t.Errorf("lazy loading flagged as MFA, risk %v", got.RiskScore)
	}
	if got.RiskScore != 0.1 {
		// ratio 2/8 = 0.25 contributes 0.1; nothing else fires.
		t.Errorf("RiskScore = %v, expected 0.1", got.RiskScore)
	}
}

// TestScrollInjectionIgnoresDistantMutations tests the 2-second
// trigger window.
func TestScrollInjectionIgnoresDistantMutations(t *testing.T) {
	t.Parallel()

	detector := NewScrollInjectionDetector(testCfg(t))
	got := detector.Analyze(&model.CrawlObservation{
		AdElements:   []model.AdElement{adAt("a", 0, 0, 300, 250)},
		MutationLog:  []model.DomMutation{adInsertion(10000)},
		ScrollEvents: []model.ScrollEvent{{TimestampMs: 1000}},
	})

	if got.InjectedCount != 0 {
		t.Errorf("InjectedCount = %d, mutation 9s after scroll must not count", got.InjectedCount)
	}
}

// TestScrollInjectionBurstRuns tests burst counting with separated
// volleys.
func TestScrollInjectionBurstRuns(t *testing.T) {
	t.Parallel()

	detector := NewScrollInjectionDetector(testCfg(t))
	got := detector.Analyze(&model.CrawlObservation{
		MutationLog: []model.DomMutation{
			// volley one: 4 insertions 100ms apart
			adInsertion(1000), adInsertion(1100), adInsertion(1200), adInsertion(1300),
			// pause, then a pair (too short for a burst)
			adInsertion(10000), adInsertion(10200),
			// volley two: 3 insertions 400ms apart
			adInsertion(20000), adInsertion(20400), adInsertion(20800),
		},
	})

	if got.BurstCount != 2 {
		t.Errorf("BurstCount = %d, expected 2", got.BurstCount)
	}
}

// TestScrollInjectionNoMutations tests the empty state.
func TestScrollInjectionNoMutations(t *testing.T) {
	t.Parallel()

	detector := NewScrollInjectionDetector(testCfg(t))
	got := detector.Analyze(&model.CrawlObservation{
		ScrollEvents: []model.ScrollEvent{{TimestampMs: 1000}},
	})

	if got.RiskScore != 0 || got.IsMfaLikely {
		t.Errorf("empty mutation log produced risk %v", got.RiskScore)
	}
	if got.Report.Summary["status"] != "no_ad_mutations" {
		t.Errorf("summary = %v, expected no_ad_mutations", got.Report.Summary["status"])
	}
}
