package adbehavior

import (
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/publintel/mfascan/internal/model"
)

// TestCommercialAffiliateFarm tests that a page wallpapered with
// affiliate links trips the standalone link cutoff.
func TestCommercialAffiliateFarm(t *testing.T) {
	t.Parallel()

	detector := NewCommercialIntentDetector(testCfg(t))

	var links []model.Link
	for i := 0; i < 12; i++ {
		links = append(links, model.Link{Href: fmt.Sprintf("https://amzn.to/3xY%d", i)})
	}

	got := detector.Analyze(&model.CrawlObservation{
		TextContent: "Top ten products you need right now.",
		Links:       links,
	})

	if got.AffiliateLinks != 12 {
		t.Fatalf("AffiliateLinks = %d, expected 12", got.AffiliateLinks)
	}
	if want := []string{"Amazon Associates"}; !reflect.DeepEqual(got.AffiliateNetworks, want) {
		t.Errorf("AffiliateNetworks = %v, expected %v", got.AffiliateNetworks, want)
	}
	// 12 links * 0.03 capped at 0.3.
	if math.Abs(got.Score-0.3) > 1e-9 {
		t.Errorf("Score = %v, expected 0.3", got.Score)
	}
	if !got.IsMfaSignal {
		t.Error("IsMfaSignal = false with more than 10 affiliate links")
	}
}

// TestCommercialAggressiveMonetization tests popup, push, and lead-gen
// scoring together.
func TestCommercialAggressiveMonetization(t *testing.T) {
	t.Parallel()

	detector := NewCommercialIntentDetector(testCfg(t))
	got := detector.Analyze(&model.CrawlObservation{
		TextContent: "Get your free-quote today and join our newsletter-signup list.",
		Scripts: []model.ScriptRef{
			{InlineContentSample: "window.open popunder loader"},
			{Src: "https://cdn.onesignal.com/sdk.js", IsExternal: true},
			{Src: "https://ads.pubmatic.com/AdServer/js/pwt.js", IsExternal: true},
		},
		AdElements: []model.AdElement{
			{ID: "div-gpt-1", Src: "https://securepubads.g.doubleclick.net/gampad/ads"},
		},
	})

	if got.AggressiveCount != 2 {
		t.Errorf("AggressiveCount = %d, expected 2", got.AggressiveCount)
	}
	if !got.HasPopups || !got.HasPushPrompts || got.HasInterstitials {
		t.Errorf("flags popup=%v push=%v interstitial=%v, expected true true false",
			got.HasPopups, got.HasPushPrompts, got.HasInterstitials)
	}
	if got.LeadGenCount != 1 || !got.HasEmailForms {
		t.Errorf("lead gen = %d email forms = %v", got.LeadGenCount, got.HasEmailForms)
	}
	if math.Abs(got.LeadGenScore-0.5) > 1e-9 {
		t.Errorf("LeadGenScore = %v, expected 0.5", got.LeadGenScore)
	}
	if got.AdNetworkCount != 2 {
		t.Errorf("AdNetworkCount = %d, expected Google Ad Manager and PubMatic", got.AdNetworkCount)
	}
	// aggressive 0.2 + popup 0.15 + lead gen 0.5*0.15 + diversity 0.4*0.25
	if math.Abs(got.Score-0.525) > 1e-9 {
		t.Errorf("Score = %v, expected 0.525", got.Score)
	}
	if !got.IsMfaSignal {
		t.Error("IsMfaSignal = false with popup monetization present")
	}

	popupProblem := false
	for _, p := range got.Report.Problems {
		if p.Severity == model.SeverityHigh && p.Message == "popup or overlay monetization detected" {
			popupProblem = true
		}
	}
	if !popupProblem {
		t.Error("popup monetization did not produce a high severity problem")
	}
}

// TestCommercialNetworkDedup tests that repeated sources of one network
// count once.
func TestCommercialNetworkDedup(t *testing.T) {
	t.Parallel()

	detector := NewCommercialIntentDetector(testCfg(t))
	got := detector.Analyze(&model.CrawlObservation{
		Scripts: []model.ScriptRef{
			{Src: "https://securepubads.g.doubleclick.net/tag/js/gpt.js", IsExternal: true},
			{Src: "https://pagead2.googlesyndication.com/pagead/js/adsbygoogle.js", IsExternal: true},
		},
	})

	if got.AdNetworkCount != 1 {
		t.Errorf("AdNetworkCount = %d, two Google sources are one network", got.AdNetworkCount)
	}
}

// TestCommercialCleanPage tests that an editorial page scores zero.
func TestCommercialCleanPage(t *testing.T) {
	t.Parallel()

	detector := NewCommercialIntentDetector(testCfg(t))
	got := detector.Analyze(&model.CrawlObservation{
		TextContent: "The council approved the budget after a two hour debate.",
		Links:       []model.Link{{Href: "https://example.org/minutes"}},
	})

	if got.Score != 0 {
		t.Errorf("Score = %v, expected 0", got.Score)
	}
	if got.IsMfaSignal {
		t.Error("IsMfaSignal = true on a clean page")
	}
	if len(got.Report.Problems) != 0 {
		t.Errorf("clean page produced problems: %v", got.Report.Problems)
	}
}
