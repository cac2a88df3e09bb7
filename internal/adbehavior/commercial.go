package adbehavior

import (
	"fmt"
	"sort"
	"strings"

	"github.com/publintel/mfascan/internal/config"
	"github.com/publintel/mfascan/internal/model"
)

// affiliateTaxonomy maps affiliate network names to URL substring
// patterns.
var affiliateTaxonomy = []networkPattern{
	{"Amazon Associates", []string{"amzn.to", "amazon.com/gp/product", "tag=", "amazon-adsystem.com/e/ir"}},
	{"ClickBank", []string{"clickbank.net", "hop.clickbank"}},
	{"ShareASale", []string{"shareasale.com"}},
	{"CJ Affiliate", []string{"anrdoezrs.net", "tkqlhce.com", "dpbolvw.net", "jdoqocy.com"}},
	{"Rakuten", []string{"linksynergy.com", "rakutenadvertising.com"}},
	{"Awin", []string{"awin1.com"}},
	{"Impact", []string{"impact.com/campaign", "impactradius"}},
}

// aggressiveKeyword classifies a monetization keyword into its
// sub-flag.
type aggressiveKeyword struct {
	token string
	flag  string // popup, interstitial, or push
}

// aggressiveTaxonomy lists aggressive-monetization markers searched in
// script samples, iframe sources, and page text.
var aggressiveTaxonomy = []aggressiveKeyword{
	{"popup", "popup"},
	{"pop-up", "popup"},
	{"pop_under", "popup"},
	{"popunder", "popup"},
	{"exit-intent", "popup"},
	{"modal-overlay", "popup"},
	{"interstitial", "interstitial"},
	{"prestitial", "interstitial"},
	{"push-notification", "push"},
	{"onesignal", "push"},
	{"pushengage", "push"},
	{"web-push", "push"},
}

// leadGenKeywords mark lead-generation funnels.
var leadGenKeywords = []string{
	"free-quote", "get-quote", "lead-form", "lead-gen", "signup-form",
	"free-trial", "free-consultation", "webinar-registration", "get-started-now",
}

// emailFormMarkers mark email-capture forms.
var emailFormMarkers = []string{
	`type="email"`, "email-capture", "newsletter-signup", "subscribe-form",
}

// isMfaCommercialScore is the commercial score above which the page is
// an MFA signal on its own.
const isMfaCommercialScore = 0.6

// Standalone MFA-signal cutoffs.
const (
	maxAffiliateLinks   = 10
	maxCommercialDivers = 4
)

// CommercialResult holds the monetization-intent findings of one page.
type CommercialResult struct {
	// AffiliateLinks is the count of links and requests matching an
	// affiliate network pattern.
	AffiliateLinks int `json:"affiliate_links"`

	// AffiliateNetworks lists the distinct matched networks, sorted.
	AffiliateNetworks []string `json:"affiliate_networks,omitempty"`

	// AggressiveCount is the total aggressive-monetization matches;
	// the Has* flags record which sub-patterns fired.
	AggressiveCount  int  `json:"aggressive_count"`
	HasPopups        bool `json:"has_popups"`
	HasInterstitials bool `json:"has_interstitials"`
	HasPushPrompts   bool `json:"has_push_prompts"`

	// LeadGenCount and HasEmailForms feed the lead-gen sub-score.
	LeadGenCount  int     `json:"lead_gen_count"`
	HasEmailForms bool    `json:"has_email_forms"`
	LeadGenScore  float64 `json:"lead_gen_score"`

	// AdNetworkCount is the distinct known ad networks found among ad
	// element and script sources.
	AdNetworkCount int `json:"ad_network_count"`

	// Score is the summed commercial-intent score in [0,1].
	Score float64 `json:"score"`

	// IsMfaSignal is the standalone MFA verdict.
	IsMfaSignal bool `json:"is_mfa_signal"`

	Report *model.AnalyzerReport `json:"-"`
}

// CommercialIntentDetector measures how aggressively a page converts
// attention into revenue: affiliate links, popups, lead-gen funnels,
// and ad-network diversity.
type CommercialIntentDetector struct {
	cfg config.Config
}

// NewCommercialIntentDetector creates a CommercialIntentDetector.
func NewCommercialIntentDetector(cfg config.Config) *CommercialIntentDetector {
	return &CommercialIntentDetector{cfg: cfg}
}

// Analyze scores the page's commercial intent.
func (d *CommercialIntentDetector) Analyze(obs *model.CrawlObservation) *CommercialResult {
	report := model.NewAnalyzerReport("commercial_intent")
	out := &CommercialResult{Report: report}

	d.countAffiliates(obs, out)
	d.scanAggressive(obs, out)
	d.countNetworks(obs, out)

	out.LeadGenScore = leadGenScore(out.LeadGenCount, out.HasEmailForms)
	out.Score = d.score(out)
	out.IsMfaSignal = out.Score > isMfaCommercialScore ||
		out.AffiliateLinks > maxAffiliateLinks ||
		out.AdNetworkCount > maxCommercialDivers ||
		out.HasPopups

	d.fillReport(out)
	return out
}

// countAffiliates matches links and requests against the affiliate
// taxonomy.
func (d *CommercialIntentDetector) countAffiliates(obs *model.CrawlObservation, out *CommercialResult) {
	networks := make(map[string]bool)

	match := func(rawURL string) {
		lower := strings.ToLower(rawURL)
		if name, ok := matchTaxonomy(lower, affiliateTaxonomy); ok {
			out.AffiliateLinks++
			networks[name] = true
		}
	}

	for _, link := range obs.Links {
		match(link.Href)
	}
	for _, req := range obs.NetworkRequests {
		match(req.URL)
	}

	for name := range networks {
		out.AffiliateNetworks = append(out.AffiliateNetworks, name)
	}
	sort.Strings(out.AffiliateNetworks)
}

// scanAggressive searches scripts, iframes, and page text for
// aggressive-monetization and lead-gen markers.
func (d *CommercialIntentDetector) scanAggressive(obs *model.CrawlObservation, out *CommercialResult) {
	corpus := buildCorpus(obs)

	for _, kw := range aggressiveTaxonomy {
		n := strings.Count(corpus, kw.token)
		if n == 0 {
			continue
		}
		out.AggressiveCount += n
		switch kw.flag {
		case "popup":
			out.HasPopups = true
		case "interstitial":
			out.HasInterstitials = true
		case "push":
			out.HasPushPrompts = true
		}
	}

	for _, kw := range leadGenKeywords {
		out.LeadGenCount += strings.Count(corpus, kw)
	}
	for _, marker := range emailFormMarkers {
		if strings.Contains(corpus, marker) {
			out.HasEmailForms = true
			break
		}
	}
}

// buildCorpus concatenates the lowercased searchable sources.
func buildCorpus(obs *model.CrawlObservation) string {
	var sb strings.Builder
	for _, s := range obs.Scripts {
		sb.WriteString(strings.ToLower(s.Src))
		sb.WriteByte('\n')
		sb.WriteString(strings.ToLower(s.InlineContentSample))
		sb.WriteByte('\n')
	}
	for _, f := range obs.Iframes {
		sb.WriteString(strings.ToLower(f.Src))
		sb.WriteByte('\n')
	}
	sb.WriteString(strings.ToLower(obs.TextContent))
	return sb.String()
}

// countNetworks counts distinct known ad networks among ad element and
// script sources.
func (d *CommercialIntentDetector) countNetworks(obs *model.CrawlObservation, out *CommercialResult) {
	networks := make(map[string]bool)

	match := func(src string) {
		lower := strings.ToLower(src)
		if name, ok := matchTaxonomy(lower, sspTaxonomy); ok {
			networks[name] = true
		}
		if name, ok := matchTaxonomy(lower, dspTaxonomy); ok {
			networks[name] = true
		}
	}

	for _, ad := range obs.AdElements {
		match(ad.Src)
	}
	for _, s := range obs.Scripts {
		match(s.Src)
	}

	out.AdNetworkCount = len(networks)
}

// leadGenScore is min(1, patterns*0.2 + 0.3 for email forms).
func leadGenScore(patterns int, emailForms bool) float64 {
	score := float64(patterns) * 0.2
	if emailForms {
		score += 0.3
	}
	return model.Clamp01(score)
}

// score sums the capped commercial contributions, clamped to 1.
func (d *CommercialIntentDetector) score(out *CommercialResult) float64 {
	affiliate := float64(out.AffiliateLinks) * 0.03
	if affiliate > 0.3 {
		affiliate = 0.3
	}

	aggressive := float64(out.AggressiveCount) * 0.1
	if aggressive > 0.3 {
		aggressive = 0.3
	}
	if out.HasPopups {
		aggressive += 0.15
	}

	diversity := float64(out.AdNetworkCount) * 0.2
	if diversity > 1 {
		diversity = 1
	}

	return model.Clamp01(affiliate + aggressive + out.LeadGenScore*0.15 + diversity*0.25)
}

// fillReport populates the commercial-intent report.
func (d *CommercialIntentDetector) fillReport(out *CommercialResult) {
	r := out.Report
	r.Metrics["affiliate_links"] = out.AffiliateLinks
	r.Metrics["aggressive_count"] = out.AggressiveCount
	r.Metrics["lead_gen_score"] = model.Round3(out.LeadGenScore)
	r.Metrics["ad_network_count"] = out.AdNetworkCount
	r.Metrics["commercial_score"] = model.Round3(out.Score)
	r.Summary["is_mfa_signal"] = out.IsMfaSignal
	r.Summary["has_popups"] = out.HasPopups

	if out.AffiliateLinks > maxAffiliateLinks {
		r.AddProblem(model.SeverityMedium,
			fmt.Sprintf("%d affiliate links on one page", out.AffiliateLinks),
			"Reduce affiliate link density or label the page as commercial content.")
	}
	if out.HasPopups {
		r.AddProblem(model.SeverityHigh,
			"popup or overlay monetization detected",
			"Remove popups and overlays that trap users inside monetization funnels.")
	}
	if out.IsMfaSignal {
		r.AddProblem(model.SeverityHigh,
			fmt.Sprintf("commercial intent score %.2f marks the page as MFA-like", out.Score),
			"Rebalance the page toward content value over monetization surface.")
	}
}
