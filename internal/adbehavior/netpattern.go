package adbehavior

import (
	"fmt"
	"sort"
	"strings"

	"github.com/publintel/mfascan/internal/config"
	"github.com/publintel/mfascan/internal/model"
)

// networkPattern maps URL substrings to a human-readable network name.
// Substring tables are data, not code branches, so the taxonomy can
// grow without touching the scoring logic.
type networkPattern struct {
	name     string
	patterns []string
}

// sspTaxonomy covers supply-side platforms and ad servers.
var sspTaxonomy = []networkPattern{
	{"Google Ad Manager", []string{"googlesyndication.com", "doubleclick.net", "googleadservices.com", "securepubads", "googletag", "adservice.google."}},
	{"PubMatic", []string{"pubmatic.com"}},
	{"Magnite", []string{"rubiconproject.com"}},
	{"OpenX", []string{"openx.net"}},
	{"Index Exchange", []string{"indexexchange.com", "casalemedia.com"}},
	{"Xandr", []string{"adnxs.com", "appnexus.com"}},
	{"Amazon", []string{"amazon-adsystem.com", "adsystem.amazon.com"}},
	{"Sharethrough", []string{"sharethrough.com"}},
	{"TripleLift", []string{"triplelift.com"}},
	{"Teads", []string{"teads.tv"}},
	{"33Across", []string{"33across.com"}},
	{"Smart AdServer", []string{"smartadserver.com"}},
	{"Sovrn", []string{"sovrn.com", "lijit.com"}},
}

// dspTaxonomy covers demand-side platforms and bid intermediaries.
var dspTaxonomy = []networkPattern{
	{"Criteo", []string{"criteo.com", "criteo.net"}},
	{"The Trade Desk", []string{"adsrvr.org"}},
	{"MediaMath", []string{"mathtag.com"}},
	{"BidSwitch", []string{"bidswitch.net"}},
	{"Quantcast", []string{"quantserve.com"}},
	{"Meta", []string{"facebook.com/tr", "facebook.net"}},
	{"DV360", []string{"doubleclick.net/ddm", "cm.g.doubleclick.net"}},
}

// suspiciousTaxonomy covers affiliate, tracking, and content-injection
// networks whose presence alone is an MFA signal.
var suspiciousTaxonomy = []networkPattern{
	{"Taboola", []string{"taboola.com"}},
	{"Outbrain", []string{"outbrain.com"}},
	{"MGID", []string{"mgid.com"}},
	{"RevContent", []string{"revcontent.com"}},
	{"Content.ad", []string{"content.ad"}},
	{"ZergNet", []string{"zergnet.com"}},
	{"PropellerAds", []string{"propellerads.com"}},
	{"PopAds", []string{"popads.net", "popcash.net"}},
	{"ExoClick", []string{"exoclick.com"}},
	{"Adsterra", []string{"adsterra.com"}},
	{"AdMaven", []string{"admaven.com"}},
	{"Monetag", []string{"monetag.com"}},
	{"OneSignal", []string{"onesignal.com"}},
	{"PushEngage", []string{"pushengage.com", "pushcrew.com"}},
}

// trackingPixelTokens mark pixel/beacon style requests.
var trackingPixelTokens = []string{"pixel", "beacon", "track"}

// Network-pattern risk contributions and anomaly cutoffs.
const (
	highDiversityNetworks = 8
	anomalyNetworkCount   = 15
	anomalyCallCount      = 50
	highPixelCount        = 5
)

// sampleURLCap bounds how many example URLs are kept per network.
const sampleURLCap = 3

// NetworkHit is the per-network call accumulation.
type NetworkHit struct {
	Name       string   `json:"name"`
	Kind       string   `json:"kind"` // ssp, dsp, or suspicious
	CallCount  int      `json:"call_count"`
	SampleURLs []string `json:"sample_urls,omitempty"`
}

// Anomaly is one traffic irregularity worth surfacing.
type Anomaly struct {
	Severity model.Severity `json:"severity"`
	Message  string         `json:"message"`
}

// NetworkPatternResult holds the ad-traffic findings of one page.
type NetworkPatternResult struct {
	Networks []NetworkHit `json:"networks,omitempty"`

	// Diversity is the count of distinct SSP and DSP networks.
	Diversity int `json:"diversity"`

	// SuspiciousCount is the count of distinct suspicious networks.
	SuspiciousCount int `json:"suspicious_count"`

	// PixelCount is the number of pixel/beacon style requests.
	PixelCount int `json:"pixel_count"`

	// RiskScore is the summed MFA-indicator risk, clamped to [0,1].
	RiskScore float64 `json:"risk_score"`

	Anomalies []Anomaly `json:"anomalies,omitempty"`

	Report *model.AnalyzerReport `json:"-"`
}

// NetworkPatternDetector classifies outbound requests against the
// SSP, DSP, and suspicious-network taxonomies. Heavy demand-partner
// diversity on thin content is a classic MFA monetization posture.
type NetworkPatternDetector struct {
	cfg config.Config
}

// NewNetworkPatternDetector creates a NetworkPatternDetector.
func NewNetworkPatternDetector(cfg config.Config) *NetworkPatternDetector {
	return &NetworkPatternDetector{cfg: cfg}
}

// Analyze accumulates per-network call counts and MFA indicators.
func (d *NetworkPatternDetector) Analyze(obs *model.CrawlObservation) *NetworkPatternResult {
	report := model.NewAnalyzerReport("network_pattern")
	out := &NetworkPatternResult{Report: report}

	if len(obs.NetworkRequests) == 0 {
		report.Summary["status"] = "no_network_requests"
		return out
	}

	hits := make(map[string]*NetworkHit)
	var order []string
	record := func(name, kind, url string) {
		h, ok := hits[name]
		if !ok {
			h = &NetworkHit{Name: name, Kind: kind}
			hits[name] = h
			order = append(order, name)
		}
		h.CallCount++
		if len(h.SampleURLs) < sampleURLCap {
			h.SampleURLs = append(h.SampleURLs, url)
		}
	}

	for _, req := range obs.NetworkRequests {
		lower := strings.ToLower(req.URL)

		if name, ok := matchTaxonomy(lower, sspTaxonomy); ok {
			record(name, "ssp", req.URL)
		}
		if name, ok := matchTaxonomy(lower, dspTaxonomy); ok {
			record(name, "dsp", req.URL)
		}
		if name, ok := matchTaxonomy(lower, suspiciousTaxonomy); ok {
			record(name, "suspicious", req.URL)
		}

		for _, token := range trackingPixelTokens {
			if strings.Contains(lower, token) {
				out.PixelCount++
				break
			}
		}
	}

	for _, name := range order {
		h := hits[name]
		out.Networks = append(out.Networks, *h)
		switch h.Kind {
		case "suspicious":
			out.SuspiciousCount++
		default:
			out.Diversity++
		}
	}
	sort.SliceStable(out.Networks, func(i, j int) bool {
		return out.Networks[i].CallCount > out.Networks[j].CallCount
	})

	out.RiskScore = d.score(out)
	out.Anomalies = d.anomalies(out)

	d.fillReport(out)
	return out
}

// matchTaxonomy finds the first network whose patterns match the URL.
// Within a network the first matching pattern wins.
func matchTaxonomy(lowerURL string, taxonomy []networkPattern) (string, bool) {
	for _, n := range taxonomy {
		for _, p := range n.patterns {
			if strings.Contains(lowerURL, p) {
				return n.name, true
			}
		}
	}
	return "", false
}

// score sums the MFA-indicator contributions, clamped to 1.
func (d *NetworkPatternDetector) score(out *NetworkPatternResult) float64 {
	risk := 0.0
	if out.Diversity > highDiversityNetworks {
		risk += 0.15
	}
	if out.SuspiciousCount > 0 {
		risk += 0.2
	}
	if out.PixelCount > highPixelCount {
		risk += 0.15
	}
	return model.Clamp01(risk)
}

// anomalies flags traffic irregularities beyond the risk score.
func (d *NetworkPatternDetector) anomalies(out *NetworkPatternResult) []Anomaly {
	var found []Anomaly
	if total := out.Diversity + out.SuspiciousCount; total > anomalyNetworkCount {
		found = append(found, Anomaly{
			Severity: model.SeverityHigh,
			Message:  fmt.Sprintf("%d distinct ad networks on one page", total),
		})
	}
	for _, h := range out.Networks {
		if h.CallCount > anomalyCallCount {
			found = append(found, Anomaly{
				Severity: model.SeverityMedium,
				Message:  fmt.Sprintf("%s received %d calls in one page load", h.Name, h.CallCount),
			})
		}
	}
	return found
}

// fillReport populates the network-pattern report.
func (d *NetworkPatternDetector) fillReport(out *NetworkPatternResult) {
	r := out.Report
	r.Metrics["network_diversity"] = out.Diversity
	r.Metrics["suspicious_networks"] = out.SuspiciousCount
	r.Metrics["pixel_count"] = out.PixelCount
	r.Metrics["risk_score"] = model.Round3(out.RiskScore)

	if out.SuspiciousCount > 0 {
		r.AddProblem(model.SeverityHigh,
			fmt.Sprintf("%d suspicious ad networks detected", out.SuspiciousCount),
			"Drop pop/push and content-recommendation partners flagged as MFA-correlated.")
	}
	if out.Diversity > highDiversityNetworks {
		r.AddProblem(model.SeverityMedium,
			fmt.Sprintf("unusually high demand diversity: %d networks", out.Diversity),
			"Consolidate demand partners; extreme diversity suggests revenue-at-any-cost setup.")
	}
	for _, a := range out.Anomalies {
		r.AddProblem(a.Severity, a.Message,
			"Investigate the flagged network traffic for invalid activity.")
	}
}
