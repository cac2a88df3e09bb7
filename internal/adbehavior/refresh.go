package adbehavior

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/publintel/mfascan/internal/config"
	"github.com/publintel/mfascan/internal/model"
)

// slotIDPatterns extract an ad-slot identifier from a request URL.
// Tried in order, first capture wins.
var slotIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)[?&]slot_?id=([^&]+)`),
	regexp.MustCompile(`(?i)[?&]adslot=([^&]+)`),
	regexp.MustCompile(`(?i)[?&]div_?id=([^&]+)`),
	regexp.MustCompile(`(?i)[?&]placement_?id=([^&]+)`),
	regexp.MustCompile(`(\d{15,})`),
	regexp.MustCompile(`(?i)/ads?/([A-Za-z0-9_-]+)`),
}

// Refresh detection methods.
const (
	// RefreshMethodNetwork detects refresh from repeated slot requests.
	RefreshMethodNetwork = "network_timing"
	// RefreshMethodDOM detects refresh from clustered ad mutations.
	RefreshMethodDOM = "dom_mutation"
)

// Refresh interval classification bounds in milliseconds.
const (
	criticalRefreshMs = 30000
	warningRefreshMs  = 60000
)

// domRefreshWindowMs is the greedy time window for clustering ad
// mutations, and domRefreshMinEvents the cluster size that counts as
// a refresh.
const (
	domRefreshWindowMs  = 5000
	domRefreshMinEvents = 3
)

// RefreshPattern is one detected auto-refresh behavior.
type RefreshPattern struct {
	SlotID    string `json:"slot_id"`
	Method    string `json:"method"`
	CallCount int    `json:"call_count"`

	// MeanIntervalMs is the mean time between the refresh calls.
	MeanIntervalMs float64 `json:"mean_interval_ms"`

	// RefreshRate is 1000 divided by the mean of the call-index
	// deltas. Carried over from the system this replaces for
	// score compatibility even though it is not a physical
	// calls-per-second figure.
	RefreshRate float64 `json:"refresh_rate"`
}

// RefreshResult holds the auto-refresh findings of one page.
type RefreshResult struct {
	Patterns []RefreshPattern `json:"patterns,omitempty"`

	// CriticalCount is patterns with a mean interval under 30s;
	// WarningCount covers [30s,60s).
	CriticalCount int `json:"critical_count"`
	WarningCount  int `json:"warning_count"`

	Report *model.AnalyzerReport `json:"-"`
}

// RefreshDetector finds ad slots that reload themselves without user
// interaction, multiplying billable impressions per visit.
type RefreshDetector struct {
	cfg config.Config
}

// NewRefreshDetector creates a RefreshDetector.
func NewRefreshDetector(cfg config.Config) *RefreshDetector {
	return &RefreshDetector{cfg: cfg}
}

// Analyze detects refresh patterns from network request timing and
// from clustered DOM mutations.
func (d *RefreshDetector) Analyze(obs *model.CrawlObservation) *RefreshResult {
	report := model.NewAnalyzerReport("auto_refresh")
	out := &RefreshResult{Report: report}

	out.Patterns = append(out.Patterns, d.networkPatterns(obs.NetworkRequests)...)
	out.Patterns = append(out.Patterns, d.domPatterns(obs.MutationLog)...)

	for _, p := range out.Patterns {
		switch {
		case p.MeanIntervalMs < criticalRefreshMs:
			out.CriticalCount++
		case p.MeanIntervalMs < warningRefreshMs:
			out.WarningCount++
		}
	}

	d.fillReport(out)
	return out
}

// networkPatterns groups requests by extracted slot id and looks for
// sequential calls within the refresh threshold.
func (d *RefreshDetector) networkPatterns(requests []model.NetworkRequest) []RefreshPattern {
	slots := make(map[string][]model.NetworkRequest)
	var order []string
	for _, req := range requests {
		id, ok := extractSlotID(req.URL)
		if !ok {
			continue
		}
		if _, seen := slots[id]; !seen {
			order = append(order, id)
		}
		slots[id] = append(slots[id], req)
	}

	var patterns []RefreshPattern
	for _, id := range order {
		reqs := slots[id]
		sort.SliceStable(reqs, func(i, j int) bool {
			return reqs[i].TimestampMs < reqs[j].TimestampMs
		})

		// A sequential call is a consecutive pair closer together than
		// the refresh threshold. Two of them (three requests) make a
		// pattern.
		var intervals []float64
		var callIndexes []int
		for i := 1; i < len(reqs); i++ {
			delta := reqs[i].TimestampMs - reqs[i-1].TimestampMs
			if delta > 0 && delta <= d.cfg.RefreshThresholdMs {
				intervals = append(intervals, float64(delta))
				if len(callIndexes) == 0 {
					callIndexes = append(callIndexes, i-1)
				}
				callIndexes = append(callIndexes, i)
			}
		}
		if len(intervals) < 2 {
			continue
		}

		patterns = append(patterns, RefreshPattern{
			SlotID:         id,
			Method:         RefreshMethodNetwork,
			CallCount:      len(callIndexes),
			MeanIntervalMs: mean(intervals),
			RefreshRate:    refreshRate(callIndexes),
		})
	}
	return patterns
}

// domPatterns clusters ad-related add/remove mutations into greedy
// 5-second windows; a window with three or more events is a refresh.
func (d *RefreshDetector) domPatterns(mutations []model.DomMutation) []RefreshPattern {
	var adEvents []model.DomMutation
	for _, m := range mutations {
		if m.Type != model.MutationAdded && m.Type != model.MutationRemoved {
			continue
		}
		if adKeywordPattern.MatchString(m.TargetSelector) {
			adEvents = append(adEvents, m)
		}
	}
	if len(adEvents) < domRefreshMinEvents {
		return nil
	}

	sort.SliceStable(adEvents, func(i, j int) bool {
		return adEvents[i].TimestampMs < adEvents[j].TimestampMs
	})

	var patterns []RefreshPattern
	for i := 0; i < len(adEvents); {
		windowEnd := adEvents[i].TimestampMs + domRefreshWindowMs
		j := i
		for j < len(adEvents) && adEvents[j].TimestampMs <= windowEnd {
			j++
		}

		if count := j - i; count >= domRefreshMinEvents {
			var intervals []float64
			for k := i + 1; k < j; k++ {
				intervals = append(intervals, float64(adEvents[k].TimestampMs-adEvents[k-1].TimestampMs))
			}
			patterns = append(patterns, RefreshPattern{
				SlotID:         adEvents[i].TargetSelector,
				Method:         RefreshMethodDOM,
				CallCount:      count,
				MeanIntervalMs: mean(intervals),
				RefreshRate:    0,
			})
		}
		i = j
	}
	return patterns
}

// extractSlotID tries the ordered slot patterns against a URL.
func extractSlotID(url string) (string, bool) {
	for _, p := range slotIDPatterns {
		if m := p.FindStringSubmatch(url); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// refreshRate is 1000 over the mean of the call-index deltas.
func refreshRate(indexes []int) float64 {
	if len(indexes) < 2 {
		return 0
	}
	var deltas []float64
	for i := 1; i < len(indexes); i++ {
		deltas = append(deltas, float64(indexes[i]-indexes[i-1]))
	}
	if m := mean(deltas); m > 0 {
		return 1000 / m
	}
	return 0
}

// mean returns the arithmetic mean, 0 for an empty slice.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// fillReport populates the refresh report.
func (d *RefreshDetector) fillReport(out *RefreshResult) {
	r := out.Report
	r.Metrics["pattern_count"] = len(out.Patterns)
	r.Metrics["critical_refresh_count"] = out.CriticalCount
	r.Metrics["warning_refresh_count"] = out.WarningCount

	if out.CriticalCount > 0 {
		r.AddProblem(model.SeverityCritical,
			fmt.Sprintf("%d ad slots refresh faster than every 30 seconds", out.CriticalCount),
			"Disable sub-30-second ad refresh; most exchanges treat it as invalid traffic.")
	}
	if out.WarningCount > 0 {
		r.AddProblem(model.SeverityMedium,
			fmt.Sprintf("%d ad slots refresh between 30 and 60 seconds", out.WarningCount),
			"Review slot refresh intervals against each demand partner's policy.")
	}
}
