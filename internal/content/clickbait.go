package content

import (
	"regexp"
	"sort"
	"strings"
)

// clickbaitPattern is one weighted detection rule. Patterns are data,
// not code branches, so the taxonomy can grow without touching the
// scoring logic and every rule is reachable from table-driven tests.
type clickbaitPattern struct {
	// category groups related patterns for reporting.
	category string

	// pattern matches against the lowercased headline + body sample.
	// All patterns are anchored to word-ish boundaries and written to
	// avoid nested quantifiers; page text is adversarial input and a
	// backtracking blowup here would stall the whole analysis.
	pattern *regexp.Regexp

	// weight is the category contribution when the pattern matches.
	weight float64
}

// clickbaitTaxonomy is the weighted pattern table. Contributions are
// scaled by match count (capped at 3 matches for full weight) and the
// total is clamped to 1.
var clickbaitTaxonomy = []clickbaitPattern{
	// Sensationalism
	{"sensationalism", regexp.MustCompile(`you won'?t believe`), 0.25},
	{"sensationalism", regexp.MustCompile(`will (shock|amaze|blow) you`), 0.25},
	{"sensationalism", regexp.MustCompile(`what happens next`), 0.2},
	{"sensationalism", regexp.MustCompile(`\bnumber \d+ will\b`), 0.2},
	{"sensationalism", regexp.MustCompile(`\bgone (viral|wrong)\b`), 0.15},

	// Urgency
	{"urgency", regexp.MustCompile(`before it'?s (too late|deleted|gone)`), 0.2},
	{"urgency", regexp.MustCompile(`\b(act now|limited time|don'?t wait|hurry)\b`), 0.2},
	{"urgency", regexp.MustCompile(`\bbreaking\s*:`), 0.15},

	// Fake authority
	{"fake_authority", regexp.MustCompile(`doctors (hate|don'?t want you)`), 0.25},
	{"fake_authority", regexp.MustCompile(`experts? (say|warn|reveal)`), 0.15},
	{"fake_authority", regexp.MustCompile(`\b(scientists|studies) (prove|show|confirm)\b`), 0.15},

	// Emotional triggers
	{"emotional", regexp.MustCompile(`one (weird|simple|crazy) trick`), 0.25},
	{"emotional", regexp.MustCompile(`\bthis (mom|dad|grandma|teen)\b`), 0.15},
	{"emotional", regexp.MustCompile(`restore(s|d)? your faith`), 0.15},
	{"emotional", regexp.MustCompile(`\bheart ?breaking\b`), 0.1},

	// Superlatives
	{"superlatives", regexp.MustCompile(`\b(best|worst|most insane|craziest|ultimate) .{0,30} (ever|of all time)\b`), 0.2},
	{"superlatives", regexp.MustCompile(`\btop \d+\b`), 0.1},
	{"superlatives", regexp.MustCompile(`\bmind[- ]?blowing\b`), 0.15},

	// Fear-based
	{"fear", regexp.MustCompile(`\b(terrifying|horrifying|dangerous) (truth|secret|reason)\b`), 0.2},
	{"fear", regexp.MustCompile(`what they don'?t want you to know`), 0.25},
	{"fear", regexp.MustCompile(`\bcould (kill|ruin|destroy) you\b`), 0.2},

	// Curiosity gap
	{"curiosity", regexp.MustCompile(`\bthe (real )?reason why\b`), 0.15},
	{"curiosity", regexp.MustCompile(`click here to find out`), 0.25},
	{"curiosity", regexp.MustCompile(`you need to see this`), 0.2},
	{"curiosity", regexp.MustCompile(`\bexclusive\s*:`), 0.1},
	{"curiosity", regexp.MustCompile(`\bshocking\s*:`), 0.15},
}

// ClickbaitResult holds the weighted clickbait verdict.
type ClickbaitResult struct {
	// Score is the clamped weighted pattern score in [0,1]. A text
	// matching zero patterns scores exactly 0.
	Score float64 `json:"score"`

	// IsClickbait is true when Score exceeds the configured threshold.
	IsClickbait bool `json:"is_clickbait"`

	// MatchedCategories lists the taxonomy categories that matched,
	// sorted and deduplicated.
	MatchedCategories []string `json:"matched_categories,omitempty"`

	// MatchCount is the total number of pattern matches.
	MatchCount int `json:"match_count"`

	// AllCapsHeadline and ExcessivePunctuation are boolean typography
	// checks contributing flat weight.
	AllCapsHeadline      bool `json:"all_caps_headline"`
	ExcessivePunctuation bool `json:"excessive_punctuation"`
}

// ClickbaitDetector scores headline and body text against the weighted
// pattern taxonomy.
type ClickbaitDetector struct {
	// threshold is the score above which IsClickbait is set. The
	// canonical threshold is 0.4.
	threshold float64
}

// NewClickbaitDetector creates a ClickbaitDetector with the given
// threshold.
func NewClickbaitDetector(threshold float64) *ClickbaitDetector {
	return &ClickbaitDetector{threshold: threshold}
}

// bodySampleLen bounds how much body text participates in matching.
// Clickbait framing lives in the headline and opening paragraphs.
const bodySampleLen = 500

// Analyze scores headline plus the opening body sample.
func (d *ClickbaitDetector) Analyze(headline, body string) ClickbaitResult {
	sample := body
	if len(sample) > bodySampleLen {
		sample = sample[:bodySampleLen]
	}
	combined := strings.ToLower(headline + " " + sample)

	var result ClickbaitResult
	score := 0.0
	categories := make(map[string]bool)

	// Per-pattern contribution: min(1, matches/3) * weight. One match
	// earns a third of the weight; three or more earn it fully.
	for _, p := range clickbaitTaxonomy {
		matches := len(p.pattern.FindAllStringIndex(combined, -1))
		if matches == 0 {
			continue
		}
		result.MatchCount += matches
		categories[p.category] = true

		frac := float64(matches) / 3
		if frac > 1 {
			frac = 1
		}
		score += frac * p.weight
	}

	// Typography abuse adds flat weight.
	if isAllCaps(headline) {
		result.AllCapsHeadline = true
		score += 0.15
	}
	if hasExcessivePunctuation(headline) {
		result.ExcessivePunctuation = true
		score += 0.1
	}

	if score > 1 {
		score = 1
	}

	result.Score = score
	result.IsClickbait = score > d.threshold
	for c := range categories {
		result.MatchedCategories = append(result.MatchedCategories, c)
	}
	sort.Strings(result.MatchedCategories)
	return result
}

// isAllCaps reports whether a headline of at least three letters is
// written entirely in capitals.
func isAllCaps(headline string) bool {
	letters := 0
	for _, r := range headline {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			letters++
		}
	}
	return letters >= 3
}

// hasExcessivePunctuation reports repeated exclamation or question
// marks in the headline.
func hasExcessivePunctuation(headline string) bool {
	return strings.Contains(headline, "!!") ||
		strings.Contains(headline, "??") ||
		strings.Contains(headline, "?!")
}
