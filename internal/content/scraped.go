package content

import (
	"regexp"
	"strings"
)

// placeholderMarkers are fragments of boilerplate filler text left in
// place on never-finished template sites.
var placeholderMarkers = []string{
	"lorem ipsum",
	"dolor sit amet",
	"placeholder text",
	"sample text",
	"your content here",
}

// scrapedMarkers are phrases that survive naive article scraping.
var scrapedMarkers = []string{
	"originally published on",
	"read more at",
	"this article first appeared",
	"reprinted with permission",
	"copyright (c) 20",
}

// brokenTemplatePattern matches unresolved template tags ({{...}},
// [[...]], {%...%}) that leak into rendered pages when a scraper feeds
// raw templates to its generator.
var brokenTemplatePattern = regexp.MustCompile(`\{\{[^}]{0,80}\}\}|\[\[[^\]]{0,80}\]\]|\{%[^}]{0,80}%\}`)

// keywordStuffingRatio is the frequency above which a single word (of
// more than three characters) counts as stuffed.
const keywordStuffingRatio = 0.08

// ScrapedContentResult holds template/scraping evidence.
type ScrapedContentResult struct {
	// IsScraped is true when any pattern matched.
	IsScraped bool `json:"is_scraped"`

	// Patterns lists the detected markers, in detection order.
	Patterns []string `json:"patterns,omitempty"`

	// Score is min(1, patternCount*0.3).
	Score float64 `json:"score"`
}

// ScrapedContentDetector finds placeholder text, broken template tags,
// scraping artifacts, and keyword stuffing.
type ScrapedContentDetector struct{}

// NewScrapedContentDetector creates a ScrapedContentDetector.
func NewScrapedContentDetector() *ScrapedContentDetector {
	return &ScrapedContentDetector{}
}

// Analyze checks text for scraping and template artifacts.
func (d *ScrapedContentDetector) Analyze(text string) ScrapedContentResult {
	lower := strings.ToLower(text)
	var patterns []string

	for _, marker := range placeholderMarkers {
		if strings.Contains(lower, marker) {
			patterns = append(patterns, "placeholder: "+marker)
		}
	}

	if brokenTemplatePattern.MatchString(text) {
		patterns = append(patterns, "broken_template_tag")
	}

	for _, marker := range scrapedMarkers {
		if strings.Contains(lower, marker) {
			patterns = append(patterns, "scraped_marker: "+marker)
		}
	}

	// Keyword stuffing: any single long word dominating the text.
	words := strings.Fields(lower)
	if len(words) > 50 {
		counts := make(map[string]int)
		for _, w := range words {
			if len(w) > 3 {
				counts[w]++
			}
		}
		for w, c := range counts {
			if float64(c)/float64(len(words)) > keywordStuffingRatio {
				patterns = append(patterns, "keyword_stuffing: "+w)
				break
			}
		}
	}

	score := float64(len(patterns)) * 0.3
	if score > 1 {
		score = 1
	}

	return ScrapedContentResult{
		IsScraped: len(patterns) > 0,
		Patterns:  patterns,
		Score:     score,
	}
}
