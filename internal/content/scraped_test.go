package content

import (
	"math"
	"strings"
	"testing"
)

// TestScrapedContentDetector tests template and scraping artifact
// detection.
func TestScrapedContentDetector(t *testing.T) {
	t.Parallel()

	detector := NewScrapedContentDetector()

	t.Run("clean editorial text scores zero", func(t *testing.T) {
		t.Parallel()

		got := detector.Analyze("The council approved the budget after a lengthy public hearing on Tuesday.")
		if got.IsScraped || got.Score != 0 || len(got.Patterns) != 0 {
			t.Errorf("clean text flagged: %+v", got)
		}
	})

	t.Run("placeholder text is detected", func(t *testing.T) {
		t.Parallel()

		got := detector.Analyze("Welcome to our site. Lorem ipsum dolor sit amet, consectetur adipiscing elit.")
		if !got.IsScraped {
			t.Fatal("placeholder text not flagged")
		}
		// "lorem ipsum" and "dolor sit amet" are separate markers.
		if math.Abs(got.Score-0.6) > 1e-9 {
			t.Errorf("Score = %v, expected 0.6 for two markers", got.Score)
		}
	})

	t.Run("unresolved template tags are detected", func(t *testing.T) {
		t.Parallel()

		got := detector.Analyze("Breaking news about {{article.title}} in your area today.")
		if !got.IsScraped {
			t.Fatal("broken template tag not flagged")
		}
		if got.Patterns[0] != "broken_template_tag" {
			t.Errorf("Patterns = %v, expected broken_template_tag", got.Patterns)
		}
	})

	t.Run("scraping artifacts are detected", func(t *testing.T) {
		t.Parallel()

		got := detector.Analyze("Great recipe tips. This article first appeared in Cooking Weekly.")
		if !got.IsScraped {
			t.Fatal("scraped marker not flagged")
		}
	})

	t.Run("keyword stuffing needs a long enough sample", func(t *testing.T) {
		t.Parallel()

		stuffed := strings.Repeat("insurance quotes compare rates ", 20)
		got := detector.Analyze(stuffed)
		if !got.IsScraped {
			t.Fatal("stuffed text not flagged")
		}
		found := false
		for _, p := range got.Patterns {
			if strings.HasPrefix(p, "keyword_stuffing: ") {
				found = true
			}
		}
		if !found {
			t.Errorf("Patterns = %v, expected a keyword_stuffing entry", got.Patterns)
		}

		short := "insurance insurance insurance insurance"
		if detector.Analyze(short).IsScraped {
			t.Error("short samples must not trigger the stuffing check")
		}
	})

	t.Run("score is clamped to one", func(t *testing.T) {
		t.Parallel()

		got := detector.Analyze("lorem ipsum dolor sit amet placeholder text sample text your content here " +
			"originally published on another site, read more at the source")
		if got.Score != 1 {
			t.Errorf("Score = %v, expected clamp to 1", got.Score)
		}
	})
}
