package content

import (
	"math"
	"testing"
)

// TestClickbaitDetector tests the weighted pattern scoring.
func TestClickbaitDetector(t *testing.T) {
	t.Parallel()

	detector := NewClickbaitDetector(0.4)

	t.Run("neutral headline scores exactly zero", func(t *testing.T) {
		t.Parallel()

		got := detector.Analyze(
			"City council approves new transit budget",
			"The council voted on Tuesday to fund two additional bus routes serving the east side.",
		)
		if got.Score != 0 {
			t.Errorf("Score = %v, a zero-match text must score exactly 0", got.Score)
		}
		if got.IsClickbait {
			t.Error("neutral headline must not be clickbait")
		}
		if got.MatchCount != 0 || len(got.MatchedCategories) != 0 {
			t.Errorf("unexpected matches: count=%d categories=%v",
				got.MatchCount, got.MatchedCategories)
		}
	})

	t.Run("single pattern match earns a third of its weight", func(t *testing.T) {
		t.Parallel()

		got := detector.Analyze("You won't believe this result", "")
		want := 0.25 / 3
		if math.Abs(got.Score-want) > 1e-9 {
			t.Errorf("Score = %v, expected %v", got.Score, want)
		}
		if got.IsClickbait {
			t.Error("one weak match must stay below the threshold")
		}
	})

	t.Run("stacked patterns cross the threshold", func(t *testing.T) {
		t.Parallel()

		got := detector.Analyze(
			"Doctors hate this one weird trick that will shock you",
			"Click here to find out what they don't want you to know before it's too late.",
		)
		if !got.IsClickbait {
			t.Errorf("heavily patterned headline scored %v, expected > 0.4", got.Score)
		}
		if got.Score > 1 {
			t.Errorf("Score = %v, must be clamped to 1", got.Score)
		}
	})

	t.Run("matched categories are sorted and deduplicated", func(t *testing.T) {
		t.Parallel()

		got := detector.Analyze(
			"You won't believe what happens next, it will amaze you",
			"",
		)
		if len(got.MatchedCategories) != 1 || got.MatchedCategories[0] != "sensationalism" {
			t.Errorf("MatchedCategories = %v, expected [sensationalism]", got.MatchedCategories)
		}
		if got.MatchCount != 3 {
			t.Errorf("MatchCount = %d, expected 3", got.MatchCount)
		}
	})

	t.Run("all caps headline adds flat weight", func(t *testing.T) {
		t.Parallel()

		got := detector.Analyze("LOCAL TEAM WINS CHAMPIONSHIP", "")
		if !got.AllCapsHeadline {
			t.Error("AllCapsHeadline not set")
		}
		if math.Abs(got.Score-0.15) > 1e-9 {
			t.Errorf("Score = %v, expected 0.15", got.Score)
		}
	})

	t.Run("repeated punctuation adds flat weight", func(t *testing.T) {
		t.Parallel()

		got := detector.Analyze("Is this real?? Really!!", "")
		if !got.ExcessivePunctuation {
			t.Error("ExcessivePunctuation not set")
		}
	})

	t.Run("body matching is limited to the opening sample", func(t *testing.T) {
		t.Parallel()

		padding := make([]byte, bodySampleLen)
		for i := range padding {
			padding[i] = 'x'
		}
		body := string(padding) + " doctors hate this one weird trick"

		got := detector.Analyze("Plain headline", body)
		if got.MatchCount != 0 {
			t.Errorf("pattern past the body sample matched, count=%d", got.MatchCount)
		}
	})
}

// TestIsAllCaps tests the typography check.
func TestIsAllCaps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		headline string
		want     bool
	}{
		{"SHOCKING NEWS TODAY", true},
		{"Shocking News Today", false},
		{"OK", false},
		{"WOW!!!", true},
		{"", false},
		{"1234 5678", false},
	}

	for _, tt := range tests {
		if got := isAllCaps(tt.headline); got != tt.want {
			t.Errorf("isAllCaps(%q) = %v, want %v", tt.headline, got, tt.want)
		}
	}
}
