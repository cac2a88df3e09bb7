package content

import (
	"math"
	"testing"
)

// TestEntropyAnalyzer tests Shannon entropy and word-diversity measures.
func TestEntropyAnalyzer(t *testing.T) {
	t.Parallel()

	analyzer := NewEntropyAnalyzer(0.35)

	t.Run("empty text yields zero result without low-entropy flag", func(t *testing.T) {
		t.Parallel()

		got := analyzer.Analyze("")
		if got.IsLowEntropy {
			t.Error("no data must not be flagged as low entropy")
		}
		if got.Entropy != 0 || got.WordCount != 0 {
			t.Errorf("expected zero result, got %+v", got)
		}
	})

	t.Run("single repeated character has zero entropy", func(t *testing.T) {
		t.Parallel()

		got := analyzer.Analyze("aaaaaaaaaaaaaaaa")
		if got.Entropy != 0 {
			t.Errorf("Entropy = %v, expected 0", got.Entropy)
		}
		if !got.IsLowEntropy {
			t.Error("repeated character text must be low entropy")
		}
	})

	t.Run("two equally frequent characters have one bit entropy", func(t *testing.T) {
		t.Parallel()

		got := analyzer.Analyze("abababab")
		if math.Abs(got.Entropy-1) > 1e-9 {
			t.Errorf("Entropy = %v, expected 1 bit", got.Entropy)
		}
	})

	t.Run("normalized entropy stays in unit interval", func(t *testing.T) {
		t.Parallel()

		samples := []string{
			"a",
			"the quick brown fox jumps over the lazy dog",
			"buy now buy now buy now buy now buy now",
		}
		for _, s := range samples {
			got := analyzer.Analyze(s)
			if got.NormalizedEntropy < 0 || got.NormalizedEntropy > 1 {
				t.Errorf("NormalizedEntropy(%q) = %v, out of [0,1]", s, got.NormalizedEntropy)
			}
		}
	})

	t.Run("word diversity distinguishes varied from repetitive text", func(t *testing.T) {
		t.Parallel()

		varied := analyzer.Analyze("every single word appearing here differs from all others completely")
		repetitive := analyzer.Analyze("win win win win win win win win win prize prize prize")

		if varied.TypeTokenRatio != 1 {
			t.Errorf("all-unique text TTR = %v, expected 1", varied.TypeTokenRatio)
		}
		if varied.IsLowDiversity {
			t.Error("all-unique text must not be low diversity")
		}
		if !repetitive.IsLowDiversity {
			t.Errorf("repetitive text must be low diversity, got TTR=%v richness=%v",
				repetitive.TypeTokenRatio, repetitive.VocabularyRichness)
		}
	})

	t.Run("vocabulary richness combines TTR and hapax ratio", func(t *testing.T) {
		t.Parallel()

		// "a b b": TTR = 2/3, hapax = 1/3.
		got := analyzer.Analyze("a b b")
		want := 0.6*(2.0/3) + 0.4*(1.0/3)
		if math.Abs(got.VocabularyRichness-want) > 1e-9 {
			t.Errorf("VocabularyRichness = %v, expected %v", got.VocabularyRichness, want)
		}
	})
}

// TestEntropyIdempotence tests that repeated calls yield identical results.
func TestEntropyIdempotence(t *testing.T) {
	t.Parallel()

	analyzer := NewEntropyAnalyzer(0.35)
	text := "some moderately interesting article text with several distinct words"

	first := analyzer.Analyze(text)
	second := analyzer.Analyze(text)
	if first != second {
		t.Errorf("repeated analysis differs:\nfirst  %+v\nsecond %+v", first, second)
	}
}
