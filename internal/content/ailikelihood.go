package content

import (
	"math"
	"regexp"
	"strings"
)

// transitionMarkers are discourse connectives that LLM-generated prose
// overuses relative to human editorial writing. Matched per word
// against lowercased text.
var transitionMarkers = map[string]bool{
	"furthermore":   true,
	"moreover":      true,
	"additionally":  true,
	"consequently":  true,
	"nevertheless":  true,
	"nonetheless":   true,
	"subsequently":  true,
	"ultimately":    true,
	"overall":       true,
	"significantly": true,
	"notably":       true,
	"importantly":   true,
	"conclusion":    true,
	"summary":       true,
}

// personalPronounPattern matches first-person markers. Human bloggers
// use them constantly; generated filler text mostly does not.
var personalPronounPattern = regexp.MustCompile(`\b(i|my|me|we|our|us)\b`)

// AILikelihoodResult holds the composite machine-generation estimate.
type AILikelihoodResult struct {
	// Score is the composite likelihood in [0,1].
	Score float64 `json:"score"`

	// IsLikelyAI is true when Score >= 0.6. The cutoff was tuned on a
	// labeled sample of generated and editorial articles; see the
	// corpus tests for representative inputs on each side.
	IsLikelyAI bool `json:"is_likely_ai"`

	// SentenceLengthStdDev is the sentence-length standard deviation
	// in words. Generated prose is unusually uniform.
	SentenceLengthStdDev float64 `json:"sentence_length_std_dev"`

	// TransitionDensity is transition markers per 100 words.
	TransitionDensity float64 `json:"transition_density"`

	// PersonalPronounRatio is first-person markers per word.
	PersonalPronounRatio float64 `json:"personal_pronoun_ratio"`
}

// aiLikelyThreshold is the composite score at which text is flagged
// as likely machine-generated.
const aiLikelyThreshold = 0.6

// minAITextLen and minAISentences gate the heuristic: below these the
// statistics are meaningless and the score is 0.
const (
	minAITextLen   = 200
	minAISentences = 5
)

// AILikelihoodDetector estimates whether text is machine-generated
// using three weak signals: sentence-length uniformity, transition-
// marker density, and the absence of first-person voice. Each signal
// alone is noisy; the weighted composite separates template-farm output
// from editorial writing well enough for risk bucketing.
type AILikelihoodDetector struct{}

// NewAILikelihoodDetector creates an AILikelihoodDetector.
func NewAILikelihoodDetector() *AILikelihoodDetector {
	return &AILikelihoodDetector{}
}

// Analyze estimates AI likelihood for text. Short samples score 0.
func (d *AILikelihoodDetector) Analyze(text string) AILikelihoodResult {
	if len(text) < minAITextLen {
		return AILikelihoodResult{}
	}

	sentences := splitSentences(text)
	if len(sentences) < minAISentences {
		return AILikelihoodResult{}
	}

	lower := strings.ToLower(text)
	words := strings.Fields(lower)
	if len(words) == 0 {
		return AILikelihoodResult{}
	}

	// Sentence-length uniformity. A standard deviation of 10 words or
	// more reads as fully human; 0 reads as fully generated.
	lengths := make([]float64, len(sentences))
	mean := 0.0
	for i, s := range sentences {
		lengths[i] = float64(len(strings.Fields(s)))
		mean += lengths[i]
	}
	mean /= float64(len(lengths))
	variance := 0.0
	for _, l := range lengths {
		variance += (l - mean) * (l - mean)
	}
	variance /= float64(len(lengths))
	stdDev := math.Sqrt(variance)
	uniformity := math.Max(0, 1-stdDev/10)

	// Transition-marker density. 2+ markers per 100 words saturates.
	markerCount := 0
	for _, w := range words {
		if transitionMarkers[strings.Trim(w, ".,;:!?")] {
			markerCount++
		}
	}
	density := float64(markerCount) * 100 / float64(len(words))
	markerScore := math.Min(1, density/2)

	// First-person absence. A ratio of 0.05 (one marker per 20 words)
	// or more reads as fully human.
	pronounCount := len(personalPronounPattern.FindAllString(lower, -1))
	pronounRatio := float64(pronounCount) / float64(len(words))
	impersonal := math.Max(0, 1-pronounRatio*20)

	score := 0.45*uniformity + 0.25*markerScore + 0.30*impersonal

	return AILikelihoodResult{
		Score:                score,
		IsLikelyAI:           score >= aiLikelyThreshold,
		SentenceLengthStdDev: stdDev,
		TransitionDensity:    density,
		PersonalPronounRatio: pronounRatio,
	}
}
