package content

import (
	"strings"
	"unicode"
)

// ReadabilityLevel buckets a Flesch reading-ease score.
type ReadabilityLevel string

const (
	// LevelVeryEasy covers ease scores of 90 and above (5th grade).
	LevelVeryEasy ReadabilityLevel = "very_easy"
	// LevelEasy covers ease scores in [70,90).
	LevelEasy ReadabilityLevel = "easy"
	// LevelModerate covers ease scores in [50,70).
	LevelModerate ReadabilityLevel = "moderate"
	// LevelDifficult covers ease scores in [30,50).
	LevelDifficult ReadabilityLevel = "difficult"
	// LevelVeryDifficult covers ease scores below 30.
	LevelVeryDifficult ReadabilityLevel = "very_difficult"
	// LevelUnknown is used when the sample is too short to score.
	LevelUnknown ReadabilityLevel = "unknown"
)

// ReadabilityResult holds grade-level and reading-ease metrics.
type ReadabilityResult struct {
	// FleschReadingEase is the Flesch ease score. Higher is easier;
	// typical editorial content lands between 50 and 70.
	FleschReadingEase float64 `json:"flesch_reading_ease"`

	// FleschKincaidGrade is the US school-grade estimate.
	FleschKincaidGrade float64 `json:"flesch_kincaid_grade"`

	// Level buckets the ease score.
	Level ReadabilityLevel `json:"level"`

	// SentenceCount, WordCount, and SyllableCount are the raw inputs
	// to the formulas, kept for report transparency.
	SentenceCount int `json:"sentence_count"`
	WordCount     int `json:"word_count"`
	SyllableCount int `json:"syllable_count"`
}

// ReadabilityScorer computes Flesch metrics with a syllable-counting
// heuristic. MFA content skews toward very easy filler prose; a
// very_easy bucket on a long article is a weak MFA signal that the
// orchestrator folds into the risk score.
type ReadabilityScorer struct{}

// NewReadabilityScorer creates a ReadabilityScorer.
func NewReadabilityScorer() *ReadabilityScorer {
	return &ReadabilityScorer{}
}

// Analyze scores text readability. Samples with no sentences or words
// return LevelUnknown rather than a misleading zero grade.
func (s *ReadabilityScorer) Analyze(text string) ReadabilityResult {
	sentences := splitSentences(text)
	words := strings.Fields(text)

	if len(sentences) == 0 || len(words) == 0 {
		return ReadabilityResult{Level: LevelUnknown}
	}

	syllables := 0
	for _, w := range words {
		syllables += countSyllables(w)
	}

	wordsPerSentence := float64(len(words)) / float64(len(sentences))
	syllablesPerWord := float64(syllables) / float64(len(words))

	ease := 206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord
	grade := 0.39*wordsPerSentence + 11.8*syllablesPerWord - 15.59
	if grade < 0 {
		grade = 0
	}

	return ReadabilityResult{
		FleschReadingEase:  ease,
		FleschKincaidGrade: grade,
		Level:              easeLevel(ease),
		SentenceCount:      len(sentences),
		WordCount:          len(words),
		SyllableCount:      syllables,
	}
}

// easeLevel buckets a Flesch ease score.
func easeLevel(ease float64) ReadabilityLevel {
	switch {
	case ease >= 90:
		return LevelVeryEasy
	case ease >= 70:
		return LevelEasy
	case ease >= 50:
		return LevelModerate
	case ease >= 30:
		return LevelDifficult
	default:
		return LevelVeryDifficult
	}
}

// splitSentences splits text on terminal punctuation, dropping empty
// fragments.
func splitSentences(text string) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	sentences := make([]string, 0, len(raw))
	for _, s := range raw {
		if strings.TrimSpace(s) != "" {
			sentences = append(sentences, strings.TrimSpace(s))
		}
	}
	return sentences
}

// countSyllables estimates syllables in a word by counting vowel
// groups, with two standard adjustments: a trailing silent "e" does
// not count, and a trailing consonant+"le" does ("table" has two
// syllables, not one). Every word has at least one syllable.
func countSyllables(word string) int {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, word)
	if cleaned == "" {
		return 0
	}

	isVowel := func(b byte) bool {
		return b == 'a' || b == 'e' || b == 'i' || b == 'o' || b == 'u' || b == 'y'
	}

	count := 0
	prevVowel := false
	for i := 0; i < len(cleaned); i++ {
		v := isVowel(cleaned[i])
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}

	// Silent final "e": "make", "brake". A "-le" ending keeps its
	// syllable ("table", "little"), so it is exempt.
	if strings.HasSuffix(cleaned, "e") && !strings.HasSuffix(cleaned, "le") && count > 1 {
		count--
	}

	if count < 1 {
		count = 1
	}
	return count
}
