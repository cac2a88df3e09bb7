package content

import (
	"math/bits"
	"strings"
)

// simHashBits is the fingerprint width. 64 bits keeps the fingerprint
// in a single machine word and makes Hamming distance one popcount.
const simHashBits = 64

// SimilarityResult holds a document fingerprint for near-duplicate
// detection.
type SimilarityResult struct {
	// Fingerprint is the 64-bit SimHash value.
	Fingerprint uint64 `json:"fingerprint"`

	// FingerprintBits is the fingerprint rendered as a 64-character
	// bitstring, stable for storage and diffing.
	FingerprintBits string `json:"fingerprint_bits"`

	// TokenCount is the number of features (unigrams + bigrams) hashed.
	TokenCount int `json:"token_count"`
}

// SimilarityChecker computes SimHash fingerprints and compares them.
// SimHash is locality-sensitive: documents that share most of their
// vocabulary produce fingerprints with a small Hamming distance, which
// catches MFA template farms that republish the same article under
// many URLs.
type SimilarityChecker struct {
	// minSimilarity is the similarity at or above which two documents
	// count as near-duplicates.
	minSimilarity float64
}

// NewSimilarityChecker creates a SimilarityChecker with the given
// duplicate threshold.
func NewSimilarityChecker(minSimilarity float64) *SimilarityChecker {
	return &SimilarityChecker{minSimilarity: minSimilarity}
}

// Fingerprint computes the SimHash of text over unigram and bigram
// features. Empty text yields a zero fingerprint with TokenCount 0.
func (c *SimilarityChecker) Fingerprint(text string) SimilarityResult {
	tokens := simHashFeatures(text)
	if len(tokens) == 0 {
		return SimilarityResult{FingerprintBits: bitstring(0)}
	}

	// Classic SimHash: each feature votes +1 or -1 per bit position
	// according to its own hash; the sign of each accumulated position
	// becomes the fingerprint bit.
	var vector [simHashBits]int
	for _, tok := range tokens {
		h := tokenHash(tok)
		for i := 0; i < simHashBits; i++ {
			if h&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}

	var fp uint64
	for i := 0; i < simHashBits; i++ {
		if vector[i] > 0 {
			fp |= 1 << uint(i)
		}
	}

	return SimilarityResult{
		Fingerprint:     fp,
		FingerprintBits: bitstring(fp),
		TokenCount:      len(tokens),
	}
}

// Similarity returns the fraction of fingerprint bits two documents
// share, in [0,1].
func (c *SimilarityChecker) Similarity(a, b uint64) float64 {
	distance := bits.OnesCount64(a ^ b)
	return 1 - float64(distance)/simHashBits
}

// IsDuplicate reports whether two fingerprints are near-duplicates
// under the configured threshold.
func (c *SimilarityChecker) IsDuplicate(a, b uint64) bool {
	return c.Similarity(a, b) >= c.minSimilarity
}

// simHashFeatures tokenizes text into lowercase unigrams plus adjacent
// bigrams. Bigrams preserve local word order, so shuffled copies of an
// article do not collide with the original.
func simHashFeatures(text string) []string {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return nil
	}

	features := make([]string, 0, 2*len(words)-1)
	features = append(features, words...)
	for i := 0; i+1 < len(words); i++ {
		features = append(features, words[i]+" "+words[i+1])
	}
	return features
}

// tokenHash is a 64-bit djb2-style hash. It is not cryptographic; it
// only needs to spread feature bits uniformly.
func tokenHash(token string) uint64 {
	var h uint64 = 5381
	for i := 0; i < len(token); i++ {
		h = h*33 + uint64(token[i])
	}
	return h
}

// bitstring renders a fingerprint as a fixed-width binary string,
// most significant bit first.
func bitstring(fp uint64) string {
	var sb strings.Builder
	sb.Grow(simHashBits)
	for i := simHashBits - 1; i >= 0; i-- {
		if fp&(1<<uint(i)) != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
