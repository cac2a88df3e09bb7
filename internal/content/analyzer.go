package content

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/publintel/mfascan/internal/config"
	"github.com/publintel/mfascan/internal/model"
)

// Thin-content thresholds.
const (
	// thinWordCount and veryThinWordCount classify content volume.
	thinWordCount     = 300
	veryThinWordCount = 100

	// lowUniqueRatio marks repetitive vocabulary.
	lowUniqueRatio = 0.3

	// mfaQualityCutoff is the overall quality score below which the
	// page counts as an MFA content risk.
	mfaQualityCutoff = 0.35

	// duplicateMinTokens is the minimum SimHash token count for the
	// potential-duplicate flag; shorter samples produce unstable
	// fingerprints.
	duplicateMinTokens = 50

	// minMeaningfulTokens is the token count below which the risk
	// score takes a thin-sample penalty.
	minMeaningfulTokens = 20
)

// readabilityQuality maps a readability level to its quality-score
// multiplier. Moderate prose is ideal; very easy filler and very
// difficult word salad both indicate low-value content.
var readabilityQuality = map[ReadabilityLevel]float64{
	LevelVeryEasy:      0.4,
	LevelEasy:          0.7,
	LevelModerate:      1.0,
	LevelDifficult:     0.8,
	LevelVeryDifficult: 0.5,
	LevelUnknown:       0.5,
}

// Analysis is the content-quality fingerprint of one observation.
type Analysis struct {
	// Entropy, Similarity, Readability, AILikelihood, Clickbait,
	// Freshness, and Scraped are the leaf analyzer outputs.
	Entropy      EntropyResult        `json:"entropy"`
	Similarity   SimilarityResult     `json:"similarity"`
	Readability  ReadabilityResult    `json:"readability"`
	AILikelihood AILikelihoodResult   `json:"ai_likelihood"`
	Clickbait    ClickbaitResult      `json:"clickbait"`
	Freshness    FreshnessResult      `json:"freshness"`
	Scraped      ScrapedContentResult `json:"scraped"`

	// InformationDensity is the unique long-word ratio, normalized so
	// 0.05 reads as 0 and 0.30 as 1.
	InformationDensity float64 `json:"information_density"`

	// IsThin and IsVeryThin classify content volume.
	IsThin     bool `json:"is_thin"`
	IsVeryThin bool `json:"is_very_thin"`

	// IsLowDiversity is true when the unique-word ratio falls below 0.3.
	IsLowDiversity bool `json:"is_low_diversity"`

	// IsMfaThinContent is the thin-content MFA verdict: very thin, or
	// thin with low diversity.
	IsMfaThinContent bool `json:"is_mfa_thin_content"`

	// QualityScore is the weighted content quality in [0,1]; higher is
	// better.
	QualityScore float64 `json:"quality_score"`

	// IsMfaRisk is true when QualityScore < 0.35.
	IsMfaRisk bool `json:"is_mfa_risk"`

	// RiskScore is the additive content risk in [0,1]; higher is worse.
	RiskScore float64 `json:"risk_score"`

	// RiskLevel buckets RiskScore: low <0.2, medium <0.4, high <0.6,
	// else critical.
	RiskLevel string `json:"risk_level"`

	// FlagStatus is the dominant content problem.
	FlagStatus model.ContentFlagStatus `json:"flag_status"`

	// HasText reports whether there was any text to analyze. When
	// false every other field holds its zero shape.
	HasText bool `json:"has_text"`

	// Report is the serializable analyzer report.
	Report *model.AnalyzerReport `json:"-"`
}

// Analyzer composes the six leaf analyzers into the content-quality
// fingerprint and risk bucket.
//
// Design decision: We use a coordinator struct holding pre-built leaf
// analyzers rather than free functions because the leaves carry
// validated configuration, and building them once per pipeline keeps
// every per-observation call allocation-light and obviously stateless.
type Analyzer struct {
	entropy     *EntropyAnalyzer
	similarity  *SimilarityChecker
	readability *ReadabilityScorer
	ai          *AILikelihoodDetector
	clickbait   *ClickbaitDetector
	freshness   *FreshnessAnalyzer
	scraped     *ScrapedContentDetector
	cfg         config.Config
}

// NewAnalyzer creates a content Analyzer from validated configuration.
// The reference clock anchors freshness scoring so identical inputs
// yield identical reports.
func NewAnalyzer(cfg config.Config, now time.Time) *Analyzer {
	return &Analyzer{
		entropy:     NewEntropyAnalyzer(cfg.LowEntropyThreshold),
		similarity:  NewSimilarityChecker(cfg.MinSimilarity),
		readability: NewReadabilityScorer(),
		ai:          NewAILikelihoodDetector(),
		clickbait:   NewClickbaitDetector(cfg.ClickbaitThreshold),
		freshness:   NewFreshnessAnalyzer(now),
		scraped:     NewScrapedContentDetector(),
		cfg:         cfg,
	}
}

// Analyze runs the full content analysis over an observation.
//
// A panic inside any leaf is recovered and recorded on the report as a
// computation error with a safe zero result: one malformed page must
// never abort the sibling ad-behavior analysis or the aggregator.
func (a *Analyzer) Analyze(ctx context.Context, obs *model.CrawlObservation) (analysis *Analysis, err error) {
	report := model.NewAnalyzerReport("content")

	defer func() {
		if r := recover(); r != nil {
			report.SetError(fmt.Errorf("content analysis panicked: %v", r))
			analysis = &Analysis{RiskLevel: "low", FlagStatus: model.FlagClean, Report: report}
			err = nil
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := norm.NFC.String(obs.TextContent)
	headline := norm.NFC.String(obs.Headline)

	if text == "" && headline == "" {
		// Valid empty state, not an error: the page had no extractable
		// text. Distinguishable from an analyzed-but-risky page.
		report.Summary["status"] = "no_text_content"
		return &Analysis{
			RiskLevel:  "low",
			FlagStatus: model.FlagClean,
			Report:     report,
		}, nil
	}

	out := &Analysis{HasText: true, Report: report}
	out.Entropy = a.entropy.Analyze(text)
	out.Similarity = a.similarity.Fingerprint(text)
	out.Readability = a.readability.Analyze(text)
	out.AILikelihood = a.ai.Analyze(text)
	out.Clickbait = a.clickbait.Analyze(headline, text)
	out.Freshness = a.freshness.Analyze(text)
	out.Scraped = a.scraped.Analyze(text)
	out.InformationDensity = informationDensity(text)

	a.classifyThin(out)
	a.scoreQuality(out)
	a.scoreRisk(out)
	out.FlagStatus = a.flagStatus(out)

	a.fillReport(out)
	return out, nil
}

// classifyThin applies the thin-content rules.
func (a *Analyzer) classifyThin(out *Analysis) {
	wc := out.Entropy.WordCount
	out.IsThin = wc < thinWordCount
	out.IsVeryThin = wc < veryThinWordCount

	uniqueRatio := 0.0
	if wc > 0 {
		uniqueRatio = float64(out.Entropy.UniqueWordCount) / float64(wc)
	}
	out.IsLowDiversity = uniqueRatio < lowUniqueRatio
	out.IsMfaThinContent = out.IsVeryThin || (out.IsThin && out.IsLowDiversity)
}

// scoreQuality computes the weighted quality score. Weights sum to 1;
// higher is better.
func (a *Analyzer) scoreQuality(out *Analysis) {
	depth := float64(out.Entropy.WordCount) / 800
	if depth > 1 {
		depth = 1
	}

	// Originality rewards entropy and penalizes machine-generation
	// likelihood, centered so equal signals score 0.5.
	originality := (out.Entropy.NormalizedEntropy-out.AILikelihood.Score)*0.5 + 0.5
	if originality < 0 {
		originality = 0
	}

	readability := readabilityQuality[out.Readability.Level]
	engagement := 1 - out.Clickbait.Score

	freshness := 0.5
	if out.Freshness.DateFound {
		freshness = 1 - float64(out.Freshness.DaysOld)/365
		if freshness < 0 {
			freshness = 0
		}
	}

	out.QualityScore = model.Clamp01(
		depth*0.25 + originality*0.30 + readability*0.20 + engagement*0.15 + freshness*0.10)
	out.IsMfaRisk = out.QualityScore < mfaQualityCutoff
}

// scoreRisk computes the additive content risk score and bucket.
func (a *Analyzer) scoreRisk(out *Analysis) {
	risk := 0.0
	if out.AILikelihood.IsLikelyAI {
		risk += 0.3
	}
	if out.Entropy.IsLowEntropy {
		risk += 0.2
	}
	if out.Clickbait.IsClickbait {
		risk += 0.2
	}
	if out.Similarity.TokenCount < minMeaningfulTokens {
		risk += 0.1
	}
	if out.Freshness.DateFound && out.Freshness.DaysOld > a.cfg.VeryStaleDays {
		risk += 0.15
	}
	if out.Readability.Level == LevelVeryEasy {
		risk += 0.1
	}

	out.RiskScore = model.Clamp01(risk)
	switch {
	case out.RiskScore < 0.2:
		out.RiskLevel = "low"
	case out.RiskScore < 0.4:
		out.RiskLevel = "medium"
	case out.RiskScore < 0.6:
		out.RiskLevel = "high"
	default:
		out.RiskLevel = "critical"
	}
}

// flagStatus picks the dominant content problem, first match wins.
func (a *Analyzer) flagStatus(out *Analysis) model.ContentFlagStatus {
	switch {
	case out.AILikelihood.IsLikelyAI:
		return model.FlagAIGenerated
	case out.Similarity.TokenCount > duplicateMinTokens && out.Entropy.IsLowEntropy:
		return model.FlagPotentialDuplicate
	case out.Clickbait.IsClickbait:
		return model.FlagClickbait
	case out.Freshness.DateFound && out.Freshness.DaysOld > a.cfg.VeryStaleDays:
		return model.FlagStale
	default:
		return model.FlagClean
	}
}

// fillReport populates the serializable report from the analysis.
func (a *Analyzer) fillReport(out *Analysis) {
	r := out.Report
	r.Metrics["word_count"] = out.Entropy.WordCount
	r.Metrics["unique_word_count"] = out.Entropy.UniqueWordCount
	r.Metrics["normalized_entropy"] = model.Round3(out.Entropy.NormalizedEntropy)
	r.Metrics["vocabulary_richness"] = model.Round3(out.Entropy.VocabularyRichness)
	r.Metrics["simhash"] = out.Similarity.FingerprintBits
	r.Metrics["readability_level"] = string(out.Readability.Level)
	r.Metrics["flesch_reading_ease"] = model.Round3(out.Readability.FleschReadingEase)
	r.Metrics["ai_likelihood"] = model.Round3(out.AILikelihood.Score)
	r.Metrics["clickbait_score"] = model.Round3(out.Clickbait.Score)
	r.Metrics["freshness_bucket"] = string(out.Freshness.Bucket)
	r.Metrics["staleness_score"] = model.Round3(out.Freshness.StalenessScore)
	r.Metrics["information_density"] = model.Round3(out.InformationDensity)
	r.Metrics["scraped_content"] = out.Scraped.IsScraped
	r.Metrics["quality_score"] = model.Round3(out.QualityScore)
	r.Metrics["risk_score"] = model.Round3(out.RiskScore)

	r.Summary["risk_level"] = out.RiskLevel
	r.Summary["flag_status"] = string(out.FlagStatus)
	r.Summary["is_mfa_risk"] = out.IsMfaRisk
	r.Summary["is_mfa_thin_content"] = out.IsMfaThinContent

	if out.IsMfaThinContent {
		severity := model.SeverityHigh
		if out.IsVeryThin {
			severity = model.SeverityCritical
		}
		r.AddProblem(severity,
			fmt.Sprintf("thin content: %d words", out.Entropy.WordCount),
			"Expand articles with substantive original reporting before monetizing them.")
	}
	if out.Entropy.IsLowEntropy {
		r.AddProblem(model.SeverityMedium,
			"low-entropy text suggests templated content",
			"Replace templated article bodies with original writing.")
	}
	if out.Clickbait.IsClickbait {
		r.AddProblem(model.SeverityMedium,
			fmt.Sprintf("clickbait patterns detected (score %.2f)", out.Clickbait.Score),
			"Rewrite headlines to describe the actual article content.")
	}
	if out.AILikelihood.IsLikelyAI {
		r.AddProblem(model.SeverityHigh,
			"content is likely machine-generated",
			"Review and disclose automated content generation.")
	}
	if out.Scraped.IsScraped {
		r.AddProblem(model.SeverityHigh,
			"scraped or placeholder content markers found",
			"Remove scraped third-party articles and unfinished template pages.")
	}
	if out.Freshness.DateFound && out.Freshness.DaysOld > a.cfg.VeryStaleDays {
		r.AddProblem(model.SeverityLow,
			fmt.Sprintf("content is %d days old", out.Freshness.DaysOld),
			"Refresh or date-label evergreen content presented as current.")
	}
}

// informationDensity is the unique long-word ratio of text, normalized
// so 0.05 reads as 0 and 0.30 as 1. Short samples score 0.
func informationDensity(text string) float64 {
	if len(text) < 100 {
		return 0
	}
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return 0
	}

	longUnique := make(map[string]bool)
	hasLong := false
	for _, w := range words {
		if len(w) > 5 {
			hasLong = true
			longUnique[w] = true
		}
	}
	if !hasLong {
		return 0.1
	}

	density := float64(len(longUnique)) / float64(len(words))
	return model.Clamp01((density - 0.05) / 0.25)
}
