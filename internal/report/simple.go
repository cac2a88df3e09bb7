package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/publintel/mfascan/internal/assess"
	"github.com/publintel/mfascan/internal/model"
)

const (
	headerRuleLen  = 70
	sectionRuleLen = 70
)

// SimpleWriter renders assessments as plain text for terminals.
type SimpleWriter struct {
	baseWriter
	verbose   bool
	showEmpty bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose includes per-analyzer metrics in the output.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// WithShowEmpty includes sections even when they have no content.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// NewSimpleWriter creates a plain text Writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders the assessment as sectioned plain text.
func (w *SimpleWriter) Write(assessment *model.RiskAssessment) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, assessment)
	w.writeRiskSummary(&sb, assessment)
	w.writeExplanations(&sb, assessment)
	w.writeProblems(&sb, assessment)
	w.writeRecommendations(&sb, assessment)
	if w.verbose {
		w.writeAnalyzerMetrics(&sb, assessment)
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, a *model.RiskAssessment) {
	rule := strings.Repeat("=", headerRuleLen)
	sb.WriteString(rule + "\n")
	sb.WriteString("MFA SITE RISK REPORT\n")
	sb.WriteString(rule + "\n")
	fmt.Fprintf(sb, "URL:          %s\n", a.URL)
	fmt.Fprintf(sb, "Audit ID:     %s\n", a.AuditID)
	fmt.Fprintf(sb, "Scanned:      %s\n", a.ScannedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(sb, "Content flag: %s\n", a.ContentFlagStatus)
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeRiskSummary(sb *strings.Builder, a *model.RiskAssessment) {
	w.writeSectionTitle(sb, "RISK SUMMARY")
	fmt.Fprintf(sb, "Overall risk score: %.3f (%s)\n", a.OverallRiskScore, strings.ToUpper(string(a.RiskLevel)))
	if len(a.Factors) == 0 {
		if w.showEmpty {
			sb.WriteString("No risk factors recorded.\n")
		}
		sb.WriteString("\n")
		return
	}

	names := make([]string, 0, len(a.Factors))
	for name := range a.Factors {
		names = append(names, name)
	}
	sort.Strings(names)

	sb.WriteString("\n")
	for _, name := range names {
		fmt.Fprintf(sb, "  %-18s %.3f\n", name, a.Factors[name])
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeExplanations(sb *strings.Builder, a *model.RiskAssessment) {
	explanations := assess.Explain(a)
	if len(explanations) == 0 && !w.showEmpty {
		return
	}

	w.writeSectionTitle(sb, "FACTOR ANALYSIS")
	if len(explanations) == 0 {
		sb.WriteString("No factor explanations available.\n\n")
		return
	}
	for _, e := range explanations {
		fmt.Fprintf(sb, "[%s] %s (%.3f)\n", strings.ToUpper(e.Level), e.Factor, e.Risk)
		fmt.Fprintf(sb, "    %s\n", e.Text)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeProblems(sb *strings.Builder, a *model.RiskAssessment) {
	if len(a.Problems) == 0 && !w.showEmpty {
		return
	}

	w.writeSectionTitle(sb, "FINDINGS")
	if len(a.Problems) == 0 {
		sb.WriteString("No problems detected.\n\n")
		return
	}

	counts := countProblemsBySeverity(a.Problems)
	var parts []string
	for _, sev := range []model.Severity{model.SeverityCritical, model.SeverityHigh, model.SeverityMedium, model.SeverityLow} {
		if n := counts[sev]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, strings.ToLower(sev.String())))
		}
	}
	fmt.Fprintf(sb, "%d finding(s): %s\n\n", len(a.Problems), strings.Join(parts, ", "))

	for _, p := range a.Problems {
		fmt.Fprintf(sb, "%s [%s] %s\n", severityIndicator(p.Severity), p.SeverityText, p.Message)
		if p.Recommendation != "" {
			fmt.Fprintf(sb, "      Fix: %s\n", p.Recommendation)
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeRecommendations(sb *strings.Builder, a *model.RiskAssessment) {
	if len(a.Recommendations) == 0 && !w.showEmpty {
		return
	}

	w.writeSectionTitle(sb, "RECOMMENDATIONS")
	if len(a.Recommendations) == 0 {
		sb.WriteString("No recommendations.\n\n")
		return
	}
	for i, rec := range a.Recommendations {
		fmt.Fprintf(sb, "%d. %s\n", i+1, rec)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeAnalyzerMetrics(sb *strings.Builder, a *model.RiskAssessment) {
	if len(a.Reports) == 0 {
		return
	}

	w.writeSectionTitle(sb, "ANALYZER METRICS")
	for _, r := range a.Reports {
		fmt.Fprintf(sb, "%s:\n", r.Analyzer)
		keys := make([]string, 0, len(r.Metrics))
		for k := range r.Metrics {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(sb, "  %-24s %v\n", k, r.Metrics[k])
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	rule := strings.Repeat("=", headerRuleLen)
	sb.WriteString(rule + "\n")
	sb.WriteString("Generated by mfascan\n")
	sb.WriteString(rule + "\n")
}

func (w *SimpleWriter) writeSectionTitle(sb *strings.Builder, title string) {
	sb.WriteString(title + "\n")
	sb.WriteString(strings.Repeat("-", sectionRuleLen) + "\n")
}

// severityIndicator returns a terminal-friendly marker for a severity.
func severityIndicator(s model.Severity) string {
	switch s {
	case model.SeverityCritical:
		return "[!!!]"
	case model.SeverityHigh:
		return "[!!] "
	case model.SeverityMedium:
		return "[!]  "
	default:
		return "[-]  "
	}
}

func countProblemsBySeverity(problems []model.Problem) map[model.Severity]int {
	counts := make(map[model.Severity]int)
	for _, p := range problems {
		counts[p.Severity]++
	}
	return counts
}
