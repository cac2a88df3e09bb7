package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/publintel/mfascan/internal/assess"
	"github.com/publintel/mfascan/internal/model"
)

// MarkdownWriter outputs assessments in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full assessment in Markdown format.
func (w *MarkdownWriter) Write(assessment *model.RiskAssessment) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, assessment)
	w.writeRiskSummary(md, assessment)
	w.writeFactorAnalysis(md, assessment)
	w.writeFindings(md, assessment)
	w.writeRecommendations(md, assessment)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with audit information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, a *model.RiskAssessment) {
	md.H1("MFA Site Risk Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"URL", "`" + a.URL + "`"},
			{"Audit ID", "`" + a.AuditID + "`"},
			{"Scan Date", a.ScannedAt.Format("2006-01-02 15:04:05 MST")},
			{"Content Flag", string(a.ContentFlagStatus)},
		},
	})
	md.PlainText("")
}

// writeRiskSummary writes the overall score, risk alert, and problem
// severity distribution.
func (w *MarkdownWriter) writeRiskSummary(md *markdown.Markdown, a *model.RiskAssessment) {
	md.H2("Risk Summary")
	md.PlainText("")
	md.PlainTextf("**Overall risk score: %.3f (%s)**", a.OverallRiskScore, a.RiskLevel)
	md.PlainText("")

	w.writeAlert(md, a)

	counts := countProblemsBySeverity(a.Problems)
	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"🔴 Critical", strconv.Itoa(counts[model.SeverityCritical])},
			{"🟠 High", strconv.Itoa(counts[model.SeverityHigh])},
			{"🟡 Medium", strconv.Itoa(counts[model.SeverityMedium])},
			{"🔵 Low", strconv.Itoa(counts[model.SeverityLow])},
			{"**Total**", "**" + strconv.Itoa(len(a.Problems)) + "**"},
		},
	})
	md.PlainText("")

	if len(a.Problems) > 0 {
		w.writePieChart(md, counts)
	}
}

// writeAlert writes an alert matched to the overall risk level.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, a *model.RiskAssessment) {
	switch a.RiskLevel {
	case model.RiskCritical:
		md.Cautionf(
			"This site exhibits strong made-for-advertising characteristics. Score %.3f requires immediate review before spending ad budget here.",
			a.OverallRiskScore,
		)
	case model.RiskHigh:
		md.Warningf(
			"High MFA risk detected. Score %.3f indicates aggressive monetization outweighing editorial value.",
			a.OverallRiskScore,
		)
	case model.RiskMedium:
		md.Importantf(
			"Moderate MFA risk. Score %.3f shows some concerning signals worth monitoring.",
			a.OverallRiskScore,
		)
	case model.RiskLow:
		md.Note("Minor MFA signals detected. The site is likely legitimate.")
	default:
		md.Tip("No significant made-for-advertising signals detected.")
	}
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart for severity distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, counts map[model.Severity]int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Finding Severity Distribution"),
		piechart.WithShowData(true),
	)

	if counts[model.SeverityCritical] > 0 {
		chart.LabelAndIntValue("Critical", uint64(counts[model.SeverityCritical]))
	}
	if counts[model.SeverityHigh] > 0 {
		chart.LabelAndIntValue("High", uint64(counts[model.SeverityHigh]))
	}
	if counts[model.SeverityMedium] > 0 {
		chart.LabelAndIntValue("Medium", uint64(counts[model.SeverityMedium]))
	}
	if counts[model.SeverityLow] > 0 {
		chart.LabelAndIntValue("Low", uint64(counts[model.SeverityLow]))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFactorAnalysis writes the per-factor score table with
// explanations.
func (w *MarkdownWriter) writeFactorAnalysis(md *markdown.Markdown, a *model.RiskAssessment) {
	md.H2("Factor Analysis")
	md.PlainText("")

	explanations := assess.Explain(a)
	if len(explanations) == 0 {
		md.PlainText("No factor scores recorded.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(explanations))
	for i, e := range explanations {
		rows[i] = []string{
			e.Factor,
			fmt.Sprintf("%.3f", e.Risk),
			e.Level,
			truncateString(e.Text, 80),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Factor", "Score", "Level", "Interpretation"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFindings writes all problems grouped by severity.
func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, a *model.RiskAssessment) {
	md.H2("Findings")
	md.PlainText("")

	if len(a.Problems) == 0 {
		md.PlainText("No problems detected.")
		md.PlainText("")
		return
	}

	severities := []struct {
		level  model.Severity
		header string
	}{
		{model.SeverityCritical, "### 🔴 Critical"},
		{model.SeverityHigh, "### 🟠 High"},
		{model.SeverityMedium, "### 🟡 Medium"},
		{model.SeverityLow, "### 🔵 Low"},
	}

	for _, sev := range severities {
		problems := problemsBySeverity(a.Problems, sev.level)
		if len(problems) == 0 {
			continue
		}

		md.PlainText(sev.header)
		md.PlainText("")
		w.writeProblemTable(md, problems)
	}
}

// writeProblemTable writes a table of problems with recommendations.
func (w *MarkdownWriter) writeProblemTable(md *markdown.Markdown, problems []model.Problem) {
	rows := make([][]string, len(problems))
	for i, p := range problems {
		rec := p.Recommendation
		if rec == "" {
			rec = "-"
		}
		rows[i] = []string{
			truncateString(p.Message, 70),
			truncateString(rec, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Problem", "Recommendation"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeRecommendations writes the prioritized remediation list and,
// when present, per-analyzer metric details.
func (w *MarkdownWriter) writeRecommendations(md *markdown.Markdown, a *model.RiskAssessment) {
	md.H2("Recommendations")
	md.PlainText("")

	if len(a.Recommendations) == 0 {
		md.PlainText("No recommendations.")
		md.PlainText("")
	} else {
		md.BulletList(a.Recommendations...)
		md.PlainText("")
	}

	for _, r := range a.Reports {
		if len(r.Metrics) == 0 {
			continue
		}
		md.Details(r.Analyzer+" metrics", formatMetrics(r.Metrics))
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [mfascan](https://github.com/publintel/mfascan)*")
}

// formatMetrics renders analyzer metrics as a sorted key-value block.
func formatMetrics(metrics map[string]any) string {
	keys := make([]string, 0, len(metrics))
	for k := range metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out string
	for _, k := range keys {
		out += fmt.Sprintf("%s: %v<br>", k, metrics[k])
	}
	return out
}

// problemsBySeverity filters problems matching one severity.
func problemsBySeverity(problems []model.Problem, severity model.Severity) []model.Problem {
	var matched []model.Problem
	for _, p := range problems {
		if p.Severity == severity {
			matched = append(matched, p)
		}
	}
	return matched
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
