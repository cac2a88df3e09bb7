package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/publintel/mfascan/internal/model"
)

func sampleAssessment() *model.RiskAssessment {
	a := model.NewRiskAssessment(
		"https://example.com/article",
		time.Date(2026, time.August, 31, 10, 30, 0, 0, time.UTC),
	)
	a.OverallRiskScore = 0.512
	a.RiskLevel = model.RiskLevelFor(a.OverallRiskScore)
	a.ContentFlagStatus = model.FlagClickbait
	a.Factors = map[string]float64{
		"density_risk": 0.8,
		"content_risk": 0.2,
	}
	a.Problems = []model.Problem{
		model.NewProblem(model.SeverityCritical, "ad stacking detected: 2 overlapping ad pairs", "Remove stacked ad slots."),
		model.NewProblem(model.SeverityHigh, "ad density exceeds industry ceiling", "Reduce ad coverage below 30%."),
		model.NewProblem(model.SeverityLow, "minor tracking pixel usage", ""),
	}
	a.Recommendations = []string{
		"Remove stacked ad slots.",
		"Reduce ad coverage below 30%.",
	}

	metrics := model.NewAnalyzerReport("ad_density")
	metrics.Metrics["ad_count"] = 12
	metrics.Metrics["density_pct"] = 38.5
	a.Reports = append(a.Reports, metrics)

	return a
}

func TestSimpleWriterSections(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewSimpleWriter(&buf)

	n, err := w.Write(sampleAssessment())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != buf.Len() {
		t.Errorf("Write() returned %d bytes, buffer has %d", n, buf.Len())
	}

	out := buf.String()
	for _, want := range []string{
		"MFA SITE RISK REPORT",
		"URL:          https://example.com/article",
		"Content flag: clickbait",
		"RISK SUMMARY",
		"Overall risk score: 0.512 (HIGH)",
		"density_risk",
		"FACTOR ANALYSIS",
		"FINDINGS",
		"3 finding(s): 1 critical, 1 high, 1 low",
		"[!!!] [critical] ad stacking detected",
		"Fix: Remove stacked ad slots.",
		"RECOMMENDATIONS",
		"1. Remove stacked ad slots.",
		"Generated by mfascan",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}

	if strings.Contains(out, "ANALYZER METRICS") {
		t.Error("metrics section should require verbose mode")
	}
}

func TestSimpleWriterVerbose(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewSimpleWriter(&buf, WithVerbose(true))

	if _, err := w.Write(sampleAssessment()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "ANALYZER METRICS") {
		t.Error("verbose output missing metrics section")
	}
	if !strings.Contains(out, "ad_density:") {
		t.Error("verbose output missing analyzer name")
	}
	if !strings.Contains(out, "ad_count") {
		t.Error("verbose output missing metric key")
	}
}

func TestSimpleWriterShowEmpty(t *testing.T) {
	t.Parallel()

	empty := model.NewRiskAssessment("https://example.com", time.Now().UTC())

	var hidden bytes.Buffer
	if _, err := NewSimpleWriter(&hidden).Write(empty); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if strings.Contains(hidden.String(), "FINDINGS") {
		t.Error("empty findings section should be omitted by default")
	}

	var shown bytes.Buffer
	if _, err := NewSimpleWriter(&shown, WithShowEmpty(true)).Write(empty); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	out := shown.String()
	if !strings.Contains(out, "No problems detected.") {
		t.Error("show empty output missing findings placeholder")
	}
	if !strings.Contains(out, "No recommendations.") {
		t.Error("show empty output missing recommendations placeholder")
	}
}

func TestJSONWriterCompact(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewJSONWriter(&buf)

	n, err := w.Write(sampleAssessment())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != buf.Len() {
		t.Errorf("Write() returned %d bytes, buffer has %d", n, buf.Len())
	}
	if !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
		t.Error("output missing trailing newline")
	}

	var decoded model.RiskAssessment
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.URL != "https://example.com/article" {
		t.Errorf("URL = %q, want sample URL", decoded.URL)
	}
	if decoded.OverallRiskScore != 0.512 {
		t.Errorf("OverallRiskScore = %v, want 0.512", decoded.OverallRiskScore)
	}
	if len(decoded.Problems) != 3 {
		t.Errorf("Problems length = %d, want 3", len(decoded.Problems))
	}
}

func TestJSONWriterPrettyPrint(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewJSONWriter(&buf, WithPrettyPrint())

	if _, err := w.Write(sampleAssessment()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !strings.Contains(buf.String(), "\n  \"") {
		t.Error("pretty printed output missing indentation")
	}
}

func TestFullJSONWriterEnvelope(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewFullJSONWriter(&buf, WithPrettyPrint())

	if _, err := w.Write(sampleAssessment()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var decoded JSONReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Version != reportVersion {
		t.Errorf("Version = %q, want %q", decoded.Version, reportVersion)
	}
	if decoded.Assessment == nil || decoded.Assessment.URL != "https://example.com/article" {
		t.Error("envelope missing embedded assessment")
	}
	if len(decoded.Explanations) == 0 {
		t.Error("envelope missing factor explanations")
	}
}

func TestMarkdownWriterSections(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewMarkdownWriter(&buf)

	n, err := w.Write(sampleAssessment())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n == 0 {
		t.Error("Write() reported zero bytes")
	}

	out := buf.String()
	for _, want := range []string{
		"# MFA Site Risk Report",
		"`https://example.com/article`",
		"## Risk Summary",
		"Overall risk score: 0.512 (high)",
		"mermaid",
		"## Factor Analysis",
		"density_risk",
		"## Findings",
		"### 🔴 Critical",
		"### 🟠 High",
		"### 🔵 Low",
		"## Recommendations",
		"ad_density metrics",
		"Report generated by",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}

	if strings.Contains(out, "### 🟡 Medium") {
		t.Error("medium section should be omitted when no medium problems exist")
	}
}

func TestMarkdownWriterAlertLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		score float64
		want  string
	}{
		{"critical score", 0.85, "[!CAUTION]"},
		{"high score", 0.6, "[!WARNING]"},
		{"medium score", 0.4, "[!IMPORTANT]"},
		{"low score", 0.15, "[!NOTE]"},
		{"minimal score", 0.02, "[!TIP]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := sampleAssessment()
			a.OverallRiskScore = tt.score
			a.RiskLevel = model.RiskLevelFor(tt.score)

			var buf bytes.Buffer
			if _, err := NewMarkdownWriter(&buf).Write(a); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output missing alert %q for score %v", tt.want, tt.score)
			}
		})
	}
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var first, second bytes.Buffer
	mw := NewMultiWriter(
		NewSimpleWriter(&first),
		NewSimpleWriter(&second),
	)

	n, err := mw.Write(sampleAssessment())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if first.String() != second.String() {
		t.Error("writers received different content")
	}
	if n != first.Len()+second.Len() {
		t.Errorf("Write() returned %d bytes, want %d", n, first.Len()+second.Len())
	}
}

type failingWriter struct{}

func (failingWriter) Write(*model.RiskAssessment) (int, error) {
	return 0, errors.New("sink unavailable")
}

func TestMultiWriterStopsOnError(t *testing.T) {
	t.Parallel()

	var after bytes.Buffer
	mw := NewMultiWriter(failingWriter{}, NewSimpleWriter(&after))

	if _, err := mw.Write(sampleAssessment()); err == nil {
		t.Fatal("Write() expected error from failing writer")
	}
	if after.Len() != 0 {
		t.Error("writers after the failure should not be invoked")
	}
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"shorter than limit", "abc", 10, "abc"},
		{"exactly at limit", "abcde", 5, "abcde"},
		{"over limit", "abcdefghij", 8, "abcde..."},
		{"tiny limit", "abcdef", 2, "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := truncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}
