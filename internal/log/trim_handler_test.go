package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// TestTrimHandlerTruncatesLongValues tests string truncation.
func TestTrimHandlerTruncatesLongValues(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, true)

	long := strings.Repeat("a", MaxAttrLen*4)
	logger.Info("page text", "text", long)

	out := buf.String()
	if !strings.Contains(out, TruncationMark) {
		t.Error("expected truncation mark in output")
	}
	if strings.Contains(out, long) {
		t.Error("full oversized value must not appear in output")
	}
}

// TestTrimHandlerStripsURLQueries tests query-string stripping for URL keys.
func TestTrimHandlerStripsURLQueries(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		key      string
		value    string
		stripped bool
	}{
		{"url key with query", "url", "https://example.com/a?gclid=XYZ123", true},
		{"src key with query", "src", "https://ads.example.net/slot?uid=42#frag", true},
		{"non-url key keeps query", "selector", "div#ad?x=1", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewLogger(&buf, true)
			logger.Info("request", tc.key, tc.value)

			out := buf.String()
			hasQuery := strings.Contains(out, "?")
			if tc.stripped && hasQuery {
				t.Errorf("expected query stripped, got %q", out)
			}
			if !tc.stripped && !hasQuery {
				t.Errorf("expected value untouched, got %q", out)
			}
		})
	}
}

// TestTrimHandlerShortValuesUntouched tests that small values pass through.
func TestTrimHandlerShortValuesUntouched(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, true)

	logger.Info("scored", "risk_level", "critical", "score", 0.82)

	out := buf.String()
	if !strings.Contains(out, "critical") {
		t.Errorf("expected plain value in output, got %q", out)
	}
	if strings.Contains(out, TruncationMark) {
		t.Errorf("short values must not be truncated, got %q", out)
	}
}

// TestTrimHandlerVerboseLevel tests level configuration.
func TestTrimHandlerVerboseLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, false)

	logger.Debug("hidden")
	logger.Info("also hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug/info output must be suppressed when not verbose")
	}
	if !strings.Contains(out, "visible") {
		t.Error("warnings must always be logged")
	}
}

// TestTrimHandlerGroups tests recursive trimming inside groups.
func TestTrimHandlerGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, true)

	logger.Info("grouped",
		slog.Group("request",
			"url", "https://ssp.example.com/bid?price=1.2",
		),
	)

	if strings.Contains(buf.String(), "price=1.2") {
		t.Error("expected query stripped inside group")
	}
}
