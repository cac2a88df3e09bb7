// Package log provides trimmed logging for the scoring engine, built
// on top of the standard slog package.
//
// Observations carry full page text, headline strings, and raw URLs
// from untrusted publisher pages. Logging those values verbatim makes
// logs enormous and can leak tracking identifiers embedded in ad-call
// query strings. The TrimHandler therefore:
//   - truncates oversized string attributes to a fixed budget
//   - strips query strings and fragments from URL-valued attributes
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//	logger.Info("scoring page",
//	    "url", "https://example.com/article?utm_source=x", // logged without query
//	    "text", someVeryLongPageText,                      // logged truncated
//	)
//	slog.SetDefault(logger)
package log
