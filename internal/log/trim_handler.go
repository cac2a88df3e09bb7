package log

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"strings"
)

// MaxAttrLen is the maximum length of a logged string attribute.
// Longer values are truncated with TruncationMark appended. Page text
// routinely runs to tens of kilobytes; everything past the first few
// hundred characters adds noise, not signal.
const MaxAttrLen = 256

// TruncationMark is appended to truncated attribute values.
const TruncationMark = "...(truncated)"

// urlKeys contains attribute keys whose values are treated as URLs and
// logged without query string or fragment. Ad-call URLs embed click
// IDs, user IDs, and cache busters that have no place in logs.
var urlKeys = map[string]bool{
	"url":         true,
	"src":         true,
	"href":        true,
	"request_url": true,
	"page":        true,
}

// TrimHandler wraps an slog.Handler to trim untrusted page-derived
// attribute values.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Call sites stay free of manual truncation boilerplate
type TrimHandler struct {
	// handler is the underlying slog handler that receives trimmed records.
	handler slog.Handler
}

// NewTrimHandler creates a TrimHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewTrimHandler(handler slog.Handler) *TrimHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &TrimHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *TrimHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle trims the record's attributes and passes it on.
func (h *TrimHandler) Handle(ctx context.Context, r slog.Record) error {
	trimmed := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		trimmed.AddAttrs(h.trimAttr(a))
		return true
	})

	return h.handler.Handle(ctx, trimmed)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are trimmed before being added.
func (h *TrimHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	trimmedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		trimmedAttrs[i] = h.trimAttr(a)
	}
	return &TrimHandler{handler: h.handler.WithAttrs(trimmedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *TrimHandler) WithGroup(name string) slog.Handler {
	return &TrimHandler{handler: h.handler.WithGroup(name)}
}

// trimAttr trims a single attribute, recursively handling groups.
func (h *TrimHandler) trimAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		trimmedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			trimmedAttrs[i] = h.trimAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(trimmedAttrs...)}
	}

	if a.Value.Kind() != slog.KindString {
		return a
	}

	val := a.Value.String()
	if urlKeys[strings.ToLower(a.Key)] {
		val = stripQuery(val)
	}
	if len(val) > MaxAttrLen {
		val = val[:MaxAttrLen] + TruncationMark
	}
	return slog.String(a.Key, val)
}

// stripQuery removes the query string and fragment from a URL value.
// Values that do not parse as URLs are returned unchanged.
func stripQuery(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return raw
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// NewLogger creates a slog.Logger with attribute trimming.
//
// Parameters:
//   - w: destination writer (typically os.Stderr)
//   - verbose: if true, sets log level to Debug; otherwise Warn
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	return slog.New(NewTrimHandler(slog.NewTextHandler(w, opts)))
}
