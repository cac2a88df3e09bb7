package report

import (
	"encoding/json"
	"io"

	"github.com/publintel/mfascan/internal/assess"
	"github.com/publintel/mfascan/internal/model"
)

// reportVersion identifies the JSON output schema.
const reportVersion = "1.0"

// JSONWriter renders assessments as JSON for tool integration.
//
// Design decision: We use encoding/json directly rather than a
// third-party codec. The assessment is written once per scan, so
// marshal throughput is irrelevant, and the standard encoder keeps
// the output stable for downstream parsers.
type JSONWriter struct {
	baseWriter
	prefix string
	indent string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent sets custom indentation for the JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.prefix = prefix
		w.indent = indent
	}
}

// WithPrettyPrint enables two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSON Writer. Output is compact unless an
// indent option is provided.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the assessment as a JSON document followed by a
// newline.
func (w *JSONWriter) Write(assessment *model.RiskAssessment) (int, error) {
	return w.writeJSON(assessment)
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent != "" || w.prefix != "" {
		data, err = json.MarshalIndent(v, w.prefix, w.indent)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}

// JSONReport wraps an assessment with schema metadata and derived
// explanations so consumers need no scoring logic of their own.
type JSONReport struct {
	Version      string                `json:"version"`
	Assessment   *model.RiskAssessment `json:"assessment"`
	Explanations []assess.Explanation  `json:"explanations,omitempty"`
}

// FullJSONWriter renders the versioned wrapper around an assessment.
type FullJSONWriter struct {
	*JSONWriter
}

// NewFullJSONWriter creates a JSON Writer that emits the versioned
// report envelope.
func NewFullJSONWriter(output io.Writer, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
	}
}

// Write outputs the assessment wrapped with version and explanations.
func (w *FullJSONWriter) Write(assessment *model.RiskAssessment) (int, error) {
	return w.writeJSON(JSONReport{
		Version:      reportVersion,
		Assessment:   assessment,
		Explanations: assess.Explain(assessment),
	})
}
