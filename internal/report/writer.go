package report

import (
	"io"

	"github.com/publintel/mfascan/internal/model"
)

// Writer renders one assessment to its configured destination.
//
// Design decision: We use an interface to allow different output
// formats and destinations. Files, stdout, and buffers all share the
// same API.
type Writer interface {
	// Write outputs the assessment. It returns the number of bytes
	// written and any error encountered.
	Write(assessment *model.RiskAssessment) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously, useful for
// outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface writes
// assessments, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the assessment to all configured Writers. It returns
// the total bytes written and stops on the first error.
func (m *MultiWriter) Write(assessment *model.RiskAssessment) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(assessment)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides the shared output destination.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
