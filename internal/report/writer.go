package report

import (
	"io"

	"github.com/nao1215/ghbuster/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write renders the report and returns the number of bytes written.
	Write(report *model.ScanReport) (int, error)
}

// Format selects a Writer.
type Format int

const (
	// FormatSimple is the plain text report.
	FormatSimple Format = iota
	// FormatMarkdown is the Markdown report.
	FormatMarkdown
	// FormatJSON is the JSON report.
	FormatJSON
)

// New returns the writer for format. version is embedded in JSON output.
func New(format Format, output io.Writer, version string) Writer {
	switch format {
	case FormatMarkdown:
		return NewMarkdownWriter(output)
	case FormatJSON:
		return NewJSONWriter(output, version, WithPrettyPrint())
	default:
		return NewSimpleWriter(output)
	}
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// precheckLegit reports whether the report stopped at, or passed through,
// a legitimacy gate that fired.
func precheckLegit(r *model.ScanReport) bool {
	return r.Precheck != nil && r.Precheck.IsTriggered()
}
