package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/ghbuster/internal/model"
)

const ruleWidth = 60

// SimpleWriter outputs human-readable text reports without ANSI colors so
// the output can be piped to files.
type SimpleWriter struct {
	baseWriter

	// showPassed lists the heuristics that did not trigger.
	showPassed bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowPassed controls whether the passed section is printed.
func WithShowPassed(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showPassed = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showPassed: true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.ScanReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)

	if report.EarlyExit {
		w.writeEarlyExit(&sb, report)
		return io.WriteString(w.output, sb.String())
	}

	w.writeTriggered(&sb, report)
	if w.showPassed {
		w.writePassed(&sb, report)
	}
	w.writeSkipped(&sb, report)
	w.writeSummary(&sb, report)

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.ScanReport) {
	title := "ghbuster scan results"
	target := fmt.Sprintf("Target: %s (%s)", report.Target.Slug(), report.Target.Kind())
	border := strings.Repeat("=", max(len(title), len(target), ruleWidth))

	sb.WriteString(border + "\n")
	sb.WriteString(title + "\n")
	sb.WriteString(target + "\n")
	sb.WriteString(fmt.Sprintf("Scan ID: %s\n", report.ID))
	if report.AuthenticatedAs != "" {
		sb.WriteString(fmt.Sprintf("Authenticated as: %s\n", report.AuthenticatedAs))
	}
	sb.WriteString(border + "\n\n")
}

func (w *SimpleWriter) writeEarlyExit(sb *strings.Builder, report *model.ScanReport) {
	sb.WriteString(fmt.Sprintf("An initial analysis indicates that %s is likely legitimate:", report.Target.Slug()))
	if report.Precheck != nil && report.Precheck.Detail != "" {
		sb.WriteString(report.Precheck.Detail)
	}
	sb.WriteString("\n\nExiting early without running all heuristics. Use --force to bypass.\n")
}

func (w *SimpleWriter) writeTriggered(sb *strings.Builder, report *model.ScanReport) {
	triggered := report.Triggered()
	if len(triggered) == 0 {
		return
	}

	sb.WriteString(fmt.Sprintf("%d heuristics triggered\n\n", len(triggered)))
	for i, r := range triggered {
		sb.WriteString(fmt.Sprintf("[!] %d. %s\n", i+1, name(r)))
		if r.Heuristic != nil {
			sb.WriteString(fmt.Sprintf("    Description: %s\n", r.Heuristic.Description()))
		}
		if r.Detail != "" {
			sb.WriteString(fmt.Sprintf("    Details: %s\n", r.Detail))
		}
		sb.WriteString("\n")
	}
}

func (w *SimpleWriter) writePassed(sb *strings.Builder, report *model.ScanReport) {
	passed := report.Passed()
	if len(passed) == 0 {
		return
	}

	sb.WriteString(fmt.Sprintf("Non-triggered heuristics (%d)\n\n", len(passed)))
	for _, r := range passed {
		sb.WriteString(fmt.Sprintf("  [ok] %s\n", name(r)))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSkipped(sb *strings.Builder, report *model.ScanReport) {
	skipped := report.Skipped()
	if len(skipped) == 0 {
		return
	}

	sb.WriteString(fmt.Sprintf("Skipped heuristics (%d)\n\n", len(skipped)))
	for _, r := range skipped {
		line := fmt.Sprintf("  [-] %s", name(r))
		if r.Detail != "" {
			line += ": " + r.Detail
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.ScanReport) {
	s := report.Summary()

	sb.WriteString("SCAN SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 40) + "\n")
	sb.WriteString(fmt.Sprintf("Total Heuristics Run: %d\n", s.Total))
	sb.WriteString(fmt.Sprintf("Heuristics triggered: %d\n", s.Triggered))
	if precheckLegit(report) {
		sb.WriteString("Note: the legitimacy pre-check passed; results were forced.\n")
	}
	if d := report.Duration(); d > 0 {
		sb.WriteString(fmt.Sprintf("Duration:             %s\n", d.Round(time.Millisecond)))
	}
}

// name returns the display name of the result's heuristic.
func name(r model.Result) string {
	if r.Heuristic == nil {
		return "unknown heuristic"
	}
	return r.Heuristic.Name()
}
