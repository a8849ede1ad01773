package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/ghbuster/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in GitHub Flavored Markdown, suitable for
// pasting into an issue or abuse report.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ScanReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	if report.EarlyExit {
		w.writeEarlyExit(md, report)
	} else {
		w.writeSummary(md, report)
		w.writeTriggered(md, report)
		w.writePassed(md, report)
		w.writeSkipped(md, report)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ScanReport) {
	md.H1("ghbuster Report")
	md.PlainText("")

	rows := [][]string{
		{"Target", "`" + report.Target.Slug() + "`"},
		{"Kind", report.Target.Kind().String()},
		{"Scan ID", "`" + report.ID + "`"},
		{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
	}
	if report.AuthenticatedAs != "" {
		rows = append(rows, []string{"Authenticated As", report.AuthenticatedAs})
	}
	if d := report.Duration(); d > 0 {
		rows = append(rows, []string{"Duration", d.Round(time.Millisecond).String()})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeEarlyExit(md *markdown.Markdown, report *model.ScanReport) {
	md.Tip(fmt.Sprintf("An initial analysis indicates that %s is likely legitimate. Use --force to run all heuristics.",
		report.Target.Slug()))
	md.PlainText("")
	if report.Precheck != nil && report.Precheck.Detail != "" {
		md.BulletList(detailLines(report.Precheck.Detail)...)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.ScanReport) {
	s := report.Summary()

	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows: [][]string{
			{"🚨 Triggered", strconv.Itoa(s.Triggered)},
			{"✅ Passed", strconv.Itoa(s.Passed)},
			{"⏭️ Skipped", strconv.Itoa(s.Skipped)},
			{"**Total**", "**" + strconv.Itoa(s.Total) + "**"},
		},
	})
	md.PlainText("")

	if s.Total > 0 {
		w.writePieChart(md, s)
	}

	if s.Triggered > 0 {
		md.Cautionf("%d of %d heuristics triggered. The target shows signs of inauthentic activity.",
			s.Triggered, s.Total)
	} else {
		md.Tip("No heuristic triggered.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Heuristic Outcomes"),
		piechart.WithShowData(true),
	)
	if s.Triggered > 0 {
		chart.LabelAndIntValue("Triggered", uint64(s.Triggered))
	}
	if s.Passed > 0 {
		chart.LabelAndIntValue("Passed", uint64(s.Passed))
	}
	if s.Skipped > 0 {
		chart.LabelAndIntValue("Skipped", uint64(s.Skipped))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeTriggered(md *markdown.Markdown, report *model.ScanReport) {
	triggered := report.Triggered()
	if len(triggered) == 0 {
		return
	}

	md.H2("Triggered Heuristics")
	md.PlainText("")

	rows := make([][]string, 0, len(triggered))
	for i, r := range triggered {
		rows = append(rows, []string{strconv.Itoa(i + 1), "`" + r.HeuristicID() + "`", name(r)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "ID", "Name"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, r := range triggered {
		body := r.Detail
		if r.Heuristic != nil {
			body = r.Heuristic.Description() + "\n\n" + r.Detail
		}
		md.Details(name(r), body)
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writePassed(md *markdown.Markdown, report *model.ScanReport) {
	passed := report.Passed()
	if len(passed) == 0 {
		return
	}

	md.H2("Passed Heuristics")
	md.PlainText("")
	items := make([]string, 0, len(passed))
	for _, r := range passed {
		items = append(items, name(r))
	}
	md.BulletList(items...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeSkipped(md *markdown.Markdown, report *model.ScanReport) {
	skipped := report.Skipped()
	if len(skipped) == 0 {
		return
	}

	md.H2("Skipped Heuristics")
	md.PlainText("")
	items := make([]string, 0, len(skipped))
	for _, r := range skipped {
		item := name(r)
		if r.Detail != "" {
			item += ": " + r.Detail
		}
		items = append(items, item)
	}
	md.BulletList(items...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [ghbuster](https://github.com/nao1215/ghbuster)*")
}

// detailLines splits a "- item" style detail block into list items.
func detailLines(detail string) []string {
	var out []string
	for line := range strings.SplitSeq(detail, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
