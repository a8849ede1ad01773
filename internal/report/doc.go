// Package report renders a model.ScanReport.
//
//   - SimpleWriter: plain text for the terminal
//   - MarkdownWriter: GitHub Flavored Markdown with alerts and a mermaid pie chart
//   - JSONWriter: structured JSON for tool integration
//
// Writers implement the Writer interface and are selected by the CLI.
package report
