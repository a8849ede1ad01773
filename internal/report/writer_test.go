package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/ghbuster/internal/model"
)

type descriptor struct {
	id, name, description string
}

func (d descriptor) ID() string          { return d.id }
func (d descriptor) Name() string        { return d.name }
func (d descriptor) Description() string { return d.description }

var (
	justJoined = descriptor{"user.just_joined", "User Just Joined", "The user account was created very recently."}
	onlyForks  = descriptor{"user.repos_only_forks", "User Has Only Forks", "All repositories of the user are forks."}
	lowActive  = descriptor{"user.low_community_activity", "Low Community Activity", "The user barely interacts with others."}
)

// createTestReport builds a finished user scan with one result per outcome.
func createTestReport() *model.ScanReport {
	r := model.NewScanReport("scan-1234", model.NewUserTarget("octocat"))
	r.AuthenticatedAs = "auditor"
	r.StartedAt = time.Date(2025, 8, 14, 12, 0, 0, 0, time.UTC)
	r.FinishedAt = r.StartedAt.Add(3 * time.Second)
	r.Results = []model.Result{
		model.Triggered("The user joined 2 days ago.").WithHeuristic(justJoined),
		model.Passed().WithHeuristic(onlyForks),
		model.Skipped("too many repositories").WithHeuristic(lowActive),
	}
	return r
}

// createEarlyExitReport builds a report that stopped at the legitimacy gate.
func createEarlyExitReport() *model.ScanReport {
	r := model.NewScanReport("scan-5678", model.NewUserTarget("torvalds"))
	p := model.Triggered("\n- The user has 40 public repos\n- The user joined 5000 days ago.\n")
	r.Precheck = &p
	r.EarlyExit = true
	return r
}

// TestSimpleWriter tests the human-readable report writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header with target and scan id", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"ghbuster scan results", "Target: octocat (user)", "Scan ID: scan-1234", "Authenticated as: auditor"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("writes every section", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"1 heuristics triggered",
			"[!] 1. User Just Joined",
			"Description: The user account was created very recently.",
			"Details: The user joined 2 days ago.",
			"Non-triggered heuristics (1)",
			"[ok] User Has Only Forks",
			"Skipped heuristics (1)",
			"[-] Low Community Activity: too many repositories",
			"Total Heuristics Run: 3",
			"Heuristics triggered: 1",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("passed section can be hidden", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithShowPassed(false)).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "Non-triggered") {
			t.Error("expected passed section to be hidden")
		}
	})

	t.Run("early exit prints the evidence and the force hint", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createEarlyExitReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "torvalds is likely legitimate") {
			t.Errorf("expected legitimacy notice, got:\n%s", output)
		}
		if !strings.Contains(output, "40 public repos") {
			t.Errorf("expected evidence, got:\n%s", output)
		}
		if !strings.Contains(output, "--force") {
			t.Errorf("expected force hint, got:\n%s", output)
		}
		if strings.Contains(output, "SCAN SUMMARY") {
			t.Error("expected no summary for an early exit")
		}
	})

	t.Run("no ANSI escape codes", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		_, _ = NewSimpleWriter(&buf).Write(createTestReport())
		if strings.Contains(buf.String(), "\033[") {
			t.Error("expected plain output")
		}
	})

	t.Run("returns bytes written", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("expected %d bytes, got %d", buf.Len(), n)
		}
	})
}

// TestMarkdownWriter tests the Markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes tables, alert, chart and details", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# ghbuster Report",
			"`octocat`",
			"## Summary",
			"[!CAUTION]",
			"pie",
			"## Triggered Heuristics",
			"`user.just_joined`",
			"<details>",
			"## Passed Heuristics",
			"## Skipped Heuristics",
			"too many repositories",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("clean report uses a tip", func(t *testing.T) {
		t.Parallel()
		r := createTestReport()
		r.Results = []model.Result{model.Passed().WithHeuristic(onlyForks)}

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "[!TIP]") {
			t.Errorf("expected tip alert, got:\n%s", buf.String())
		}
		if strings.Contains(buf.String(), "## Triggered Heuristics") {
			t.Error("expected no triggered section")
		}
	})

	t.Run("early exit lists the evidence", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createEarlyExitReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "likely legitimate") {
			t.Errorf("expected legitimacy notice, got:\n%s", output)
		}
		if !strings.Contains(output, "- The user has 40 public repos") {
			t.Errorf("expected evidence list, got:\n%s", output)
		}
	})
}

// TestJSONWriter tests the JSON report writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes version, report and summary", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, "v1.2.3").Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var doc struct {
			Version string `json:"version"`
			Report  struct {
				ID      string `json:"id"`
				Results []struct {
					Heuristic struct {
						ID string `json:"id"`
					} `json:"heuristic"`
					Outcome string `json:"outcome"`
					Detail  string `json:"detail"`
				} `json:"results"`
			} `json:"report"`
			Summary model.Summary `json:"summary"`
		}
		if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if doc.Version != "v1.2.3" {
			t.Errorf("expected version v1.2.3, got %s", doc.Version)
		}
		if doc.Report.ID != "scan-1234" {
			t.Errorf("expected scan id, got %s", doc.Report.ID)
		}
		if len(doc.Report.Results) != 3 {
			t.Fatalf("expected 3 results, got %d", len(doc.Report.Results))
		}
		first := doc.Report.Results[0]
		if first.Heuristic.ID != "user.just_joined" || first.Outcome != "triggered" {
			t.Errorf("expected triggered just_joined first, got %+v", first)
		}
		if doc.Summary.Triggered != 1 || doc.Summary.Total != 3 {
			t.Errorf("expected summary 1/3, got %+v", doc.Summary)
		}
	})

	t.Run("compact output is a single line", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		_, _ = NewJSONWriter(&buf, "dev").Write(createTestReport())
		if strings.Count(buf.String(), "\n") != 1 {
			t.Errorf("expected one trailing newline, got:\n%s", buf.String())
		}
	})

	t.Run("pretty print indents", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		_, _ = NewJSONWriter(&buf, "dev", WithPrettyPrint()).Write(createTestReport())
		if !strings.Contains(buf.String(), "\n  \"version\"") {
			t.Errorf("expected indented output, got:\n%s", buf.String())
		}
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, ok := New(FormatSimple, &buf, "dev").(*SimpleWriter); !ok {
		t.Error("expected SimpleWriter")
	}
	if _, ok := New(FormatMarkdown, &buf, "dev").(*MarkdownWriter); !ok {
		t.Error("expected MarkdownWriter")
	}
	if _, ok := New(FormatJSON, &buf, "dev").(*JSONWriter); !ok {
		t.Error("expected JSONWriter")
	}
}
