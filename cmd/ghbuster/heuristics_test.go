package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nao1215/ghbuster/internal/heuristic"
)

func TestHeuristicsCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHeuristicsCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if !strings.HasPrefix(output, "ID") {
		t.Errorf("expected header line, got %q", output)
	}
	for _, id := range heuristic.IDs() {
		if !strings.Contains(output, id) {
			t.Errorf("expected %s to be listed", id)
		}
	}
	if !strings.Contains(output, "repository") || !strings.Contains(output, "user") {
		t.Errorf("expected target kinds to be listed, got %q", output)
	}
}
