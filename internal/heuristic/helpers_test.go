package heuristic

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/nao1215/ghbuster/internal/githubtest"
	"github.com/nao1215/ghbuster/internal/model"
)

// testNow is the fixed clock of every heuristic test.
var testNow = time.Date(2025, 8, 14, 12, 0, 0, 0, time.UTC)

// newTestEnv returns an Env over fake with a fixed clock, a silent logger
// and a sequential sub-scanner.
func newTestEnv(fake *githubtest.Fake) *Env {
	env := NewEnv(fake, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	env.Now = func() time.Time { return testNow }
	env.Sub = Sequential{Env: env}
	return env
}

func evaluate(t *testing.T, h Heuristic, env *Env, target model.TargetSpec) model.Result {
	t.Helper()
	res, err := h.Evaluate(context.Background(), env, target)
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", h.ID(), err)
	}
	return res
}
