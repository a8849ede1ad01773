package heuristic

import (
	"errors"
	"slices"
	"testing"

	"github.com/nao1215/ghbuster/internal/model"
)

func TestAll(t *testing.T) {
	t.Parallel()

	expected := []string{
		"user.just_joined",
		"user.missing_common_fields",
		"user.commits_unlinked_emails",
		"user.low_community_activity",
		"repo.starred_by_suspicious_users",
		"repo.commits_suspicious_unlinked_emails",
		"user.forks_from_taken_down_repos",
		"user.repos_only_forks",
		"repo.stargazers_joined_same_day",
	}
	if !slices.Equal(IDs(), expected) {
		t.Errorf("expected %v, got %v", expected, IDs())
	}

	for _, h := range All() {
		if h.Name() == "" || h.Description() == "" {
			t.Errorf("%s: expected a name and a description", h.ID())
		}
		if h.TargetKind() != model.TargetUser && h.TargetKind() != model.TargetRepository {
			t.Errorf("%s: unexpected target kind %v", h.ID(), h.TargetKind())
		}
	}

	if _, ok := Lookup(IDLooksLegit); ok {
		t.Error("expected the legitimacy gate to stay out of the catalogue")
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	ids := func(hs []Heuristic) []string {
		out := make([]string, len(hs))
		for i, h := range hs {
			out[i] = h.ID()
		}
		return out
	}

	t.Run("keeps everything without selectors", func(t *testing.T) {
		t.Parallel()

		got, err := Resolve(nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != len(All()) {
			t.Errorf("expected %d heuristics, got %d", len(All()), len(got))
		}
	})

	t.Run("include keeps registry order", func(t *testing.T) {
		t.Parallel()

		got, err := Resolve([]string{IDStargazersJoinedSameDay, IDJustJoined}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		expected := []string{IDJustJoined, IDStargazersJoinedSameDay}
		if !slices.Equal(ids(got), expected) {
			t.Errorf("expected %v, got %v", expected, ids(got))
		}
	})

	t.Run("exclude drops ids", func(t *testing.T) {
		t.Parallel()

		got, err := Resolve(nil, []string{IDJustJoined})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if slices.Contains(ids(got), IDJustJoined) || len(got) != len(All())-1 {
			t.Errorf("unexpected selection %v", ids(got))
		}
	})

	t.Run("include and exclude conflict", func(t *testing.T) {
		t.Parallel()

		_, err := Resolve([]string{IDJustJoined}, []string{IDOnlyForks})
		if !errors.Is(err, ErrConflictingSelection) {
			t.Errorf("expected ErrConflictingSelection, got %v", err)
		}
	})

	t.Run("unknown ids are rejected", func(t *testing.T) {
		t.Parallel()

		_, err := Resolve([]string{"user.nope"}, nil)
		if !errors.Is(err, ErrUnknownHeuristic) {
			t.Errorf("expected ErrUnknownHeuristic, got %v", err)
		}
	})
}
