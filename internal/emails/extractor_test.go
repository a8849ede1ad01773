package emails

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/nao1215/ghbuster/internal/github"
	"github.com/nao1215/ghbuster/internal/githubtest"
	"github.com/nao1215/ghbuster/internal/model"
)

func TestExtractRepository(t *testing.T) {
	t.Parallel()

	t.Run("repository without commits yields an empty set", func(t *testing.T) {
		t.Parallel()

		fake := githubtest.New()
		fake.AddUser(github.User{Login: "owner"})
		fake.AddRepository(github.Repository{FullName: "owner/empty"})

		set, err := New(fake).Extract(context.Background(), model.NewRepositoryTarget("owner", "empty"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if set.Len() != 0 {
			t.Errorf("expected empty set, got %v", set.Addresses())
		}
	})

	t.Run("classifies linkage against the owner id", func(t *testing.T) {
		t.Parallel()

		fake := githubtest.New()
		owner := fake.AddUser(github.User{Login: "owner"})
		other := fake.AddUser(github.User{Login: "other"})
		gone := fake.AddUser(github.User{Login: "gone"})
		fake.RemoveUser("gone")
		fake.AddRepository(github.Repository{FullName: "owner/repo"})
		fake.AddCommits("owner/repo", "main",
			githubtest.Commit("a1", "Owner", "Owner@Example.com", &owner),
			githubtest.Commit("a2", "Other", "other@example.com", &other),
			githubtest.Commit("a3", "Ghost", "ghost@example.com", &gone),
			githubtest.Commit("a4", "Nobody", "nobody@example.com", nil),
		)

		set, err := New(fake, WithIncludeLinkedToOther(true)).Extract(context.Background(), model.NewRepositoryTarget("owner", "repo"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		expected := map[string]model.LinkageState{
			"owner@example.com":  model.LinkedToCurrentUser,
			"other@example.com":  model.LinkedToOtherUser,
			"ghost@example.com":  model.Unlinked,
			"nobody@example.com": model.Unlinked,
		}
		if set.Len() != len(expected) {
			t.Fatalf("expected %d records, got %v", len(expected), set.Addresses())
		}
		for address, state := range expected {
			record, ok := set.Get(address)
			if !ok {
				t.Errorf("expected record for %s", address)
				continue
			}
			if record.Linkage != state {
				t.Errorf("%s: expected %v, got %v", address, state, record.Linkage)
			}
		}
	})

	t.Run("drops emails linked to other users by default", func(t *testing.T) {
		t.Parallel()

		fake := githubtest.New()
		fake.AddUser(github.User{Login: "owner"})
		other := fake.AddUser(github.User{Login: "other"})
		fake.AddRepository(github.Repository{FullName: "owner/repo"})
		fake.AddCommits("owner/repo", "main", githubtest.Commit("a1", "Other", "other@example.com", &other))

		set, err := New(fake).Extract(context.Background(), model.NewRepositoryTarget("owner", "repo"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if set.Len() != 0 {
			t.Errorf("expected empty set, got %v", set.Addresses())
		}
	})

	t.Run("drops unlinked emails when asked", func(t *testing.T) {
		t.Parallel()

		fake := githubtest.New()
		fake.AddUser(github.User{Login: "owner"})
		fake.AddRepository(github.Repository{FullName: "owner/repo"})
		fake.AddCommits("owner/repo", "main", githubtest.Commit("a1", "Anon", "anon@example.com", nil))

		set, err := New(fake, WithIncludeUnlinked(false)).Extract(context.Background(), model.NewRepositoryTarget("owner", "repo"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if set.Len() != 0 {
			t.Errorf("expected empty set, got %v", set.Addresses())
		}
	})
}

func TestExtractFirstSeenWins(t *testing.T) {
	t.Parallel()

	fake := githubtest.New()
	owner := fake.AddUser(github.User{Login: "owner"})
	fake.AddRepository(github.Repository{FullName: "owner/repo"})
	fake.AddCommits("owner/repo", "main",
		githubtest.Commit("a1", "Owner", "shared@example.com", nil),
		githubtest.Commit("a2", "Owner", "SHARED@example.com", &owner),
	)

	set, err := New(fake).Extract(context.Background(), model.NewRepositoryTarget("owner", "repo"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	record, ok := set.Get("shared@example.com")
	if !ok {
		t.Fatal("expected record for shared@example.com")
	}
	if record.Linkage != model.Unlinked {
		t.Errorf("expected the first observed linkage Unlinked, got %v", record.Linkage)
	}
	if set.Len() != 1 {
		t.Errorf("expected 1 record, got %d", set.Len())
	}
}

func TestExtractCommitBudget(t *testing.T) {
	t.Parallel()

	fake := githubtest.New()
	fake.AddUser(github.User{Login: "owner"})
	fake.AddRepository(github.Repository{FullName: "owner/repo"})

	var mainCommits []github.Commit
	for i := range 3 {
		mainCommits = append(mainCommits, githubtest.Commit(fmt.Sprintf("m%d", i), "Dev", fmt.Sprintf("main%d@example.com", i), nil))
	}
	fake.AddCommits("owner/repo", "main", mainCommits...)
	fake.AddCommits("owner/repo", "feature",
		githubtest.Commit("f0", "Dev", "feature0@example.com", nil),
		githubtest.Commit("f1", "Dev", "feature1@example.com", nil),
	)

	set, err := New(fake, WithMaxCommitsPerRepository(4)).Extract(context.Background(), model.NewRepositoryTarget("owner", "repo"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The budget is shared by both branches, so only one feature commit fits.
	if set.Len() != 4 {
		t.Errorf("expected 4 records, got %v", set.Addresses())
	}
	if _, ok := set.Get("feature1@example.com"); ok {
		t.Error("expected feature1@example.com to fall outside the budget")
	}
}

func TestExtractUser(t *testing.T) {
	t.Parallel()

	t.Run("skips forks unless asked", func(t *testing.T) {
		t.Parallel()

		fake := githubtest.New()
		user := fake.AddUser(github.User{Login: "dev"})
		fake.AddRepository(github.Repository{FullName: "dev/own"})
		fake.AddRepository(github.Repository{FullName: "dev/fork", Fork: true})
		fake.AddCommits("dev/own", "main", githubtest.Commit("o1", "Dev", "dev@example.com", &user))
		fake.AddCommits("dev/fork", "main", githubtest.Commit("f1", "Up", "upstream@example.com", nil))

		set, err := New(fake).Extract(context.Background(), model.NewUserTarget("dev"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if set.Len() != 1 || !set.Any(model.LinkedToCurrentUser) {
			t.Errorf("expected only the linked email, got %v", set.Addresses())
		}
		if fake.Calls(githubtest.Key("Branches", "dev/fork")) != 0 {
			t.Error("expected the fork not to be walked")
		}

		set, err = New(fake, WithIncludeForks(true)).Extract(context.Background(), model.NewUserTarget("dev"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if set.Len() != 2 {
			t.Errorf("expected fork emails included, got %v", set.Addresses())
		}
	})

	t.Run("user without repositories yields an empty set", func(t *testing.T) {
		t.Parallel()

		fake := githubtest.New()
		fake.AddUser(github.User{Login: "lonely"})

		set, err := New(fake).Extract(context.Background(), model.NewUserTarget("lonely"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if set.Len() != 0 {
			t.Errorf("expected empty set, got %v", set.Addresses())
		}
	})
}

func TestExtractErrors(t *testing.T) {
	t.Parallel()

	t.Run("propagates unexpected listing errors", func(t *testing.T) {
		t.Parallel()

		fake := githubtest.New()
		fake.AddUser(github.User{Login: "owner"})
		fake.AddRepository(github.Repository{FullName: "owner/repo"})
		fake.AddCommits("owner/repo", "main", githubtest.Commit("a1", "X", "x@example.com", nil))
		fake.FailWith(githubtest.Key("Commits", "owner/repo"), github.NewUpstreamError(http.StatusInternalServerError, "boom"))

		_, err := New(fake).Extract(context.Background(), model.NewRepositoryTarget("owner", "repo"))
		if status, ok := github.StatusOf(err); !ok || status != http.StatusInternalServerError {
			t.Errorf("expected 500 upstream error, got %v", err)
		}
	})

	t.Run("propagates unexpected identity errors", func(t *testing.T) {
		t.Parallel()

		fake := githubtest.New()
		fake.AddUser(github.User{Login: "owner"})
		other := fake.AddUser(github.User{Login: "other"})
		fake.AddRepository(github.Repository{FullName: "owner/repo"})
		fake.AddCommits("owner/repo", "main", githubtest.Commit("a1", "Other", "other@example.com", &other))
		fake.FailWith(githubtest.Key("UserByID", other.ID), github.NewUpstreamError(http.StatusBadGateway, "Bad Gateway"))

		if _, err := New(fake).Extract(context.Background(), model.NewRepositoryTarget("owner", "repo")); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("resolves each linked account once", func(t *testing.T) {
		t.Parallel()

		fake := githubtest.New()
		fake.AddUser(github.User{Login: "owner"})
		other := fake.AddUser(github.User{Login: "other"})
		fake.AddRepository(github.Repository{FullName: "owner/repo"})
		fake.AddCommits("owner/repo", "main",
			githubtest.Commit("a1", "Other", "o1@example.com", &other),
			githubtest.Commit("a2", "Other", "o2@example.com", &other),
			githubtest.Commit("a3", "Other", "o3@example.com", &other),
		)

		if _, err := New(fake).Extract(context.Background(), model.NewRepositoryTarget("owner", "repo")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := fake.Calls(githubtest.Key("UserByID", other.ID)); got != 1 {
			t.Errorf("expected 1 identity lookup, got %d", got)
		}
	})
}
