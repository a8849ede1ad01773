package heuristic

import (
	"net/http"
	"strings"
	"testing"

	"github.com/nao1215/ghbuster/internal/github"
	"github.com/nao1215/ghbuster/internal/githubtest"
	"github.com/nao1215/ghbuster/internal/model"
)

func TestLowCommunityActivity(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		user      github.User
		stars     int
		issues    int
		prs       int
		triggered bool
	}{
		{"dormant account", github.User{Followers: 0, Following: 1}, 1, 1, 0, true},
		{"starred a lot", github.User{}, 2, 0, 0, false},
		{"follows people", github.User{Following: 2}, 0, 0, 0, false},
		{"has followers", github.User{Followers: 2}, 0, 0, 0, false},
		{"opens issues and pull requests", github.User{}, 0, 1, 1, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fake := githubtest.New()
			u := tc.user
			u.Login = "quiet"
			fake.AddUser(u)
			fake.SetStarredCount("quiet", tc.stars)
			fake.SetSearch(func(q string) (int, error) {
				if strings.HasPrefix(q, "type:pr ") {
					return tc.prs, nil
				}
				return tc.issues, nil
			})

			res := evaluate(t, NewLowCommunityActivity(), newTestEnv(fake), model.NewUserTarget("quiet"))
			if res.IsTriggered() != tc.triggered {
				t.Errorf("expected triggered=%v, got %v", tc.triggered, res.Outcome)
			}
			if tc.triggered && !strings.HasPrefix(res.Detail, "User has low community activity: ") {
				t.Errorf("unexpected evidence %q", res.Detail)
			}
		})
	}

	t.Run("searches the last six months by author", func(t *testing.T) {
		t.Parallel()

		fake := githubtest.New()
		fake.AddUser(github.User{Login: "quiet"})
		var queries []string
		fake.SetSearch(func(q string) (int, error) {
			queries = append(queries, q)
			return 0, nil
		})

		evaluate(t, NewLowCommunityActivity(), newTestEnv(fake), model.NewUserTarget("quiet"))

		expected := []string{
			"type:issue author:quiet created:>2025-02-12",
			"type:pr author:quiet created:>2025-02-12",
		}
		if strings.Join(queries, "|") != strings.Join(expected, "|") {
			t.Errorf("expected queries %v, got %v", expected, queries)
		}
	})

	t.Run("private activity does not count against the user", func(t *testing.T) {
		t.Parallel()

		fake := githubtest.New()
		fake.AddUser(github.User{Login: "private"})
		fake.SetSearch(func(string) (int, error) {
			return 0, github.NewUpstreamError(http.StatusUnprocessableEntity, "Validation Failed")
		})

		res := evaluate(t, NewLowCommunityActivity(), newTestEnv(fake), model.NewUserTarget("private"))
		if res.Outcome != model.OutcomePassed {
			t.Errorf("expected passed, got %v", res.Outcome)
		}
	})

	t.Run("other search failures propagate", func(t *testing.T) {
		t.Parallel()

		fake := githubtest.New()
		fake.AddUser(github.User{Login: "quiet"})
		fake.SetSearch(func(string) (int, error) {
			return 0, github.NewUpstreamError(http.StatusServiceUnavailable, "Service Unavailable")
		})

		_, err := NewLowCommunityActivity().Evaluate(t.Context(), newTestEnv(fake), model.NewUserTarget("quiet"))
		if err == nil {
			t.Error("expected error")
		}
	})
}
