package heuristic

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/nao1215/ghbuster/internal/github"
	"github.com/nao1215/ghbuster/internal/model"
)

// IDStarredBySuspiciousUsers identifies StarredBySuspiciousUsers.
const IDStarredBySuspiciousUsers = "repo.starred_by_suspicious_users"

// Bounds and threshold of StarredBySuspiciousUsers.
const (
	SuspiciousStarsThresholdPercent = 80
	SuspiciousStarsMaxStargazers    = 101

	// SuspiciousStarsFollowerCap is the follower count at or below which a
	// stargazer is also checked for forks of taken-down repositories.
	SuspiciousStarsFollowerCap = 100

	// SuspiciousStarsMaxForks bounds the fork check of each stargazer.
	SuspiciousStarsMaxForks = 20
)

// StarredBySuspiciousUsers triggers when most stargazers of a repository
// look inauthentic themselves.
//
// Each stargazer is sub-scanned: the legitimacy gate runs first and, when
// it does not trigger, a handful of cheap user detectors run. A stargazer
// is suspicious when any of them triggers.
type StarredBySuspiciousUsers struct {
	descriptor
}

// NewStarredBySuspiciousUsers creates the detector.
func NewStarredBySuspiciousUsers() *StarredBySuspiciousUsers {
	return &StarredBySuspiciousUsers{descriptor{
		id:   IDStarredBySuspiciousUsers,
		name: "Repository starred by suspicious users",
		description: fmt.Sprintf("Detects when a repository has over %d %% of stars from suspicious users matching heuristics they may be inauthentic.",
			SuspiciousStarsThresholdPercent),
		kind: model.TargetRepository,
	}}
}

// Evaluate implements Heuristic. Repositories without stars pass. Above
// SuspiciousStarsMaxStargazers the detector opts out and returns Skipped.
func (h *StarredBySuspiciousUsers) Evaluate(ctx context.Context, env *Env, target model.TargetSpec) (model.Result, error) {
	fullName, err := target.FullName()
	if err != nil {
		return model.Result{}, err
	}
	repo, err := env.Client.Repository(ctx, fullName)
	if err != nil {
		return model.Result{}, err
	}

	switch {
	case repo.StargazersCount == 0:
		return model.Passed(), nil
	case repo.StargazersCount > SuspiciousStarsMaxStargazers:
		env.logger().Info("too many stargazers to analyze", "repository", fullName, "stargazers", repo.StargazersCount)
		return model.Skipped(fmt.Sprintf("Repository %s has %d stargazers, more than the %d this heuristic analyzes.",
			fullName, repo.StargazersCount, SuspiciousStarsMaxStargazers)), nil
	}

	var requests []SubScanRequest
	gate := NewLooksLegit()
	for stargazer, err := range env.Client.Stargazers(ctx, fullName) {
		if err != nil {
			return model.Result{}, err
		}
		if len(requests) >= SuspiciousStarsMaxStargazers {
			break
		}
		requests = append(requests, SubScanRequest{
			Target: model.NewUserTarget(stargazer.Login),
			Gate:   gate,
			Select: StargazerHeuristics,
		})
	}
	if len(requests) == 0 {
		return model.Passed(), nil
	}

	env.logger().Info("analyzing stargazers", "repository", fullName, "stargazers", len(requests))

	results, err := env.Sub.SubScan(ctx, requests)
	if err != nil {
		return model.Result{}, err
	}

	var suspicious []string
	for _, res := range results {
		if res.Suspicious() {
			suspicious = append(suspicious, res.Target.Username())
		}
	}

	ratio := 100 * float64(len(suspicious)) / float64(len(requests))
	if ratio < SuspiciousStarsThresholdPercent {
		return model.Passed(), nil
	}
	return model.Triggered(fmt.Sprintf("The repository has %d stargazers (%d %%) that triggered suspicious user heuristics: %s.",
		len(suspicious), int(math.Round(ratio)), strings.Join(suspicious, ", "))), nil
}

// StargazerHeuristics picks the detectors run against one stargazer. The
// fork check is the most expensive, so it only runs for accounts with a
// modest following.
func StargazerHeuristics(profile *github.User) []Heuristic {
	selected := []Heuristic{
		NewJustJoined(),
		NewMissingCommonFields(),
		NewLowCommunityActivity(),
		NewOnlyForks(),
	}
	if profile.Followers <= SuspiciousStarsFollowerCap {
		selected = append(selected, NewForksFromTakenDownRepos(SuspiciousStarsMaxForks))
	}
	return selected
}
