package heuristic

import (
	"context"
	"fmt"
	"time"

	"github.com/nao1215/ghbuster/internal/github"
	"github.com/nao1215/ghbuster/internal/model"
)

// IDStargazersJoinedSameDay identifies StargazersJoinedSameDay.
const IDStargazersJoinedSameDay = "repo.stargazers_joined_same_day"

// Bounds and threshold of StargazersJoinedSameDay.
const (
	SameDayMinStargazers    = 2
	SameDayMaxStargazers    = 100
	SameDayThresholdPercent = 50
)

// StargazersJoinedSameDay triggers when a large share of a repository's
// stargazers created their account on the same UTC day.
type StargazersJoinedSameDay struct {
	descriptor
}

// NewStargazersJoinedSameDay creates the detector.
func NewStargazersJoinedSameDay() *StargazersJoinedSameDay {
	return &StargazersJoinedSameDay{descriptor{
		id:          IDStargazersJoinedSameDay,
		name:        "Repository has stargazers who joined the same day",
		description: "Detects when a repository has a large proportion of its stargazers who joined GitHub on the same day, which may indicate a coordinated effort to boost the repository's popularity.",
		kind:        model.TargetRepository,
	}}
}

// Evaluate implements Heuristic.
//
// Repositories with fewer than SameDayMinStargazers pass. Above
// SameDayMaxStargazers the detector opts out and returns Skipped.
func (h *StargazersJoinedSameDay) Evaluate(ctx context.Context, env *Env, target model.TargetSpec) (model.Result, error) {
	fullName, err := target.FullName()
	if err != nil {
		return model.Result{}, err
	}
	repo, err := env.Client.Repository(ctx, fullName)
	if err != nil {
		return model.Result{}, err
	}

	switch {
	case repo.StargazersCount < SameDayMinStargazers:
		env.logger().Debug("too few stargazers to analyze", "repository", fullName, "stargazers", repo.StargazersCount)
		return model.Passed(), nil
	case repo.StargazersCount > SameDayMaxStargazers:
		return model.Skipped(fmt.Sprintf("Repository %s has %d stargazers, more than the %d this heuristic analyzes.",
			fullName, repo.StargazersCount, SameDayMaxStargazers)), nil
	}

	env.logger().Info("analyzing stargazer join dates", "repository", fullName, "stargazers", repo.StargazersCount)

	counts := make(map[string]int)
	analyzed := 0
	for stargazer, err := range env.Client.Stargazers(ctx, fullName) {
		if err != nil {
			return model.Result{}, err
		}
		if analyzed >= SameDayMaxStargazers {
			break
		}
		profile, err := env.Client.User(ctx, stargazer.Login)
		if err != nil {
			if github.IsGone(err) {
				env.logger().Debug("stargazer no longer resolves", "user", stargazer.Login)
				continue
			}
			return model.Result{}, err
		}
		if profile.CreatedAt == nil {
			continue
		}
		analyzed++
		counts[profile.CreatedAt.UTC().Format(time.DateOnly)]++
	}

	if analyzed < SameDayMinStargazers {
		return model.Passed(), nil
	}

	bestDay, best := "", 0
	for d, n := range counts {
		if n > best || (n == best && d < bestDay) {
			bestDay, best = d, n
		}
	}

	percent := 100 * float64(best) / float64(analyzed)
	if percent < SameDayThresholdPercent {
		return model.Passed(), nil
	}
	return model.Triggered(fmt.Sprintf("Repository %s has %d stargazers (%.0f %%) who joined on the same day, %s.",
		fullName, best, percent, bestDay)), nil
}
