package heuristic

import (
	"context"
	"fmt"
	"strings"

	"github.com/nao1215/ghbuster/internal/github"
	"github.com/nao1215/ghbuster/internal/model"
)

// Identifiers of the fork detectors.
const (
	IDOnlyForks               = "user.repos_only_forks"
	IDForksFromTakenDownRepos = "user.forks_from_taken_down_repos"
)

// DefaultMaxForksToAnalyze bounds how many forks ForksFromTakenDownRepos
// inspects.
const DefaultMaxForksToAnalyze = 10

// OnlyForks triggers when every repository a user owns is a fork.
type OnlyForks struct {
	descriptor
}

// NewOnlyForks creates the detector.
func NewOnlyForks() *OnlyForks {
	return &OnlyForks{descriptor{
		id:          IDOnlyForks,
		name:        "User has only forks",
		description: "Detects all of a user's repositories are forks. This may be an indication that the user is used solely to make other repositories appear legitimate.",
		kind:        model.TargetUser,
	}}
}

// Evaluate implements Heuristic. A user without repositories passes.
func (h *OnlyForks) Evaluate(ctx context.Context, env *Env, target model.TargetSpec) (model.Result, error) {
	owned := 0
	for repo, err := range env.Client.UserRepositories(ctx, target.Username()) {
		if err != nil {
			return model.Result{}, err
		}
		if !repo.Fork {
			return model.Passed(), nil
		}
		owned++
	}
	if owned == 0 {
		return model.Passed(), nil
	}
	return model.Triggered(fmt.Sprintf("The user %s has only forked repositories.", target.Username())), nil
}

// ForksFromTakenDownRepos triggers when a user owns forks whose parent
// repository no longer resolves.
type ForksFromTakenDownRepos struct {
	descriptor

	// MaxForks bounds how many forks are inspected.
	MaxForks int
}

// NewForksFromTakenDownRepos creates the detector. A maxForks of zero or
// less means DefaultMaxForksToAnalyze.
func NewForksFromTakenDownRepos(maxForks int) *ForksFromTakenDownRepos {
	if maxForks <= 0 {
		maxForks = DefaultMaxForksToAnalyze
	}
	return &ForksFromTakenDownRepos{
		descriptor: descriptor{
			id:          IDForksFromTakenDownRepos,
			name:        "User has forks of taken-down repositories",
			description: "Detects when a user has forks from repositories that have been taken down. This may indicate that the user is being leveraged as part of a campaign to make inauthentic repositories appear legitimate.",
			kind:        model.TargetUser,
		},
		MaxForks: maxForks,
	}
}

// Evaluate implements Heuristic.
//
// A fork that is itself access blocked is logged and ignored.
func (h *ForksFromTakenDownRepos) Evaluate(ctx context.Context, env *Env, target model.TargetSpec) (model.Result, error) {
	login := target.Username()
	var takenDown []string
	analyzed := 0

	for repo, err := range env.Client.UserRepositories(ctx, login) {
		if err != nil {
			return model.Result{}, err
		}
		if !repo.Fork {
			continue
		}
		if analyzed >= h.MaxForks {
			env.logger().Debug("fork budget spent", "user", login, "budget", h.MaxForks)
			break
		}
		analyzed++

		// Listings do not carry the parent, the repository itself does.
		fork, err := env.Client.Repository(ctx, repo.FullName)
		if err != nil {
			if github.IsAccessBlocked(err) {
				env.logger().Warn("forked repository is blocked, ignoring",
					"repository", repo.FullName,
					"user", login,
				)
				continue
			}
			return model.Result{}, err
		}
		if fork.Parent == nil {
			continue
		}

		exists, err := env.Repos.Exists(ctx, fork.Parent.FullName)
		if err != nil {
			return model.Result{}, err
		}
		if !exists {
			takenDown = append(takenDown, fork.Parent.FullName)
		}
	}

	if len(takenDown) == 0 {
		return model.Passed(), nil
	}
	return model.Triggered(fmt.Sprintf("The user %s has forks from taken down repositories: %s.",
		login, strings.Join(takenDown, ", "))), nil
}
