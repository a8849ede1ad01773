package heuristic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nao1215/ghbuster/internal/github"
	"github.com/nao1215/ghbuster/internal/model"
)

// IDLowCommunityActivity identifies LowCommunityActivity.
const IDLowCommunityActivity = "user.low_community_activity"

// Thresholds of LowCommunityActivity. Each count must be at or below its
// threshold for the detector to trigger.
const (
	LowActivityStarsThreshold     = 1
	LowActivityFollowingThreshold = 1
	LowActivityFollowersThreshold = 1
	LowActivityIssuesThreshold    = 1

	// LowActivityWindowDays is roughly six months.
	LowActivityWindowDays = 183
)

// LowCommunityActivity triggers for accounts that star, follow, are
// followed and open issues or pull requests barely at all.
type LowCommunityActivity struct {
	descriptor
}

// NewLowCommunityActivity creates the detector.
func NewLowCommunityActivity() *LowCommunityActivity {
	return &LowCommunityActivity{descriptor{
		id:          IDLowCommunityActivity,
		name:        "User with low community activity",
		description: "Detects when a user has very low community activity. This may indicate that the user is inauthentic.",
		kind:        model.TargetUser,
	}}
}

// Evaluate implements Heuristic.
//
// Users who keep their activity private make the search API answer 422.
// Their issue and pull request count is then unknown and the detector
// does not hold it against them, so it passes.
func (h *LowCommunityActivity) Evaluate(ctx context.Context, env *Env, target model.TargetSpec) (model.Result, error) {
	login := target.Username()
	user, err := env.Client.User(ctx, login)
	if err != nil {
		return model.Result{}, err
	}
	stars, err := env.Client.StarredCount(ctx, login)
	if err != nil {
		return model.Result{}, err
	}

	fewStars := stars <= LowActivityStarsThreshold
	fewFollowing := user.Following <= LowActivityFollowingThreshold
	fewFollowers := user.Followers <= LowActivityFollowersThreshold

	since := env.now().Add(-LowActivityWindowDays * day).UTC().Format(time.DateOnly)
	contributions, known, err := h.contributions(ctx, env, login, since)
	if err != nil {
		return model.Result{}, err
	}
	fewContributions := known && contributions <= LowActivityIssuesThreshold

	env.logger().Debug("community activity",
		"user", login,
		"stars", stars,
		"following", user.Following,
		"followers", user.Followers,
		"issues_and_prs", contributions,
		"activity_visible", known,
	)

	if !fewStars || !fewFollowing || !fewFollowers || !fewContributions {
		return model.Passed(), nil
	}

	reasons := []string{
		fmt.Sprintf("%d stars (threshold: %d)", stars, LowActivityStarsThreshold),
		fmt.Sprintf("%d following (threshold: %d)", user.Following, LowActivityFollowingThreshold),
		fmt.Sprintf("%d followers (threshold: %d)", user.Followers, LowActivityFollowersThreshold),
		fmt.Sprintf("%d issues/PRs in the last %d days (threshold: %d)", contributions, LowActivityWindowDays, LowActivityIssuesThreshold),
	}
	return model.Triggered("User has low community activity: " + strings.Join(reasons, ", ")), nil
}

// contributions counts issues and pull requests opened by login since the
// given date. known is false when the user's activity is private.
func (h *LowCommunityActivity) contributions(ctx context.Context, env *Env, login, since string) (total int, known bool, err error) {
	for _, kind := range []string{"issue", "pr"} {
		n, err := env.Client.SearchIssuesCount(ctx, fmt.Sprintf("type:%s author:%s created:>%s", kind, login, since))
		if err != nil {
			if github.IsValidationFailed(err) {
				env.logger().Info("user activity is private, unable to count issues and pull requests", "user", login)
				return 0, false, nil
			}
			return 0, false, err
		}
		total += n
	}
	return total, true, nil
}
