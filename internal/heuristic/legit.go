package heuristic

import (
	"context"
	"fmt"

	"github.com/nao1215/ghbuster/internal/model"
)

// IDLooksLegit identifies LooksLegit.
const IDLooksLegit = "user.looks_legit"

// LooksLegit is the legitimacy gate. It triggers when an account shows
// every marker of a normal, active user, and is Skipped otherwise. It is
// never reported as a regular result and is not part of All.
type LooksLegit struct {
	descriptor
}

// NewLooksLegit creates the gate.
func NewLooksLegit() *LooksLegit {
	return &LooksLegit{descriptor{
		id:          IDLooksLegit,
		name:        "User is likely legitimate",
		description: "The user is likely legitimate.",
		kind:        model.TargetUser,
	}}
}

// Evaluate implements Heuristic.
func (h *LooksLegit) Evaluate(ctx context.Context, env *Env, target model.TargetSpec) (model.Result, error) {
	user, err := env.Client.User(ctx, target.Username())
	if err != nil {
		return model.Result{}, err
	}
	if user.CreatedAt == nil {
		return model.Skipped("The user has no creation date."), nil
	}

	joinedDaysAgo := daysSince(*user.CreatedAt, env.now())
	legit := user.PublicRepos > 10 &&
		joinedDaysAgo > 365 &&
		user.Followers > 10 &&
		user.Following > 10 &&
		user.Name != "" &&
		(user.Company != "" || user.Location != "" || user.Bio != "")
	if !legit {
		return model.Skipped(""), nil
	}

	return model.Triggered(fmt.Sprintf("\n"+
		"- The user has %d public repos\n"+
		"- The user has %d followers, and is following %d users.\n"+
		"- The user joined %d days ago.\n"+
		"- The user has a name set on their profile (%s)\n"+
		"- The user has the usual fields set on their profile.\n",
		user.PublicRepos, user.Followers, user.Following, joinedDaysAgo, user.Name)), nil
}
