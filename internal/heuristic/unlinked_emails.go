package heuristic

import (
	"context"
	"fmt"
	"strings"

	"github.com/nao1215/ghbuster/internal/emails"
	"github.com/nao1215/ghbuster/internal/model"
)

// IDCommitsFromUnlinkedEmails identifies CommitsFromUnlinkedEmails.
const IDCommitsFromUnlinkedEmails = "user.commits_unlinked_emails"

// CommitsFromUnlinkedEmails triggers when none of the emails a user
// commits with are linked to their account.
type CommitsFromUnlinkedEmails struct {
	descriptor
}

// NewCommitsFromUnlinkedEmails creates the detector.
func NewCommitsFromUnlinkedEmails() *CommitsFromUnlinkedEmails {
	return &CommitsFromUnlinkedEmails{descriptor{
		id:          IDCommitsFromUnlinkedEmails,
		name:        "User has only commits from unlinked emails",
		description: "Detects when all of a user's commits are from emails not linked to their GitHub profiles. This may indicate a threat actor leveraging distinct inauthentic accounts.",
		kind:        model.TargetUser,
	}}
}

// Evaluate implements Heuristic. A user without commits passes.
func (h *CommitsFromUnlinkedEmails) Evaluate(ctx context.Context, env *Env, target model.TargetSpec) (model.Result, error) {
	extractor := emails.New(env.Client,
		emails.WithIncludeForks(false),
		emails.WithIncludeUnlinked(true),
		emails.WithIncludeLinkedToOther(false),
		emails.WithResolver(env.Users),
		emails.WithLogger(env.logger()),
	)
	set, err := extractor.Extract(ctx, target)
	if err != nil {
		return model.Result{}, err
	}
	if set.Len() == 0 || set.Any(model.LinkedToCurrentUser) {
		return model.Passed(), nil
	}
	return model.Triggered(fmt.Sprintf("The user %s has only commits from unlinked emails: '%s'.",
		target.Username(), strings.Join(set.Addresses(), ", "))), nil
}
