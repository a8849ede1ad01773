package heuristic

import (
	"context"
	"fmt"
	"strings"

	"github.com/nao1215/ghbuster/internal/model"
	"golang.org/x/text/cases"
)

// IDRepoCommitsSuspiciousEmails identifies RepoCommitsSuspiciousEmails.
const IDRepoCommitsSuspiciousEmails = "repo.commits_suspicious_unlinked_emails"

// RepoCommitsMaxCommits bounds how many commits of the default branch are
// sampled.
const RepoCommitsMaxCommits = 100

// RepoCommitsSuspiciousEmails triggers when every sampled commit of a
// repository comes from a suspicious unlinked email.
//
// A commit without a linked account is suspicious only when its git
// author name matches neither the owner's login nor display name, since
// an unlinked work email is a common misconfiguration. A commit linked to
// an account that no longer resolves is always suspicious.
type RepoCommitsSuspiciousEmails struct {
	descriptor
}

// NewRepoCommitsSuspiciousEmails creates the detector.
func NewRepoCommitsSuspiciousEmails() *RepoCommitsSuspiciousEmails {
	return &RepoCommitsSuspiciousEmails{descriptor{
		id:          IDRepoCommitsSuspiciousEmails,
		name:        "Repository commits only from suspicious unlinked emails",
		description: "Detects when a repository has commits with unlinked emails that also don't match the owner's username or full name.",
		kind:        model.TargetRepository,
	}}
}

// Evaluate implements Heuristic. A repository without commits passes.
func (h *RepoCommitsSuspiciousEmails) Evaluate(ctx context.Context, env *Env, target model.TargetSpec) (model.Result, error) {
	fullName, err := target.FullName()
	if err != nil {
		return model.Result{}, err
	}
	owner, err := env.Client.User(ctx, target.Owner())
	if err != nil {
		return model.Result{}, err
	}

	fold := cases.Fold()
	knownNames := []string{fold.String(owner.Login)}
	if owner.Name != "" {
		knownNames = append(knownNames, fold.String(owner.Name))
	}

	processed, suspicious := 0, 0
	unlinked := model.NewEmailSet()

	for commit, err := range env.Client.Commits(ctx, fullName, "") {
		if err != nil {
			return model.Result{}, err
		}
		if processed >= RepoCommitsMaxCommits {
			env.logger().Debug("commit budget spent", "repository", fullName, "budget", RepoCommitsMaxCommits)
			break
		}
		processed++

		author := commit.Commit.Author
		if commit.Author == nil {
			nameMatches := false
			authorName := fold.String(author.Name)
			for _, n := range knownNames {
				if authorName == n {
					nameMatches = true
					break
				}
			}
			if !nameMatches {
				suspicious++
				unlinked.Add(model.EmailRecord{Address: author.Email, Linkage: model.Unlinked})
			}
			continue
		}

		exists, err := env.Users.Exists(ctx, commit.Author.ID)
		if err != nil {
			return model.Result{}, err
		}
		if !exists {
			suspicious++
			unlinked.Add(model.EmailRecord{Address: author.Email, Linkage: model.Unlinked})
		}
	}

	if processed == 0 || suspicious != processed {
		return model.Passed(), nil
	}
	return model.Triggered(fmt.Sprintf("The repository only has commits from unlinked emails (%s).",
		strings.Join(unlinked.Addresses(), ", "))), nil
}
