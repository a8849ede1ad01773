package emails

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"github.com/nao1215/ghbuster/internal/github"
	"github.com/nao1215/ghbuster/internal/identity"
	"github.com/nao1215/ghbuster/internal/model"
)

// DefaultMaxCommitsPerRepository is the per-repository commit budget.
const DefaultMaxCommitsPerRepository = 100

// Client is the subset of the GitHub API the extractor reads.
type Client interface {
	User(ctx context.Context, login string) (*github.User, error)
	UserByID(ctx context.Context, id int64) (*github.User, error)
	UserRepositories(ctx context.Context, login string) iter.Seq2[github.Repository, error]
	Branches(ctx context.Context, fullName string) iter.Seq2[github.Branch, error]
	Commits(ctx context.Context, fullName, sha string) iter.Seq2[github.Commit, error]
}

// Extractor walks commit histories and collects author emails.
type Extractor struct {
	client Client
	users  *identity.Resolver[int64]
	logger *slog.Logger

	includeForks         bool
	includeLinkedToOther bool
	includeUnlinked      bool
	maxCommits           int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithIncludeForks also walks forked repositories of a user target.
func WithIncludeForks(include bool) Option {
	return func(e *Extractor) {
		e.includeForks = include
	}
}

// WithIncludeLinkedToOther keeps emails linked to accounts other than the
// target.
func WithIncludeLinkedToOther(include bool) Option {
	return func(e *Extractor) {
		e.includeLinkedToOther = include
	}
}

// WithIncludeUnlinked keeps emails with no live linked account.
func WithIncludeUnlinked(include bool) Option {
	return func(e *Extractor) {
		e.includeUnlinked = include
	}
}

// WithMaxCommitsPerRepository sets the commit budget of each repository.
func WithMaxCommitsPerRepository(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxCommits = n
		}
	}
}

// WithResolver shares an account resolver, typically the one of the
// current scan.
func WithResolver(users *identity.Resolver[int64]) Option {
	return func(e *Extractor) {
		e.users = users
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// New creates an Extractor. By default forks are skipped, emails linked to
// other accounts are dropped, unlinked emails are kept and each repository
// is sampled up to DefaultMaxCommitsPerRepository commits.
func New(client Client, opts ...Option) *Extractor {
	e := &Extractor{
		client:          client,
		includeUnlinked: true,
		maxCommits:      DefaultMaxCommitsPerRepository,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.users == nil {
		e.users = identity.NewUserResolver(client)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Extract returns the emails found in the target's commits. A target
// without commits yields an empty set.
func (e *Extractor) Extract(ctx context.Context, target model.TargetSpec) (*model.EmailSet, error) {
	owner, err := e.client.User(ctx, target.Owner())
	if err != nil {
		return nil, fmt.Errorf("emails: fetch %s: %w", target.Owner(), err)
	}

	result := model.NewEmailSet()

	if target.IsRepository() {
		fullName, err := target.FullName()
		if err != nil {
			return nil, err
		}
		set, err := e.fromRepository(ctx, fullName, owner.ID)
		if err != nil {
			return nil, err
		}
		result.Merge(set)
		return result, nil
	}

	for repo, err := range e.client.UserRepositories(ctx, owner.Login) {
		if err != nil {
			return nil, fmt.Errorf("emails: list repositories of %s: %w", owner.Login, err)
		}
		if repo.Fork && !e.includeForks {
			e.logger.Debug("skipping forked repository", "repository", repo.FullName)
			continue
		}
		set, err := e.fromRepository(ctx, repo.FullName, owner.ID)
		if err != nil {
			return nil, err
		}
		result.Merge(set)
	}
	return result, nil
}

// fromRepository collects emails from the branches of one repository until
// its commit budget is spent.
func (e *Extractor) fromRepository(ctx context.Context, fullName string, targetID int64) (*model.EmailSet, error) {
	e.logger.Debug("extracting emails", "repository", fullName)

	set := model.NewEmailSet()
	processed := 0

	for branch, err := range e.client.Branches(ctx, fullName) {
		if err != nil {
			return nil, fmt.Errorf("emails: list branches of %s: %w", fullName, err)
		}
		if processed >= e.maxCommits {
			break
		}
		for commit, err := range e.client.Commits(ctx, fullName, branch.Name) {
			if err != nil {
				return nil, fmt.Errorf("emails: list commits of %s@%s: %w", fullName, branch.Name, err)
			}
			if processed >= e.maxCommits {
				e.logger.Debug("commit budget spent",
					"repository", fullName,
					"budget", e.maxCommits,
				)
				return set, nil
			}
			processed++

			state, err := e.classify(ctx, commit, targetID)
			if err != nil {
				return nil, fmt.Errorf("emails: classify commit %s of %s: %w", commit.ShortSHA(), fullName, err)
			}
			if !e.keep(state) {
				e.logger.Debug("skipping commit",
					"repository", fullName,
					"commit", commit.ShortSHA(),
					"linkage", state.String(),
				)
				continue
			}
			set.Add(model.EmailRecord{Address: commit.Commit.Author.Email, Linkage: state})
		}
	}
	return set, nil
}

// classify decides how the commit author email is linked. Ids are compared
// rather than logins so renamed accounts still match.
func (e *Extractor) classify(ctx context.Context, commit github.Commit, targetID int64) (model.LinkageState, error) {
	if commit.Author == nil {
		return model.Unlinked, nil
	}
	exists, err := e.users.Exists(ctx, commit.Author.ID)
	if err != nil {
		return model.Unlinked, err
	}
	switch {
	case !exists:
		return model.Unlinked, nil
	case commit.Author.ID == targetID:
		return model.LinkedToCurrentUser, nil
	default:
		return model.LinkedToOtherUser, nil
	}
}

func (e *Extractor) keep(state model.LinkageState) bool {
	switch state {
	case model.Unlinked:
		return e.includeUnlinked
	case model.LinkedToOtherUser:
		return e.includeLinkedToOther
	default:
		return true
	}
}
