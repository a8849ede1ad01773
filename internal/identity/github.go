package identity

import (
	"context"

	"github.com/nao1215/ghbuster/internal/github"
)

// UserFetcher is the subset of the GitHub client needed to resolve
// accounts by id.
type UserFetcher interface {
	UserByID(ctx context.Context, id int64) (*github.User, error)
}

// RepositoryFetcher is the subset of the GitHub client needed to resolve
// repositories by full name.
type RepositoryFetcher interface {
	Repository(ctx context.Context, fullName string) (*github.Repository, error)
}

// NewUserResolver resolves account ids. Ids survive renames, so a false
// answer means the account itself was deleted or suspended.
func NewUserResolver(client UserFetcher) *Resolver[int64] {
	return NewResolver(func(ctx context.Context, id int64) error {
		_, err := client.UserByID(ctx, id)
		return err
	})
}

// NewRepositoryResolver resolves repositories by "owner/name".
func NewRepositoryResolver(client RepositoryFetcher) *Resolver[string] {
	return NewResolver(func(ctx context.Context, fullName string) error {
		_, err := client.Repository(ctx, fullName)
		return err
	})
}
