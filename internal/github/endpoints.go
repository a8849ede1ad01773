package github

import (
	"context"
	"fmt"
	"iter"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"
)

// AuthenticatedUser returns the account the token belongs to.
func (c *Client) AuthenticatedUser(ctx context.Context) (*User, error) {
	var u User
	if _, err := c.getJSON(ctx, "/user", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// User returns the full profile of login.
func (c *Client) User(ctx context.Context, login string) (*User, error) {
	var u User
	if _, err := c.getJSON(ctx, "/users/"+url.PathEscape(login), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UserByID returns the profile of the account with the given numeric id.
// Ids survive renames, which makes this the lookup for "does this account
// still exist".
func (c *Client) UserByID(ctx context.Context, id int64) (*User, error) {
	var u User
	if _, err := c.getJSON(ctx, "/user/"+strconv.FormatInt(id, 10), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Repository returns the repository "owner/name".
func (c *Client) Repository(ctx context.Context, fullName string) (*Repository, error) {
	var r Repository
	if _, err := c.getJSON(ctx, "/repos/"+fullName, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// UserRepositories lists the repositories owned by login.
func (c *Client) UserRepositories(ctx context.Context, login string) iter.Seq2[Repository, error] {
	q := url.Values{"type": {"owner"}}
	return paginate[Repository](ctx, c, "/users/"+url.PathEscape(login)+"/repos", q)
}

// Branches lists the branches of a repository.
func (c *Client) Branches(ctx context.Context, fullName string) iter.Seq2[Branch, error] {
	return paginate[Branch](ctx, c, "/repos/"+fullName+"/branches", nil)
}

// Commits lists commits reachable from sha, newest first. An empty sha
// means the default branch.
func (c *Client) Commits(ctx context.Context, fullName, sha string) iter.Seq2[Commit, error] {
	var q url.Values
	if sha != "" {
		q = url.Values{"sha": {sha}}
	}
	return paginate[Commit](ctx, c, "/repos/"+fullName+"/commits", q)
}

// Stargazers lists the accounts that starred a repository. Entries only
// carry ID and Login.
func (c *Client) Stargazers(ctx context.Context, fullName string) iter.Seq2[User, error] {
	return paginate[User](ctx, c, "/repos/"+fullName+"/stargazers", nil)
}

// StarredCount returns how many repositories login has starred.
func (c *Client) StarredCount(ctx context.Context, login string) (int, error) {
	return c.count(ctx, "/users/"+url.PathEscape(login)+"/starred", nil)
}

// SearchIssuesCount returns total_count for an issue search query such as
// "type:pr author:octocat created:>2025-01-01".
func (c *Client) SearchIssuesCount(ctx context.Context, query string) (int, error) {
	q := url.Values{"q": {query}, "per_page": {"1"}}
	body, _, err := c.getBody(ctx, "/search/issues", q)
	if err != nil {
		return 0, err
	}
	total := gjson.GetBytes(body, "total_count")
	if !total.Exists() {
		return 0, fmt.Errorf("github: search %q: response has no total_count", query)
	}
	return int(total.Int()), nil
}
