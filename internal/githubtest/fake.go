package githubtest

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nao1215/ghbuster/internal/github"
)

// Fake is an in-memory stand-in for *github.Client. Zero value is not
// usable; create one with New.
//
// Lookups of unknown users and repositories fail with a 404 UpstreamError,
// the same way the real API does.
type Fake struct {
	mu sync.Mutex

	authenticated *github.User
	users         map[string]*github.User
	usersByID     map[int64]*github.User
	repos         map[string]*github.Repository
	owned         map[string][]string
	branches      map[string][]github.Branch
	commits       map[string]map[string][]github.Commit
	stargazers    map[string][]string
	starred       map[string]int
	search        func(query string) (int, error)
	errs          map[string]error
	calls         map[string]int
	nextID        int64
}

// New creates an empty Fake.
func New() *Fake {
	return &Fake{
		users:      make(map[string]*github.User),
		usersByID:  make(map[int64]*github.User),
		repos:      make(map[string]*github.Repository),
		owned:      make(map[string][]string),
		branches:   make(map[string][]github.Branch),
		commits:    make(map[string]map[string][]github.Commit),
		stargazers: make(map[string][]string),
		starred:    make(map[string]int),
		errs:       make(map[string]error),
		calls:      make(map[string]int),
		nextID:     1000,
	}
}

// Key builds the identifier used by FailWith and Calls, such as
// Key("User", "octocat") or Key("UserByID", "42").
func Key(method string, arg any) string {
	return fmt.Sprintf("%s:%v", method, arg)
}

// NotFound returns the error GitHub answers for a missing resource.
func NotFound() error {
	return github.NewUpstreamError(http.StatusNotFound, "Not Found")
}

// AccessBlocked returns the error GitHub answers for a disabled resource.
func AccessBlocked() error {
	return github.NewUpstreamError(http.StatusForbidden, "Repository access blocked")
}

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

// DaysAgo returns now shifted back by n days.
func DaysAgo(now time.Time, n int) *time.Time {
	t := now.Add(-time.Duration(n) * 24 * time.Hour)
	return &t
}

// SetAuthenticated sets the account AuthenticatedUser returns. Without one
// AuthenticatedUser fails with 401.
func (f *Fake) SetAuthenticated(u github.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authenticated = &u
}

// AddUser registers an account. A zero ID is replaced by a fresh one.
func (f *Fake) AddUser(u github.User) github.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == 0 {
		f.nextID++
		u.ID = f.nextID
	}
	if u.Type == "" {
		u.Type = "User"
	}
	f.users[strings.ToLower(u.Login)] = &u
	f.usersByID[u.ID] = &u
	return u
}

// RemoveUser deletes an account, as a takedown would. Commits keep
// pointing at it.
func (f *Fake) RemoveUser(login string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[strings.ToLower(login)]
	if !ok {
		return
	}
	delete(f.users, strings.ToLower(login))
	delete(f.usersByID, u.ID)
}

// AddRepository registers a repository owned by r.Owner.Login. FullName
// and DefaultBranch are derived when empty.
func (f *Fake) AddRepository(r github.Repository) github.Repository {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.FullName == "" {
		r.FullName = r.Owner.Login + "/" + r.Name
	}
	if r.Name == "" {
		_, r.Name, _ = strings.Cut(r.FullName, "/")
	}
	if r.Owner.Login == "" {
		r.Owner.Login, _, _ = strings.Cut(r.FullName, "/")
	}
	if owner, ok := f.users[strings.ToLower(r.Owner.Login)]; ok {
		r.Owner = github.User{ID: owner.ID, Login: owner.Login, Type: owner.Type}
	}
	if r.DefaultBranch == "" {
		r.DefaultBranch = "main"
	}
	if r.ID == 0 {
		f.nextID++
		r.ID = f.nextID
	}
	key := strings.ToLower(r.FullName)
	if _, exists := f.repos[key]; !exists {
		owner := strings.ToLower(r.Owner.Login)
		f.owned[owner] = append(f.owned[owner], key)
	}
	f.repos[key] = &r
	return r
}

// RemoveRepository deletes a repository, as a takedown would. Forks of it
// keep their Parent.
func (f *Fake) RemoveRepository(fullName string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.ToLower(fullName)
	delete(f.repos, key)
	for owner, names := range f.owned {
		kept := names[:0]
		for _, n := range names {
			if n != key {
				kept = append(kept, n)
			}
		}
		f.owned[owner] = kept
	}
}

// AddCommits appends commits to a branch, creating the branch if needed.
func (f *Fake) AddCommits(fullName, branch string, commits ...github.Commit) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.ToLower(fullName)
	if f.commits[key] == nil {
		f.commits[key] = make(map[string][]github.Commit)
	}
	if _, ok := f.commits[key][branch]; !ok {
		b := github.Branch{Name: branch}
		if len(commits) > 0 {
			b.Commit.SHA = commits[0].SHA
		}
		f.branches[key] = append(f.branches[key], b)
	}
	f.commits[key][branch] = append(f.commits[key][branch], commits...)
}

// SetStargazers sets who starred a repository, in listing order.
func (f *Fake) SetStargazers(fullName string, logins ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stargazers[strings.ToLower(fullName)] = logins
	if r, ok := f.repos[strings.ToLower(fullName)]; ok {
		r.StargazersCount = len(logins)
	}
}

// SetStarredCount sets how many repositories login starred.
func (f *Fake) SetStarredCount(login string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starred[strings.ToLower(login)] = n
}

// SetSearch installs the answer function for SearchIssuesCount. Without
// one every search counts zero.
func (f *Fake) SetSearch(fn func(query string) (int, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.search = fn
}

// FailWith makes the call identified by key return err.
func (f *Fake) FailWith(key string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[key] = err
}

// Calls returns how many times the call identified by key was made.
func (f *Fake) Calls(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

// record counts the call and returns its injected error, if any.
// Callers hold f.mu.
func (f *Fake) record(method string, arg any) error {
	key := Key(method, arg)
	f.calls[key]++
	return f.errs[key]
}

// Commit builds a commit authored by name <email>. A nil author means the
// email is not linked to any account.
func Commit(sha, name, email string, author *github.User) github.Commit {
	var c github.Commit
	c.SHA = sha
	c.Commit.Author = github.GitIdentity{Name: name, Email: email}
	if author != nil {
		c.Author = &github.User{ID: author.ID, Login: author.Login, Type: author.Type}
	}
	return c
}

// AuthenticatedUser implements the client interface.
func (f *Fake) AuthenticatedUser(context.Context) (*github.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("AuthenticatedUser", ""); err != nil {
		return nil, err
	}
	if f.authenticated == nil {
		return nil, github.NewUpstreamError(http.StatusUnauthorized, "Bad credentials")
	}
	u := *f.authenticated
	return &u, nil
}

// User implements the client interface.
func (f *Fake) User(ctx context.Context, login string) (*github.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("User", login); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u, ok := f.users[strings.ToLower(login)]
	if !ok {
		return nil, NotFound()
	}
	cp := *u
	return &cp, nil
}

// UserByID implements the client interface.
func (f *Fake) UserByID(_ context.Context, id int64) (*github.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UserByID", id); err != nil {
		return nil, err
	}
	u, ok := f.usersByID[id]
	if !ok {
		return nil, NotFound()
	}
	cp := *u
	return &cp, nil
}

// Repository implements the client interface.
func (f *Fake) Repository(_ context.Context, fullName string) (*github.Repository, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("Repository", fullName); err != nil {
		return nil, err
	}
	r, ok := f.repos[strings.ToLower(fullName)]
	if !ok {
		return nil, NotFound()
	}
	cp := *r
	return &cp, nil
}

// UserRepositories implements the client interface.
func (f *Fake) UserRepositories(_ context.Context, login string) iter.Seq2[github.Repository, error] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UserRepositories", login); err != nil {
		return fail[github.Repository](err)
	}
	var repos []github.Repository
	for _, key := range f.owned[strings.ToLower(login)] {
		if r, ok := f.repos[key]; ok {
			cp := *r
			cp.Parent = nil
			repos = append(repos, cp)
		}
	}
	return each(repos)
}

// Branches implements the client interface.
func (f *Fake) Branches(_ context.Context, fullName string) iter.Seq2[github.Branch, error] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("Branches", fullName); err != nil {
		return fail[github.Branch](err)
	}
	return each(append([]github.Branch(nil), f.branches[strings.ToLower(fullName)]...))
}

// Commits implements the client interface. An empty sha lists the default
// branch.
func (f *Fake) Commits(_ context.Context, fullName, sha string) iter.Seq2[github.Commit, error] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("Commits", fullName); err != nil {
		return fail[github.Commit](err)
	}
	key := strings.ToLower(fullName)
	if sha == "" {
		if r, ok := f.repos[key]; ok {
			sha = r.DefaultBranch
		}
	}
	return each(append([]github.Commit(nil), f.commits[key][sha]...))
}

// Stargazers implements the client interface. Entries carry ID and Login
// only, like the real listing.
func (f *Fake) Stargazers(_ context.Context, fullName string) iter.Seq2[github.User, error] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("Stargazers", fullName); err != nil {
		return fail[github.User](err)
	}
	var users []github.User
	for _, login := range f.stargazers[strings.ToLower(fullName)] {
		entry := github.User{Login: login}
		if u, ok := f.users[strings.ToLower(login)]; ok {
			entry.ID = u.ID
			entry.Type = u.Type
		}
		users = append(users, entry)
	}
	return each(users)
}

// StarredCount implements the client interface.
func (f *Fake) StarredCount(_ context.Context, login string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("StarredCount", login); err != nil {
		return 0, err
	}
	return f.starred[strings.ToLower(login)], nil
}

// SearchIssuesCount implements the client interface.
func (f *Fake) SearchIssuesCount(_ context.Context, query string) (int, error) {
	f.mu.Lock()
	search := f.search
	err := f.record("SearchIssuesCount", query)
	f.mu.Unlock()
	if err != nil {
		return 0, err
	}
	if search == nil {
		return 0, nil
	}
	return search(query)
}

func each[T any](items []T) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for _, item := range items {
			if !yield(item, nil) {
				return
			}
		}
	}
}

func fail[T any](err error) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		yield(zero, err)
	}
}
