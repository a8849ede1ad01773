package github

import "time"

// User is a GitHub account as returned by /users/{login} and /user/{id}.
// Listing endpoints return the same shape with only ID, Login and Type set.
type User struct {
	ID          int64      `json:"id"`
	Login       string     `json:"login"`
	Type        string     `json:"type,omitempty"`
	Name        string     `json:"name,omitempty"`
	Company     string     `json:"company,omitempty"`
	Blog        string     `json:"blog,omitempty"`
	Location    string     `json:"location,omitempty"`
	Bio         string     `json:"bio,omitempty"`
	PublicRepos int        `json:"public_repos"`
	Followers   int        `json:"followers"`
	Following   int        `json:"following"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// Repository is a GitHub repository. Parent is only populated by
// /repos/{owner}/{repo} for forks.
type Repository struct {
	ID              int64       `json:"id"`
	Name            string      `json:"name"`
	FullName        string      `json:"full_name"`
	Owner           User        `json:"owner"`
	Fork            bool        `json:"fork"`
	Parent          *Repository `json:"parent,omitempty"`
	DefaultBranch   string      `json:"default_branch,omitempty"`
	StargazersCount int         `json:"stargazers_count"`
	CreatedAt       *time.Time  `json:"created_at,omitempty"`
}

// Branch is an entry of /repos/{owner}/{repo}/branches.
type Branch struct {
	Name   string `json:"name"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

// GitIdentity is the author or committer recorded in git metadata.
type GitIdentity struct {
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Date  time.Time `json:"date"`
}

// Commit is an entry of /repos/{owner}/{repo}/commits.
type Commit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Author  GitIdentity `json:"author"`
		Message string      `json:"message"`
	} `json:"commit"`

	// Author is the account GitHub linked to the author email at commit
	// time. It is nil when the email is not linked to any account.
	Author *User `json:"author"`
}

// ShortSHA returns the first six characters of the commit id.
func (c Commit) ShortSHA() string {
	if len(c.SHA) > 6 {
		return c.SHA[:6]
	}
	return c.SHA
}
