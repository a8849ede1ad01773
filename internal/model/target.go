package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// TargetKind tells which kind of account or object a target refers to.
type TargetKind int

const (
	// TargetUser is a GitHub user account.
	TargetUser TargetKind = iota + 1

	// TargetRepository is a GitHub repository.
	TargetRepository
)

// String returns the lower-case name of the kind.
func (k TargetKind) String() string {
	switch k {
	case TargetUser:
		return "user"
	case TargetRepository:
		return "repository"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k TargetKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

var (
	// ErrInvalidRepositoryFormat is returned when a repository target is not "owner/repo".
	ErrInvalidRepositoryFormat = errors.New("invalid repository format: expected 'owner/repo'")

	// ErrInvalidUsername is returned when a user target contains forbidden characters.
	ErrInvalidUsername = errors.New("invalid GitHub username format")

	// ErrEmptyTarget is returned when the target string is blank.
	ErrEmptyTarget = errors.New("empty target")

	// ErrNotRepository is returned by FullName when called on a user target.
	ErrNotRepository = errors.New("target is not a repository")
)

// usernamePattern matches GitHub logins. Hyphen placement is left to the API.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

// urlPrefixes are stripped from targets so that pasted links work.
var urlPrefixes = []string{
	"https://www.github.com/",
	"http://www.github.com/",
	"https://github.com/",
	"http://github.com/",
	"www.github.com/",
	"github.com/",
}

// TargetSpec identifies what is being scanned. It is either a repository
// (Owner and Name set) or a user (Owner set, Name empty). Build it with
// NewUserTarget, NewRepositoryTarget or ParseTarget; the zero value is invalid.
type TargetSpec struct {
	kind  TargetKind
	owner string
	name  string
}

// NewUserTarget returns a target for the given login.
func NewUserTarget(username string) TargetSpec {
	return TargetSpec{kind: TargetUser, owner: username}
}

// NewRepositoryTarget returns a target for owner/name.
func NewRepositoryTarget(owner, name string) TargetSpec {
	return TargetSpec{kind: TargetRepository, owner: owner, name: name}
}

// ParseTarget normalizes user input into a TargetSpec.
//
// Accepted forms are "owner/repo", "https://github.com/owner/repo" and a bare
// username. Input is trimmed and lower-cased.
func ParseTarget(raw string) (TargetSpec, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	for _, prefix := range urlPrefixes {
		if strings.HasPrefix(normalized, prefix) {
			normalized = strings.TrimPrefix(normalized, prefix)
			break
		}
	}
	normalized = strings.TrimSuffix(normalized, "/")
	normalized = strings.TrimSuffix(normalized, ".git")

	if normalized == "" {
		return TargetSpec{}, ErrEmptyTarget
	}

	if strings.Contains(normalized, "/") {
		parts := strings.Split(normalized, "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return TargetSpec{}, fmt.Errorf("%w: %q", ErrInvalidRepositoryFormat, raw)
		}
		return NewRepositoryTarget(parts[0], parts[1]), nil
	}

	if !usernamePattern.MatchString(normalized) {
		return TargetSpec{}, fmt.Errorf("%w: %q", ErrInvalidUsername, raw)
	}
	return NewUserTarget(normalized), nil
}

// Kind returns the target kind.
func (t TargetSpec) Kind() TargetKind {
	return t.kind
}

// Owner returns the user login, or the repository owner.
func (t TargetSpec) Owner() string {
	return t.owner
}

// Username is an alias of Owner that reads better for user targets.
func (t TargetSpec) Username() string {
	return t.owner
}

// Name returns the repository name, empty for users.
func (t TargetSpec) Name() string {
	return t.name
}

// IsRepository reports whether t is a repository target.
func (t TargetSpec) IsRepository() bool {
	return t.kind == TargetRepository
}

// IsUser reports whether t is a user target.
func (t TargetSpec) IsUser() bool {
	return t.kind == TargetUser
}

// FullName returns "owner/name". It is only defined for repository targets.
func (t TargetSpec) FullName() (string, error) {
	if t.kind != TargetRepository || t.owner == "" || t.name == "" {
		return "", ErrNotRepository
	}
	return t.owner + "/" + t.name, nil
}

// Slug returns "owner/name" for repositories and the login for users.
func (t TargetSpec) Slug() string {
	if t.kind == TargetRepository {
		return t.owner + "/" + t.name
	}
	return t.owner
}

// String describes the target for logs and reports.
func (t TargetSpec) String() string {
	switch t.kind {
	case TargetRepository:
		return "GitHub repository " + t.owner + "/" + t.name
	case TargetUser:
		return "GitHub user " + t.owner
	default:
		return "invalid target"
	}
}

// MarshalJSON encodes repositories as {kind, owner, name} and users as {kind, username}.
func (t TargetSpec) MarshalJSON() ([]byte, error) {
	type repository struct {
		Kind  TargetKind `json:"kind"`
		Owner string     `json:"owner"`
		Name  string     `json:"name"`
	}
	type user struct {
		Kind     TargetKind `json:"kind"`
		Username string     `json:"username"`
	}
	if t.kind == TargetRepository {
		return json.Marshal(repository{Kind: t.kind, Owner: t.owner, Name: t.name})
	}
	return json.Marshal(user{Kind: t.kind, Username: t.owner})
}
